// Package transcript saves chat sessions as JSONL files and enumerates them.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secdesk/secdesk/models"
)

const maxSummaryLength = 80

// meta is the first line of every session file.
type meta struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// Record is one message line of a session file.
type Record struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
	At      time.Time   `json:"at"`
}

// Session summarises one saved transcript.
type Session struct {
	ID           string
	Path         string
	StartedAt    time.Time
	MessageCount int
	Summary      string
}

// DefaultDir returns ~/.secdesk/sessions.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".secdesk", "sessions"), nil
}

func NewStore(dir string) Store {
	return Store{dir: dir}
}

type Store struct {
	dir string
}

// Save writes the messages as a new session file and returns its summary.
// Message parts are flattened to text, matching what was sent to the agent.
func (s Store) Save(startedAt time.Time, msgs []models.Message) (session Session, err error) {
	if err = os.MkdirAll(s.dir, 0o755); err != nil {
		return session, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	id := uuid.NewString()
	path := filepath.Join(s.dir, id+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return session, fmt.Errorf("failed to create session file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err = enc.Encode(meta{ID: id, StartedAt: startedAt}); err != nil {
		return session, fmt.Errorf("failed to write session meta: %w", err)
	}
	for _, m := range msgs {
		r := Record{
			Role:    m.Role,
			Content: m.FlattenText(),
			At:      time.Now(),
		}
		if err = enc.Encode(r); err != nil {
			return session, fmt.Errorf("failed to write session record: %w", err)
		}
	}
	return Session{
		ID:           id,
		Path:         path,
		StartedAt:    startedAt,
		MessageCount: len(msgs),
		Summary:      summarize(msgs),
	}, nil
}

// List enumerates saved sessions, newest first. Files that can't be parsed
// are reported as warnings rather than failing the whole listing.
func (s Store) List() (sessions []Session, warnings []error, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		session, err := readSession(path)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("failed to read %s: %w", path, err))
			continue
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, warnings, nil
}

func readSession(path string) (session Session, err error) {
	f, err := os.Open(path)
	if err != nil {
		return session, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err = scanner.Err(); err != nil {
			return session, err
		}
		return session, fmt.Errorf("empty session file: %w", fs.ErrInvalid)
	}
	var m meta
	if err = json.Unmarshal(scanner.Bytes(), &m); err != nil {
		return session, err
	}
	session = Session{
		ID:        m.ID,
		Path:      path,
		StartedAt: m.StartedAt,
	}
	for scanner.Scan() {
		var r Record
		if err = json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return session, err
		}
		session.MessageCount++
		if session.Summary == "" && r.Role == models.RoleUser {
			session.Summary = truncate(r.Content, maxSummaryLength)
		}
	}
	return session, scanner.Err()
}

func summarize(msgs []models.Message) string {
	for _, m := range msgs {
		if m.Role == models.RoleUser {
			return truncate(m.FlattenText(), maxSummaryLength)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
