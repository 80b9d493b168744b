package adapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/a-h/jsonapi"
	"github.com/google/go-cmp/cmp"
	"github.com/secdesk/secdesk/models"
)

type clientFunc func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error)

func (f clientFunc) ChatPost(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
	return f(ctx, req)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		history  []models.Message
		expected models.ChatPostRequest
	}{
		{
			name:    "empty history projects to an empty message list",
			history: nil,
			expected: models.ChatPostRequest{
				Messages: []models.WireMessage{},
			},
		},
		{
			name: "order and role of every message are preserved",
			history: []models.Message{
				models.NewTextMessage(models.RoleSystem, "be brief"),
				models.NewTextMessage(models.RoleUser, "any failed logins?"),
				models.NewTextMessage(models.RoleAssistant, "none in the last hour"),
				models.NewTextMessage(models.RoleUser, "and yesterday?"),
			},
			expected: models.ChatPostRequest{
				Messages: []models.WireMessage{
					{Role: models.RoleSystem, Content: "be brief"},
					{Role: models.RoleUser, Content: "any failed logins?"},
					{Role: models.RoleAssistant, Content: "none in the last hour"},
					{Role: models.RoleUser, Content: "and yesterday?"},
				},
			},
		},
		{
			name: "multi-part content is flattened",
			history: []models.Message{
				{
					Role: models.RoleUser,
					Parts: []models.Part{
						models.TextPart("see "),
						{Kind: "image"},
						models.TextPart(" above"),
					},
				},
			},
			expected: models.ChatPostRequest{
				Messages: []models.WireMessage{
					{Role: models.RoleUser, Content: "see image above"},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Project(tt.history)
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestSend(t *testing.T) {
	history := []models.Message{
		models.NewTextMessage(models.RoleUser, "hello"),
	}
	tests := []struct {
		name     string
		client   clientFunc
		expected models.Message
	}{
		{
			name: "a content list is returned unchanged",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{
					Content: []models.Part{
						models.TextPart("found 3 events"),
						{Kind: "tool-call"},
					},
				}, nil
			},
			expected: models.Message{
				Role: models.RoleAssistant,
				Parts: []models.Part{
					models.TextPart("found 3 events"),
					{Kind: "tool-call"},
				},
			},
		},
		{
			name: "an empty content list is still a content list",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{Content: []models.Part{}}, nil
			},
			expected: models.Message{
				Role:  models.RoleAssistant,
				Parts: []models.Part{},
			},
		},
		{
			name: "a bare result is wrapped as a single text part",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{Result: "no events found"}, nil
			},
			expected: models.NewTextMessage(models.RoleAssistant, "no events found"),
		},
		{
			name: "neither content nor result falls back to a literal",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{}, nil
			},
			expected: models.NewTextMessage(models.RoleAssistant, "No response from agent"),
		},
		{
			name: "a status error becomes a single error part carrying the code and body",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{}, jsonapi.InvalidStatusError{
					Status: 502,
					Body:   "upstream agent unavailable",
				}
			},
			expected: models.NewTextMessage(models.RoleAssistant, "Error: agent returned status 502: upstream agent unavailable"),
		},
		{
			name: "a transport error becomes a single error part",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{}, errors.New("connection refused")
			},
			expected: models.NewTextMessage(models.RoleAssistant, "Error: connection refused"),
		},
		{
			name: "cancellation is caught rather than propagated",
			client: func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
				return models.ChatPostResponse{}, context.Canceled
			},
			expected: models.NewTextMessage(models.RoleAssistant, "Error: context canceled"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(discardLogger(), tt.client)
			actual := a.Send(context.Background(), history)
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestSendProjectsTheFullHistory(t *testing.T) {
	history := []models.Message{
		models.NewTextMessage(models.RoleSystem, "be brief"),
		models.NewTextMessage(models.RoleUser, "any alerts?"),
	}
	var received models.ChatPostRequest
	a := New(discardLogger(), clientFunc(func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
		received = req
		return models.ChatPostResponse{Result: "ok"}, nil
	}))
	a.Send(context.Background(), history)
	if diff := cmp.Diff(Project(history), received); diff != "" {
		t.Error(diff)
	}
}

func TestSendErrorMessagesAreSingleTextParts(t *testing.T) {
	a := New(discardLogger(), clientFunc(func(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error) {
		return models.ChatPostResponse{}, errors.New("boom")
	}))
	msg := a.Send(context.Background(), nil)
	if len(msg.Parts) != 1 {
		t.Fatalf("expected a single part, got %d", len(msg.Parts))
	}
	if msg.Parts[0].Kind != models.PartKindText {
		t.Errorf("expected a text part, got %q", msg.Parts[0].Kind)
	}
	if !strings.HasPrefix(msg.Parts[0].Text, "Error: ") {
		t.Errorf("expected the error marker prefix, got %q", msg.Parts[0].Text)
	}
}
