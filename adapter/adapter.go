// Package adapter translates between the front-end's message shape and the
// agent's wire shape. It is the single boundary where failures become chat
// messages instead of errors.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/a-h/jsonapi"
	"github.com/secdesk/secdesk/models"
)

const (
	errorPrefix     = "Error: "
	unknownError    = "unknown error"
	emptyResultText = "No response from agent"
)

// AgentClient is the part of client.Client the adapter needs.
type AgentClient interface {
	ChatPost(ctx context.Context, req models.ChatPostRequest) (models.ChatPostResponse, error)
}

func New(log *slog.Logger, client AgentClient) Adapter {
	return Adapter{
		log:    log,
		client: client,
	}
}

type Adapter struct {
	log    *slog.Logger
	client AgentClient
}

// Send forwards the conversation history to the agent and returns its reply
// as an assistant message. It never returns an error: transport failures,
// cancellation, bad statuses and undecodable bodies all degrade to a single
// error-text part in the returned message. Nothing is retried.
func (a Adapter) Send(ctx context.Context, history []models.Message) models.Message {
	resp, err := a.client.ChatPost(ctx, Project(history))
	if err != nil {
		a.log.Error("chat request failed", slog.Any("error", err))
		return models.NewTextMessage(models.RoleAssistant, errorPrefix+errorText(err))
	}
	if resp.Content != nil {
		return models.Message{
			Role:  models.RoleAssistant,
			Parts: resp.Content,
		}
	}
	result := resp.Result
	if result == "" {
		result = emptyResultText
	}
	return models.NewTextMessage(models.RoleAssistant, result)
}

// Project flattens the history to the agent's {role, content} form,
// preserving the order and role of every message.
func Project(history []models.Message) models.ChatPostRequest {
	req := models.ChatPostRequest{
		Messages: make([]models.WireMessage, len(history)),
	}
	for i, m := range history {
		req.Messages[i] = models.WireMessage{
			Role:    m.Role,
			Content: m.FlattenText(),
		}
	}
	return req
}

func errorText(err error) string {
	var statusErr jsonapi.InvalidStatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("agent returned status %d: %s", statusErr.Status, statusErr.Body)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownError
}
