package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/jsonapi"
	"github.com/secdesk/secdesk/models"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

func (c Client) ChatPost(ctx context.Context, req models.ChatPostRequest) (resp models.ChatPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("chat").String()
	if err != nil {
		return resp, err
	}
	err = c.post(ctx, url, req, &resp)
	return resp, err
}

func (c Client) SearchPost(ctx context.Context, req models.SearchPostRequest) (resp models.SearchPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("search").String()
	if err != nil {
		return resp, err
	}
	err = c.post(ctx, url, req, &resp)
	return resp, err
}

func (c Client) post(ctx context.Context, url string, req, resp any) (err error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	res, err := jsonapi.Raw(httpReq,
		jsonapi.WithRequestHeader("Content-Type", "application/json"),
		jsonapi.WithRequestHeader("Authorization", c.apiKey))
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
