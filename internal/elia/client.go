package elia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const DefaultEndpoint = "https://api.elia.io/graphql"
const defaultUA = "Mozilla/5.0 (X11; Linux x86_64) elia-parkbot/1.0"

// Client speaks the Elia GraphQL API with a captured bearer token.
type Client struct {
	http     *http.Client
	endpoint string
	ua       string

	mu    sync.RWMutex
	token string
}

func NewClient(endpoint, token string) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		http:     &http.Client{Timeout: 20 * time.Second},
		endpoint: strings.TrimRight(endpoint, "/"),
		ua:       defaultUA,
		token:    token,
	}
}

// SetToken swaps in a fresh bearer after a re-login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type gqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

// do posts one GraphQL operation and decodes data into out. Failures come
// back as *APIError so callers can classify them.
func (c *Client) do(ctx context.Context, opName, query string, variables map[string]any, out any) error {
	b, err := json.Marshal(gqlRequest{OperationName: opName, Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", opName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build %s request: %w", opName, err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("user-agent", c.ua)
	if tok := c.bearer(); tok != "" {
		req.Header.Set("authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Operation: opName, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Kind:      classifyStatus(resp.StatusCode),
			Status:    resp.StatusCode,
			Operation: opName,
			Message:   strings.TrimSpace(string(body)),
		}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("parse %s response: %w", opName, err)
	}
	if len(envelope.Errors) > 0 {
		msg := envelope.Errors[0].Message
		return &APIError{Kind: classifyMessage(msg), Operation: opName, Message: msg}
	}
	if out != nil {
		if len(envelope.Data) == 0 {
			return &APIError{Kind: KindUnknown, Operation: opName, Message: "response carries no data"}
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("parse %s data: %w", opName, err)
		}
	}
	return nil
}
