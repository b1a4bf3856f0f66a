// Package llm streams text from an OpenAI-compatible chat-completion API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	// EnvAPIKey is the environment variable holding the API credential.
	EnvAPIKey = "OPENAI_API_KEY"

	// EnvBaseURL optionally overrides the API base URL,
	// for compatible providers.
	EnvBaseURL = "OPENAI_BASE_URL"

	defaultBaseURL = "https://api.openai.com/v1"
)

// Client is a client for a streaming chat-completion API.
type Client struct {
	APIKey  string
	BaseURL string

	// HTTPClient is the client for requests. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// NewFromEnv produces a Client configured from the environment.
// It fails when EnvAPIKey is unset,
// so a missing credential is caught before any network call.
func NewFromEnv() (*Client, error) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return nil, fmt.Errorf("environment variable %s is not set", EnvAPIKey)
	}
	return &Client{APIKey: key, BaseURL: os.Getenv(EnvBaseURL)}, nil
}

// StatusError is the error returned when the API responds
// with a non-success status before streaming begins.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream requests a completion for the given prompts
// and consumes the event stream of the response,
// calling f with each text fragment in arrival order.
// It returns the full concatenated text.
//
// An error from f aborts the stream and is returned unchanged.
func (c *Client) Stream(ctx context.Context, model, system, user string, f func(fragment string) error) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:  model,
		Stream: true,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(base, "/")+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var (
		dec = NewDecoder(resp.Body)
		acc strings.Builder
	)
	for {
		data, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "reading event stream")
		}
		if data == "[DONE]" {
			break
		}

		var chunk chatChunk
		err = json.Unmarshal([]byte(data), &chunk)
		if err != nil {
			return "", errors.Wrap(err, "unmarshaling event")
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			err = f(choice.Delta.Content)
			if err != nil {
				return "", err
			}
			acc.WriteString(choice.Delta.Content)
		}
	}

	return acc.String(), nil
}
