// Package client is the CLI's thin HTTP client for the Todo API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crucial707/todo-api/cmd/cli/config"
)

// APIError is a non-2xx response. Message is the server's "error" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New targets config.APIURL with the given bearer token (may be empty).
func New(token string) *Client {
	return &Client{
		BaseURL: config.APIURL(),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// JSON sends payload (nil for no body) and decodes a 2xx response into out (nil to discard).
func (c *Client) JSON(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	return c.do(method, path, "application/json", body, out)
}

// Form posts URL-encoded values, as the token endpoint expects.
func (c *Client) Form(path string, values url.Values, out any) error {
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()), out)
}

func (c *Client) do(method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}
