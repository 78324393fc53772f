package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"zerobin/client/internal/config"
)

const bypassHeader = "Bypass-Tunnel-Reminder"

// Client is the one chokepoint for talking to the ZeroBin backend. Every
// call resolves exactly once: a parsed 2xx body, or an *Error. There are no
// retries, no client-side timeouts and no cancellation beyond ctx.
type Client struct {
	baseURL     string
	tunnelHosts []string
	http        *http.Client
	log         zerolog.Logger
}

// Options shapes one request. Auth requests get an Authorization header only
// when a token is actually present; an anonymous auth-flagged call goes out
// bare and lets the backend reject it.
type Options struct {
	Method string
	Body   any
	Header http.Header
	Auth   bool
	Token  string
}

func NewClient(cfg config.BackendConfig, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		tunnelHosts: cfg.TunnelHosts,
		http:        &http.Client{},
		log:         logger,
	}
}

// BaseURL returns the resolved backend prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) behindTunnel() bool {
	for _, marker := range c.tunnelHosts {
		if marker != "" && strings.Contains(c.baseURL, marker) {
			return true
		}
	}
	return false
}

// raw performs the request and hands back the undecoded 2xx body together
// with its Content-Type. All failure paths come out as *Error.
func (c *Client) raw(ctx context.Context, path string, opts Options) ([]byte, string, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", &Error{Status: 0, Message: err.Error(), Details: map[string]any{"cause": err.Error()}}
		}
		reqBody = bytes.NewReader(encoded)
	}

	url := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, "", &Error{Status: 0, Message: err.Error(), Details: map[string]any{"cause": err.Error()}}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.behindTunnel() {
		req.Header.Set(bypassHeader, "true")
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if opts.Auth && opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("url", url).Msg("transport failure")
		message := err.Error()
		if message == "" {
			message = "Network error"
		}
		return nil, "", &Error{Status: 0, Message: message, Details: map[string]any{"cause": err.Error()}}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		// Treat a torn body the same as an unparsable one.
		data = nil
	}

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := decodeBody(data, contentType)
		return nil, "", &Error{
			Status:  resp.StatusCode,
			Message: messageFromBody(body, http.StatusText(resp.StatusCode)),
			Details: body,
		}
	}

	return data, contentType, nil
}

// decodeBody parses per Content-Type: JSON into a generic value, anything
// else as text. A parse failure degrades to nil rather than an error.
func decodeBody(data []byte, contentType string) any {
	if len(data) == 0 {
		return nil
	}
	if strings.Contains(contentType, "application/json") {
		var body any
		if err := json.Unmarshal(data, &body); err != nil {
			return nil
		}
		return body
	}
	return string(data)
}

// Do issues a request and decodes the JSON response into T. The backend's
// shape is trusted: a 2xx body that fails to decode yields T's zero value,
// not an error.
func Do[T any](ctx context.Context, c *Client, path string, opts Options) (T, error) {
	var out T
	data, contentType, err := c.raw(ctx, path, opts)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || !strings.Contains(contentType, "application/json") {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, nil
	}
	return out, nil
}

// DoText is Do for endpoints that answer with a plain text body.
func DoText(ctx context.Context, c *Client, path string, opts Options) (string, error) {
	data, _, err := c.raw(ctx, path, opts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Discard issues a request for its side effect and drops the body.
func (c *Client) Discard(ctx context.Context, path string, opts Options) error {
	_, _, err := c.raw(ctx, path, opts)
	return err
}
