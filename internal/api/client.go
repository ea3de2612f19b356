// Package api implements the HTTP client for the Grumpy Tracker backend.
// It is the single egress point for all network communication: every
// request carries the current bearer token, outbound payloads are
// translated from camelCase to the wire's snake_case, inbound responses
// are translated back and have their media paths rewritten to absolute
// URLs, and every failure surfaces as a *RequestError with display-ready
// messages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is a backend resource held as an opaque key-value mapping. The
// client translates its field names between naming conventions but never
// validates its contents.
type Record = map[string]any

// File is a binary attachment for the make/camera upload endpoints.
type File struct {
	// Name is the filename reported to the server.
	Name string
	// Content is the file data.
	Content io.Reader
}

// noToken is sent in the Authorization header when no user is logged in.
// The header is deliberately present rather than omitted; the server
// tolerates the literal marker.
const noToken = "null"

const apiPrefix = "api/v1/"

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "http://127.0.0.1:8000".
	BaseURL string
	// Timeout bounds a full request/response round-trip. Defaults to 20s.
	Timeout time.Duration
	// Logger receives debug logging for outgoing calls. Optional.
	Logger *zap.Logger
	// HTTPClient overrides the underlying transport. Optional.
	HTTPClient *http.Client
}

// Client talks to the Grumpy Tracker REST API. It holds no state beyond
// the current bearer token and is safe for concurrent use; the token is
// read once at the start of each call.
type Client struct {
	baseURL *url.URL
	hc      *http.Client
	log     *zap.Logger

	mu    sync.RWMutex
	token string
}

// New constructs a Client for the given backend.
func New(opt Options) (*Client, error) {
	if opt.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(opt.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		return nil, errors.New("invalid base URL")
	}

	hc := opt.HTTPClient
	if hc == nil {
		timeout := opt.Timeout
		if timeout == 0 {
			timeout = 20 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{baseURL: u, hc: hc, log: log}, nil
}

// SetToken replaces the bearer token attached to subsequent requests.
// An empty string reverts to the unauthenticated marker. Only the auth
// session manager should call this.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently configured bearer token, empty when
// unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Call performs one request against the backend. For GET the payload is
// sent as query parameters, for every other verb as a JSON body with
// decamelized keys. The parsed response body is returned with camelized
// keys and normalized media URLs. Failures are always a *RequestError.
func (c *Client) Call(ctx context.Context, endpoint string, payload Record, method string) (any, error) {
	if method == "" {
		method = http.MethodGet
	}

	u := c.endpointURL(endpoint)
	var body io.Reader
	contentType := ""

	if method == http.MethodGet {
		if len(payload) > 0 {
			q := u.Query()
			for k, v := range payload {
				q.Set(toSnake(k), fmt.Sprint(v))
			}
			u.RawQuery = q.Encode()
		}
	} else {
		wire := decamelizeKeys(payload)
		if wire == nil {
			wire = Record{}
		}
		b, err := json.Marshal(wire)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req)
}

// upload performs a multipart/form-data request. Field names are sent
// exactly as given; key translation is only for plain JSON payloads.
func (c *Client) upload(ctx context.Context, endpoint string, fields Record, fileField string, file *File, method string) (any, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, fmt.Sprint(v)); err != nil {
			return nil, fmt.Errorf("write form field %q: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(fileField, file.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("copy file data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint).String(), buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *Client) endpointURL(endpoint string) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + endpoint
	return &u
}

func (c *Client) do(req *http.Request) (any, error) {
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("X-Request-Id", uuid.NewString())

	c.log.Debug("api call",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("api call failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, newNetworkError()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("api error response",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, serverError(resp.StatusCode, body)
	}

	if len(body) == 0 {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Non-JSON success body, hand it back raw.
		return string(body), nil
	}
	decoded = camelizeKeys(decoded)
	normalizeMediaURLs(decoded, c.baseURL)
	return decoded, nil
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return noToken
	}
	return c.token
}
