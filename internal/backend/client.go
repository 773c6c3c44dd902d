package backend

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
	"time"

	"github.com/eventcard/terminal/internal/domain"
)

// Client talks to the card backend REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken forwards a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Envelope is the body shape of every backend answer.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Response pairs the HTTP status with the decoded envelope.
type Response struct {
	StatusCode int
	Envelope   Envelope
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is encoded as JSON unless it is a *Multipart.
	Body           any
	IdempotencyKey string
}

type File struct {
	Field   string
	Name    string
	Content []byte
}

// Multipart is sent as multipart/form-data with its own boundary.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range m.Files {
		fw, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", f.Field, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Do sends r and decodes the envelope data into out when out is non-nil.
//
// Network failures and bodies that are not JSON come back as transport
// errors. An envelope with success=false, or a non-2xx status, comes back as a
// business error carrying the backend text verbatim (empty when the backend
// sent none, so callers can pick their own fallback). The Response is returned
// whenever a body was decoded, including on business errors.
func (c *Client) Do(ctx context.Context, r Request, out any) (*Response, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch b := r.Body.(type) {
	case nil:
	case *Multipart:
		rd, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		body, contentType = rd, ct
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if r.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.TransportError(domain.ConnectionErrorMessage(), fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.TransportError(domain.ConnectionErrorMessage(), fmt.Errorf("read response: %w", err))
	}

	res := &Response{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &res.Envelope); err != nil {
		return nil, domain.TransportError(domain.ConnectionErrorMessage(),
			fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}

	if !res.Envelope.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := res.Envelope.Error
		if msg == "" {
			msg = res.Envelope.Message
		}
		return res, domain.BusinessError(resp.StatusCode, msg)
	}

	if out != nil && len(res.Envelope.Data) > 0 && !bytes.Equal(res.Envelope.Data, []byte("null")) {
		if err := json.Unmarshal(res.Envelope.Data, out); err != nil {
			return res, domain.TransportError(domain.ConnectionErrorMessage(), fmt.Errorf("decode data: %w", err))
		}
	}
	return res, nil
}

// Ping checks that the backend answers a cheap read.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/puntos-venta"}, nil)
	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindBusiness {
		return nil
	}
	return err
}
