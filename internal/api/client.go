// Package api is the typed client for the Bounties and Berries backend.
// Every operation issues exactly one request and either decodes the
// response or fails with an *xerrors.APIError carrying a displayable
// message. There is no retry, backoff or client-side timeout; the caller's
// context is the only bound.
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
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"bnb-client/internal/domain/shared"
	xerrors "bnb-client/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TokenSource yields the persisted bearer token. A missing token is
// reported as xerrors.ErrNotFound.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// maxErrorBody bounds how much of a failed response is read for a message.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	userAgent string
	logger    *zap.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport. The default client has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, tokens TokenSource, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// call describes one backend operation.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	json     interface{}
	form     *shared.Form
	auth     bool
	fallback string
}

// errorBody is the shape the backend uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	body, contentType, err := encodeBody(cl)
	if err != nil {
		return xerrors.NewAPIError(cl.op, 0, cl.fallback, err)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return xerrors.NewAPIError(cl.op, 0, cl.fallback, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := ulid.Make().String()
	req.Header.Set("X-Request-ID", requestID)

	if cl.auth {
		token, err := c.bearer(ctx)
		if err != nil {
			return xerrors.NewAPIError(cl.op, 0, cl.fallback, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", cl.op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return xerrors.NewAPIError(cl.op, 0, cl.fallback, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body, cl.fallback)
		c.logger.Info("backend rejected request",
			zap.String("op", cl.op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return xerrors.NewAPIError(cl.op, resp.StatusCode, msg, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return xerrors.NewAPIError(cl.op, 0, cl.fallback, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return xerrors.NewAPIError(cl.op, resp.StatusCode, cl.fallback, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// bearer reads the persisted token. A missing token yields an empty
// bearer value; the backend answers that with 401.
func (c *Client) bearer(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens.Token(ctx)
	if errors.Is(err, xerrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func readErrorMessage(r io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return fallback
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return fallback
	}
	if m := strings.TrimSpace(eb.Message); m != "" {
		return m
	}
	if m := strings.TrimSpace(eb.Error); m != "" {
		return m
	}
	return fallback
}

// encodeBody picks JSON or multipart encoding. Multipart requests carry
// only the writer's boundary content type.
func encodeBody(cl call) (io.Reader, string, error) {
	switch {
	case cl.form != nil:
		return encodeMultipart(cl.form)
	case cl.json != nil:
		data, err := json.Marshal(cl.json)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		if cl.method == http.MethodGet || cl.method == http.MethodDelete {
			return nil, "", nil
		}
		return nil, "application/json", nil
	}
}

func encodeMultipart(form *shared.Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range form.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	for name, up := range form.Files {
		if up == nil || up.Reader == nil {
			continue
		}
		filename := up.Filename
		if filename == "" {
			filename = name
		}
		contentType := up.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(name), escapeQuotes(filename)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := io.Copy(part, up.Reader); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func idPath(prefix, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", xerrors.Wrap(xerrors.ErrInvalidInput, "empty id")
	}
	return prefix + url.PathEscape(id), nil
}
