// Package gateway wraps the HTTP transport consumed by every entity store:
// it attaches the session credential, unwraps the {code, message, data}
// response envelope, classifies failures, and performs the global side
// effects for session expiry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"bloghub/pkg/config"
)

// Session is the slice of the session manager the gateway needs: the bearer
// credential for outgoing requests and a way to drop the session on 401.
type Session interface {
	Token() string
	Clear()
}

// envelope is the wire wrapper every API response uses, except file uploads.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const landingPath = "/"

type Client struct {
	baseURL string
	mode    config.CredentialMode
	http    *http.Client

	session  Session
	notifier Notifier
	nav      Navigator

	// expired guards the 401 side effect so that concurrent in-flight
	// failures produce exactly one redirect, not a storm.
	expired atomic.Bool
}

func New(cfg config.Config, notifier Notifier, nav Navigator) *Client {
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.Mode == config.ModeCookie {
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if nav == nil {
		nav = LogNavigator{}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		mode:     cfg.Mode,
		http:     hc,
		notifier: notifier,
		nav:      nav,
	}
}

// AttachSession wires the session manager in after construction; the session
// itself needs the client for its network calls, so the two are bound here
// rather than in New.
func (c *Client) AttachSession(s Session) { c.session = s }

// Notifier exposes the notification port so other components (the route
// guard) share the same surface.
func (c *Client) Notifier() Notifier { return c.notifier }

// Navigator exposes the navigation port.
func (c *Client) Navigator() Navigator { return c.nav }

// ResetExpiry re-arms the once-only 401 side effect. The session manager
// calls it whenever a fresh session is stored.
func (c *Client) ResetExpiry() { c.expired.Store(false) }

type requestOptions struct {
	query url.Values
}

type Option func(*requestOptions)

// WithQuery adds URL query parameters to the request.
func WithQuery(q url.Values) Option {
	return func(o *requestOptions) { o.query = q }
}

// Do sends a JSON request, unwraps the envelope, and decodes data into out
// (skipped when out is nil).
func (c *Client) Do(ctx context.Context, method, path string, body any, out any, opts ...Option) error {
	data, err := c.Send(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Send performs the request and returns the envelope's data field raw.
func (c *Client) Send(ctx context.Context, method, path string, body any, opts ...Option) (json.RawMessage, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, o.query, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	status, respBody, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	return c.unwrap(method, path, status, respBody)
}

// Upload sends a multipart request. Upload endpoints are exempt from the
// envelope: the raw response body comes back as-is.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, extra map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write multipart field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, respBody, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	if status >= 200 && status < 300 {
		return respBody, nil
	}
	return nil, c.classifyStatus(status, respBody)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.mode == config.ModeBearer && c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	// cookie mode relies on the client's jar; nothing to attach here
	return req, nil
}

func (c *Client) roundTrip(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.notifier.Error("network unreachable, check your connection")
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.notifier.Error("network unreachable, check your connection")
		return 0, nil, &NetworkError{Err: err}
	}
	return resp.StatusCode, body, nil
}

func (c *Client) unwrap(method, path string, status int, body []byte) (json.RawMessage, error) {
	if status < 200 || status >= 300 {
		return nil, c.classifyStatus(status, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope %s %s: %w", method, path, err)
	}
	if env.Code == 200 || env.Code == 201 {
		return env.Data, nil
	}
	err := &BusinessError{Code: env.Code, Message: env.Message}
	c.notifier.Error(err.Message)
	return nil, err
}

// classifyStatus maps an HTTP failure status onto the error taxonomy and
// performs the class-appropriate side effect.
func (c *Client) classifyStatus(status int, body []byte) error {
	msg := extractMessage(body)

	switch status {
	case http.StatusUnauthorized:
		c.handleExpiry()
		return &AuthError{Message: msg}
	case http.StatusForbidden:
		c.notifier.Error("permission denied")
		return &PermissionError{Message: msg}
	case http.StatusNotFound:
		return &NotFoundError{Message: msg}
	case http.StatusInternalServerError:
		c.notifier.Error("internal server error")
		return &ServerError{Message: msg}
	default:
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", status)
		}
		c.notifier.Error(msg)
		return &BusinessError{Code: status, Message: msg}
	}
}

// handleExpiry clears the session and redirects to the landing page exactly
// once per expiry, no matter how many in-flight requests hit the same 401.
func (c *Client) handleExpiry() {
	if !c.expired.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[gateway] session expired, clearing credentials")
	if c.session != nil {
		c.session.Clear()
	}
	c.notifier.Error("session expired, please log in again")
	c.nav.Redirect(landingPath)
}

func extractMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}
