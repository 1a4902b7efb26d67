package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
)

const (
	defaultBaseURL   = "http://localhost:8002"
	defaultUserAgent = "provider-onboarding"
	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Client implements Service against the accounts REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root (scheme, host and optional path prefix).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new accounts API client. Timeouts are the http.Client's.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterProvider creates a provider account. The request is sent once; it is
// never retried.
func (c *Client) RegisterProvider(ctx context.Context, reg ProviderRegistration) (*Ack, error) {
	payload, err := toWireProvider(reg)
	if err != nil {
		return nil, err
	}
	return c.register(ctx, payload)
}

// RegisterClient creates a client account.
func (c *Client) RegisterClient(ctx context.Context, reg ClientRegistration) (*Ack, error) {
	return c.register(ctx, toWireClient(reg))
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	payload, err := toWireLogin(creds)
	if err != nil {
		return nil, err
	}
	resp, err := c.doPost(ctx, loginPath, payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := c.readSuccess(ctx, loginPath, resp)
	if err != nil {
		return nil, err
	}

	var ws wireSession
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, &UpstreamError{Kind: UpstreamErrorKindDecode, Status: resp.StatusCode, cause: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	if ws.Token == "" {
		return nil, &UpstreamError{Kind: UpstreamErrorKindDecode, Status: resp.StatusCode, cause: fmt.Errorf("%w: missing token", ErrDecode)}
	}

	session := &Session{Token: ws.Token}
	if ws.User != nil {
		session.UserID = ws.User.ID
		session.Email = ws.User.Email
		session.Role = roleFromWire(ws.User.Role)
	}
	return session, nil
}

func (c *Client) register(ctx context.Context, payload any) (*Ack, error) {
	resp, err := c.doPost(ctx, registerPath, payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := c.readSuccess(ctx, registerPath, resp)
	if err != nil {
		return nil, err
	}

	// The status code is authoritative; an unreadable success body still means
	// the account exists.
	ack := &Ack{Status: resp.StatusCode}
	var wa wireAck
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &wa); err != nil {
			applog.LogWarn(ctx, "accounts register: undecodable success body",
				zap.Int("status", resp.StatusCode),
				zap.Error(err),
			)
		} else {
			ack.Message = wa.Message
			ack.UserID = wa.userID()
		}
	}
	return ack, nil
}

func (c *Client) doPost(ctx context.Context, path string, payload any) (*http.Response, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{
			Kind:  UpstreamErrorKindNetwork,
			cause: errors.Join(ErrNetwork, err),
		}
	}
	return resp, nil
}

// readSuccess returns the body of a 2xx response, or an UpstreamError carrying
// the server's message for any other status. A non-2xx status is a rejection
// even when its body is cut off; only the bytes that arrived are decoded.
func (c *Client) readSuccess(ctx context.Context, path string, resp *http.Response) ([]byte, error) {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if readErr != nil {
			return nil, &UpstreamError{
				Kind:   UpstreamErrorKindNetwork,
				Status: resp.StatusCode,
				cause:  errors.Join(ErrNetwork, readErr),
			}
		}
		return body, nil
	}

	var we wireError
	_ = json.Unmarshal(body, &we)
	msg := strings.TrimSpace(we.message())
	fields := []zap.Field{
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Bool("hasServerMessage", msg != ""),
	}
	if readErr != nil {
		fields = append(fields, zap.NamedError("bodyError", readErr))
	}
	applog.LogWarn(ctx, "accounts api rejected request", fields...)
	return nil, &UpstreamError{
		Kind:          UpstreamErrorKindRejected,
		Status:        resp.StatusCode,
		ServerMessage: msg,
		cause:         ErrRejected,
	}
}

// Compile-time interface check
var _ Service = (*Client)(nil)
