package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/minhasfinancas/financas-go/internal/types"
	"github.com/pkg/errors"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"

	authHeaderKey      = "Authorization"
	requestIDHeaderKey = "X-Request-ID"
	contentType        = "application/json"
)

// Request describes a single REST call relative to the base URL
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// RESTTransport handles JSON-over-HTTP communication with the finance API
type RESTTransport struct {
	baseURL        string
	httpClient     *http.Client
	retryClient    *retryablehttp.Client
	headers        map[string]string
	logger         types.Logger
	hooks          *types.Hooks
	onUnauthorized func(token string)

	mu    sync.RWMutex
	token string
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Retries only happen when explicitly configured
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil && opts.RetryConfig.MaxRetries > 0 {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		retryClient.Logger = nil

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	headers := map[string]string{
		"Accept":       contentType,
		"Content-Type": contentType,
		"User-Agent":   types.UserAgent,
	}

	// Merge custom headers
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &RESTTransport{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     opts.HTTPClient,
		retryClient:    retryClient,
		headers:        headers,
		logger:         opts.Logger,
		hooks:          opts.Hooks,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// IsAuthEndpoint reports whether path is a login or register call. A 401 from
// those endpoints means bad credentials, not an expired session.
func IsAuthEndpoint(path string) bool {
	return strings.Contains(path, loginPath) || strings.Contains(path, registerPath)
}

// Execute performs the request and decodes a JSON response into result
func (t *RESTTransport) Execute(ctx context.Context, r *Request, result interface{}) error {
	authCall := IsAuthEndpoint(r.Path)
	token := t.Token()

	if !authCall && token == "" {
		return types.ErrNotAuthenticated
	}

	var bodyReader io.Reader
	if r.Body != nil {
		body, err := json.Marshal(r.Body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		bodyReader = bytes.NewReader(body)
	}

	target := t.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, target, bodyReader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeaderKey, requestID)

	if !authCall {
		httpReq.Header.Set(authHeaderKey, fmt.Sprintf("Bearer %s", token))
	}

	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("API request", "method", r.Method, "path", r.Path, "query", r.Query.Encode(), "request_id", requestID)
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return errors.Wrapf(err, "%s %s", r.Method, r.Path)
	}
	defer resp.Body.Close()

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if t.logger != nil {
		t.logger.Debug("API response", "method", r.Method, "path", r.Path, "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && !authCall && t.onUnauthorized != nil {
			t.onUnauthorized(token)
		}
		apiErr := t.handleHTTPError(r.Path, resp.StatusCode, respBody)
		if e, ok := apiErr.(*types.Error); ok {
			e.RequestID = requestID
		}
		return apiErr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal result")
		}
	}

	return nil
}

// SetAuth sets the bearer token sent on every non-auth request
func (t *RESTTransport) SetAuth(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// Token returns the current bearer token
func (t *RESTTransport) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// doRequest executes the HTTP request with retry if configured
func (t *RESTTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// handleHTTPError maps a non-2xx response to an error. The server's "error"
// field is kept verbatim in Message so callers can show it to the user.
func (t *RESTTransport) handleHTTPError(path string, statusCode int, body []byte) error {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Error
	if msg == "" {
		msg = errResp.Message
	}

	switch statusCode {
	case http.StatusUnauthorized:
		if IsAuthEndpoint(path) {
			return &types.Error{
				Code:       "LOGIN_FAILED",
				Message:    msg,
				StatusCode: statusCode,
				Err:        types.ErrLoginFailed,
			}
		}
		return &types.Error{
			Code:       "SESSION_EXPIRED",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrSessionExpired,
		}
	case http.StatusForbidden:
		return &types.Error{
			Code:       "FORBIDDEN",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrNotAuthenticated,
		}
	case http.StatusNotFound:
		return &types.Error{
			Code:       "NOT_FOUND",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrNotFound,
		}
	case http.StatusTooManyRequests:
		return &types.Error{
			Code:       "RATE_LIMITED",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrRateLimited,
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &types.Error{
			Code:       "TIMEOUT",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrTimeout,
		}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		if msg == "" {
			msg = fmt.Sprintf("HTTP error: %d", statusCode)
		}
		return &types.Error{
			Code:       "BAD_REQUEST",
			Message:    msg,
			StatusCode: statusCode,
		}
	default:
		if statusCode >= 500 {
			baseMsg := fmt.Sprintf("server error: %d", statusCode)
			if desc := http.StatusText(statusCode); desc != "" {
				baseMsg = fmt.Sprintf("server error: %d (%s)", statusCode, desc)
			}
			if msg != "" {
				baseMsg = fmt.Sprintf("%s: %s", baseMsg, msg)
			}

			return &types.Error{
				Code:       "SERVER_ERROR",
				Message:    baseMsg,
				StatusCode: statusCode,
				Err:        types.ErrServerError,
			}
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP error: %d", statusCode)
		}
		return &types.Error{
			Code:       "HTTP_ERROR",
			Message:    msg,
			StatusCode: statusCode,
		}
	}
}

// Options for the REST transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks

	// OnUnauthorized runs when a non-auth endpoint answers 401. It receives
	// the token the rejected request carried.
	OnUnauthorized func(token string)
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
