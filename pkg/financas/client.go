package financas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/minhasfinancas/financas-go/internal/storage"
	"github.com/minhasfinancas/financas-go/internal/transport"
	internalTypes "github.com/minhasfinancas/financas-go/internal/types"
)

const (
	// DefaultBaseURL is the default finance API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout

	// UserAgent is the user agent string
	UserAgent = internalTypes.UserAgent
)

// Client is the finance API client and the application context: it is built
// once, owns the session and preferences, and is torn down with Close.
type Client struct {
	// Service interfaces
	Auth         AuthService
	Wallets      WalletService
	Categories   CategoryService
	Transactions TransactionService
	Transfers    TransferService
	Dashboard    DashboardService

	// Preferences is the persisted theme and dashboard period
	Preferences *Preferences

	// Internal fields
	baseURL   string
	transport Transport
	storage   Storage
	options   *ClientOptions
	session   *SessionStore
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Storage persists the session and preferences; in-memory when nil
	Storage Storage

	// Logger for debug logging
	Logger Logger

	// RetryConfig enables retries. Nothing is retried when nil.
	RetryConfig *internalTypes.RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *internalTypes.Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions

	// OnSessionExpired is called once each time a 401 ends the session
	OnSessionExpired func()

	// PrefersDark picks the theme when none has been saved
	PrefersDark func() bool

	// Now overrides the clock
	Now func() time.Time
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Storage is the persistent key-value store behind the session and
// preferences. Get reports ok=false for a missing key.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(keys ...string) error
	Close() error
}

// Transport handles HTTP communication
type Transport interface {
	Execute(ctx context.Context, r *transport.Request, result interface{}) error
	SetAuth(token string)
}

// NewClient creates a new client. Call Auth.Restore to pick up a persisted
// session before the first authenticated request.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// Log error but don't fail client creation
		if err := sentry.Init(sentryOpts); err != nil && opts.Logger != nil {
			opts.Logger.Error("Failed to initialize Sentry", "error", err)
		}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	if opts.Storage == nil {
		opts.Storage = storage.NewMemory()
	}

	c := &Client{
		baseURL: opts.BaseURL,
		storage: opts.Storage,
		options: opts,
	}

	c.transport = transport.NewRESTTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
		// the session store is created below; the closure reads it lazily
		OnUnauthorized: func(token string) {
			if c.session != nil {
				c.session.expire(token)
			}
		},
	})

	c.initServices()

	return c, nil
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.session = newSessionStore(c)
	c.Auth = c.session
	c.Preferences = newPreferences(c.storage, c.options.PrefersDark)
	c.Wallets = &walletService{client: c}
	c.Categories = &categoryService{client: c}
	c.Transactions = &transactionService{client: c}
	c.Transfers = &transferService{client: c}
	c.Dashboard = &dashboardService{client: c}
}

// Session returns the session store backing Auth
func (c *Client) Session() *SessionStore {
	return c.session
}

func (c *Client) now() time.Time {
	if c.options != nil && c.options.Now != nil {
		return c.options.Now()
	}
	return time.Now()
}

// execute performs a REST call with rate limiting, hooks and error capture
func (c *Client) execute(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.CaptureException(err)
			} else {
				sentry.CaptureException(err)
			}
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	err := c.transport.Execute(ctx, &transport.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	}, result)
	duration := time.Since(start)

	if err != nil {
		capture := func(scope *sentry.Scope, capture func(error) *sentry.EventID) {
			scope.SetTag("api.endpoint", method+" "+path)
			scope.SetContext("api", map[string]interface{}{
				"method":   method,
				"path":     path,
				"query":    query.Encode(),
				"duration": duration.String(),
			})
			capture(err)
		}

		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) { capture(scope, hub.CaptureException) })
		} else {
			sentry.WithScope(func(scope *sentry.Scope) { capture(scope, sentry.CaptureException) })
		}
	}

	return err
}

// Close flushes pending Sentry events and closes the storage
func (c *Client) Close() error {
	sentry.Flush(2 * time.Second)
	if c.storage != nil {
		return c.storage.Close()
	}
	return nil
}
