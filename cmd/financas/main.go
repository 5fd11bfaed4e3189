package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/getsentry/sentry-go"
	"github.com/minhasfinancas/financas-go/internal/config"
	"github.com/minhasfinancas/financas-go/internal/logging"
	"github.com/minhasfinancas/financas-go/internal/storage"
	"github.com/minhasfinancas/financas-go/internal/types"
	"github.com/minhasfinancas/financas-go/pkg/financas"
)

const usage = `usage: financas [-config file] [-v] <command> [flags]

commands:
  login        sign in
  register     create an account and sign in
  logout       sign out
  whoami       show the signed-in user
  theme        show or toggle the colour theme
  wallets      list, create, edit or delete wallets
  categories   list, create, edit or delete categories
  transactions list, create, edit, delete or pay transactions
  transfers    list, create or delete transfers
  dashboard    show the dashboard for the current period
  export       write the period's transactions to an .xlsx file
`

func main() {
	configPath := flag.String("config", "", "Path to a financas.yaml config file")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := newApp(cfg, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "financas: %v\n", err)
		os.Exit(1)
	}

	err = app.run(ctx, flag.Args())
	app.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, app.styles.err.Render(financas.UserMessage(err, err.Error())))
		stop()
		os.Exit(1)
	}
}

// app is the application context: built once, holding the client, the
// session and the theme for every command.
type app struct {
	client *financas.Client
	log    *logging.Logger
	in     *bufio.Reader
	out    io.Writer
	styles styles
	now    func() time.Time
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	log := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		Component: "cli",
	})

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	opts := &financas.ClientOptions{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.Timeout,
		Storage:     store,
		Logger:      log,
		SentryDSN:   cfg.Sentry.DSN,
		PrefersDark: lipgloss.HasDarkBackground,
	}
	if cfg.Sentry.Environment != "" {
		opts.SentryOptions = &sentry.ClientOptions{Environment: cfg.Sentry.Environment}
	}
	if cfg.Retry.Max > 0 {
		opts.RetryConfig = &types.RetryConfig{
			MaxRetries: cfg.Retry.Max,
			RetryWait:  cfg.Retry.Wait,
			MaxWait:    cfg.Retry.MaxWait,
		}
	}

	a := &app{
		log: log,
		in:  bufio.NewReader(in),
		out: out,
		now: time.Now,
	}
	opts.OnSessionExpired = func() {
		fmt.Fprintln(a.out, a.styles.warn.Render("Sessão expirada. Entre novamente com 'financas login'."))
	}

	client, err := financas.NewClient(opts)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.client = client

	// restore before anything that needs the session
	if _, err := client.Auth.Restore(); err != nil {
		log.Warn("Failed to restore session", "error", err)
	}
	a.styles = newStyles(client.Preferences.Theme())

	return a, nil
}

func (a *app) close() {
	if err := a.client.Close(); err != nil {
		a.log.Warn("Failed to close client", "error", err)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "theme":
		return a.theme(rest)
	}

	handler, ok := map[string]func(context.Context, []string) error{
		"wallets":      a.wallets,
		"categories":   a.categories,
		"transactions": a.transactions,
		"transfers":    a.transfers,
		"dashboard":    a.dashboard,
		"export":       a.export,
	}[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	if a.client.Auth.State() != financas.StateAuthenticated {
		return financas.ErrNotAuthenticated
	}
	return handler(ctx, rest)
}
