package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/minhasfinancas/financas-go/internal/config"
	"github.com/minhasfinancas/financas-go/internal/logging"
	"github.com/minhasfinancas/financas-go/internal/storage"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	configPath := flag.String("config", "", "Path to a financas.yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// stdout carries the protocol; logs go to stderr
	logger := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Output:    os.Stderr,
		Component: "mcp",
	})

	// share the CLI's state so a `financas login` is picked up here
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	client, err := financas.NewClient(&financas.ClientOptions{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		Storage:   store,
		Logger:    logger,
		SentryDSN: cfg.Sentry.DSN,
		OnSessionExpired: func() {
			logger.Warn("Session expired; run `financas login` again")
		},
	})
	if err != nil {
		log.Fatalf("failed to initialize client: %v", err)
	}
	defer client.Close()

	if ok, err := client.Auth.Restore(); err != nil || !ok {
		log.Fatalf("no session found; run `financas login` first (%v)", err)
	}

	server := newServer(client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Run server over stdio transport (for Claude Desktop)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newServer(client *financas.Client, logger *logging.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "financas",
		Version: "1.0.0",
	}, nil)
	registerTools(server, &financeTools{client: client, log: logger})
	return server
}

func registerTools(server *mcp.Server, tools *financeTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_wallets",
		Description: "Get all wallets with their current balances. A wallet can only be deleted when its balance is exactly zero.",
	}, tools.GetWallets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_categories",
		Description: "Get income and expense categories, optionally filtered by type.",
	}, tools.GetCategories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transactions",
		Description: "Query transactions by due date range, paid status, wallet and type. Returns description, amount, due date, status, wallet, category and recurring/installment info.",
	}, tools.GetTransactions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transfers",
		Description: "Get all transfers between wallets.",
	}, tools.GetTransfers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get the dashboard for the week, biweekly period or month containing today: totals, upcoming and paid transactions.",
	}, tools.GetDashboard)
}
