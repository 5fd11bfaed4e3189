package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minhasfinancas/financas-go/internal/logging"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// financeTools holds the client and implements all tool handlers
type financeTools struct {
	client *financas.Client
	log    *logging.Logger
	now    func() time.Time
}

// logger returns a child logger tagged with the tool name
func (t *financeTools) logger(tool string) *logging.Logger {
	if t.log == nil {
		return logging.Nop()
	}
	return t.log.With("tool", tool)
}

// parseDay reads a YYYY-MM-DD date as local midnight, like the CLI
func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func (t *financeTools) today() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// GetWallets tool - retrieves all wallets
type GetWalletsInput struct {
	// No input parameters needed
}

type WalletEntry struct {
	ID          string  `json:"id" jsonschema:"Wallet ID"`
	Name        string  `json:"name" jsonschema:"Wallet name"`
	Description string  `json:"description,omitempty" jsonschema:"Wallet description"`
	Balance     float64 `json:"balance" jsonschema:"Current balance"`
	CanDelete   bool    `json:"canDelete" jsonschema:"Whether the wallet can be deleted (balance is zero)"`
}

type GetWalletsOutput struct {
	Wallets      []WalletEntry `json:"wallets" jsonschema:"List of all wallets"`
	TotalBalance float64       `json:"totalBalance" jsonschema:"Sum of all wallet balances"`
	Count        int           `json:"count" jsonschema:"Number of wallets"`
}

func (t *financeTools) GetWallets(ctx context.Context, req *mcp.CallToolRequest, input GetWalletsInput) (*mcp.CallToolResult, GetWalletsOutput, error) {
	wallets, err := t.client.Wallets.List(ctx)
	if err != nil {
		t.logger("get_wallets").Error("Failed to fetch wallets", "error", err)
		return nil, GetWalletsOutput{}, fmt.Errorf("failed to fetch wallets: %w", err)
	}

	out := GetWalletsOutput{Wallets: []WalletEntry{}}
	for _, w := range wallets {
		out.Wallets = append(out.Wallets, WalletEntry{
			ID:          w.ID,
			Name:        w.Name,
			Description: w.Description,
			Balance:     w.Balance.InexactFloat64(),
			CanDelete:   w.CanDelete(),
		})
		out.TotalBalance += w.Balance.InexactFloat64()
	}
	out.Count = len(out.Wallets)

	return nil, out, nil
}

// GetCategories tool - retrieves categories
type GetCategoriesInput struct {
	Type string `json:"type,omitempty" jsonschema:"INCOME or EXPENSE (optional)"`
}

type CategoryEntry struct {
	ID    string `json:"id" jsonschema:"Category ID"`
	Name  string `json:"name" jsonschema:"Category name"`
	Type  string `json:"type" jsonschema:"INCOME or EXPENSE"`
	Color string `json:"color,omitempty" jsonschema:"Category color (hex code)"`
}

type GetCategoriesOutput struct {
	Categories []CategoryEntry `json:"categories" jsonschema:"List of categories"`
	Count      int             `json:"count" jsonschema:"Number of categories"`
}

func (t *financeTools) GetCategories(ctx context.Context, req *mcp.CallToolRequest, input GetCategoriesInput) (*mcp.CallToolResult, GetCategoriesOutput, error) {
	categories, err := t.client.Categories.List(ctx)
	if err != nil {
		t.logger("get_categories").Error("Failed to fetch categories", "error", err)
		return nil, GetCategoriesOutput{}, fmt.Errorf("failed to fetch categories: %w", err)
	}

	if input.Type != "" {
		txType := financas.TransactionType(strings.ToUpper(input.Type))
		if !txType.Valid() {
			return nil, GetCategoriesOutput{}, fmt.Errorf("invalid type %q (expected INCOME or EXPENSE)", input.Type)
		}
		categories = financas.FilterByType(categories, txType)
	}

	out := GetCategoriesOutput{Categories: []CategoryEntry{}}
	for _, c := range categories {
		out.Categories = append(out.Categories, CategoryEntry{
			ID:    c.ID,
			Name:  c.Name,
			Type:  string(c.Type),
			Color: c.Color,
		})
	}
	out.Count = len(out.Categories)

	return nil, out, nil
}

// GetTransactions tool - queries transactions with optional filters
type GetTransactionsInput struct {
	StartDate string `json:"startDate,omitempty" jsonschema:"Start due date in YYYY-MM-DD format (optional)"`
	EndDate   string `json:"endDate,omitempty" jsonschema:"End due date in YYYY-MM-DD format (optional)"`
	Status    string `json:"status,omitempty" jsonschema:"paid or pending (optional)"`
	WalletID  string `json:"walletId,omitempty" jsonschema:"Filter by wallet ID (optional)"`
	Type      string `json:"type,omitempty" jsonschema:"INCOME or EXPENSE (optional)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of transactions to return (default: 50)"`
}

type TransactionEntry struct {
	ID          string  `json:"id" jsonschema:"Transaction ID"`
	Description string  `json:"description" jsonschema:"Transaction description"`
	DueDate     string  `json:"dueDate" jsonschema:"Due date (YYYY-MM-DD)"`
	Amount      float64 `json:"amount" jsonschema:"Transaction amount (always positive)"`
	Type        string  `json:"type" jsonschema:"INCOME or EXPENSE"`
	Paid        bool    `json:"paid" jsonschema:"Whether the transaction is paid"`
	Wallet      string  `json:"wallet,omitempty" jsonschema:"Wallet name"`
	Category    string  `json:"category,omitempty" jsonschema:"Category name"`
	Recurring   string  `json:"recurring,omitempty" jsonschema:"Recurrence (WEEKLY, MONTHLY, YEARLY, INDEFINITE) if recurring"`
	Installment string  `json:"installment,omitempty" jsonschema:"Installment position as current/total if installment"`
	Notes       string  `json:"notes,omitempty" jsonschema:"Transaction notes"`
}

type GetTransactionsOutput struct {
	Transactions []TransactionEntry `json:"transactions" jsonschema:"List of transactions"`
	Count        int                `json:"count" jsonschema:"Number of transactions returned"`
}

func (t *financeTools) GetTransactions(ctx context.Context, req *mcp.CallToolRequest, input GetTransactionsInput) (*mcp.CallToolResult, GetTransactionsOutput, error) {
	query := t.client.Transactions.Query()

	if input.StartDate != "" || input.EndDate != "" {
		var startDate, endDate time.Time
		var err error

		if input.StartDate != "" {
			startDate, err = parseDay(input.StartDate)
			if err != nil {
				return nil, GetTransactionsOutput{}, fmt.Errorf("invalid startDate format (expected YYYY-MM-DD): %w", err)
			}
		}

		if input.EndDate != "" {
			endDate, err = parseDay(input.EndDate)
			if err != nil {
				return nil, GetTransactionsOutput{}, fmt.Errorf("invalid endDate format (expected YYYY-MM-DD): %w", err)
			}
			endDate = endDate.Add(24*time.Hour - time.Second)
		}

		if startDate.IsZero() {
			// End date only - go back 30 days
			startDate = endDate.AddDate(0, 0, -30)
		}
		if endDate.IsZero() {
			// Start date only - go to today
			endDate = t.today()
		}
		query = query.Between(startDate, endDate)
	}

	switch strings.ToLower(input.Status) {
	case "":
	case "paid":
		query = query.Paid(true)
	case "pending":
		query = query.Paid(false)
	default:
		return nil, GetTransactionsOutput{}, fmt.Errorf("invalid status %q (expected paid or pending)", input.Status)
	}

	if input.WalletID != "" {
		query = query.WithWallet(input.WalletID)
	}
	if input.Type != "" {
		query = query.OfType(financas.TransactionType(strings.ToUpper(input.Type)))
	}

	result, err := query.Execute(ctx)
	if err != nil {
		t.logger("get_transactions").Error("Failed to fetch transactions", "error", err)
		return nil, GetTransactionsOutput{}, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	// Apply limit (default to 50)
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(result) > limit {
		result = result[:limit]
	}

	out := GetTransactionsOutput{Transactions: []TransactionEntry{}}
	for _, tx := range result {
		out.Transactions = append(out.Transactions, transactionEntry(tx))
	}
	out.Count = len(out.Transactions)

	return nil, out, nil
}

func transactionEntry(tx *financas.Transaction) TransactionEntry {
	entry := TransactionEntry{
		ID:          tx.ID,
		Description: tx.Description,
		DueDate:     tx.DueDate.String(),
		Amount:      tx.Amount.InexactFloat64(),
		Type:        string(tx.Type),
		Paid:        tx.IsPaid,
		Installment: tx.InstallmentLabel(),
		Notes:       tx.Notes,
	}
	if tx.IsRecurring {
		entry.Recurring = string(tx.RecurringType)
	}
	if tx.Wallet != nil {
		entry.Wallet = tx.Wallet.Name
	}
	if tx.Category != nil {
		entry.Category = tx.Category.Name
	}
	return entry
}

// GetTransfers tool - retrieves all transfers
type GetTransfersInput struct {
	// No input parameters needed
}

type TransferEntry struct {
	ID          string  `json:"id" jsonschema:"Transfer ID"`
	Date        string  `json:"date" jsonschema:"Transfer date (YYYY-MM-DD)"`
	Amount      float64 `json:"amount" jsonschema:"Amount moved"`
	From        string  `json:"from" jsonschema:"Source wallet name"`
	To          string  `json:"to" jsonschema:"Destination wallet name"`
	Description string  `json:"description,omitempty" jsonschema:"Transfer description"`
}

type GetTransfersOutput struct {
	Transfers []TransferEntry `json:"transfers" jsonschema:"List of transfers"`
	Count     int             `json:"count" jsonschema:"Number of transfers"`
}

func (t *financeTools) GetTransfers(ctx context.Context, req *mcp.CallToolRequest, input GetTransfersInput) (*mcp.CallToolResult, GetTransfersOutput, error) {
	transfers, err := t.client.Transfers.List(ctx)
	if err != nil {
		t.logger("get_transfers").Error("Failed to fetch transfers", "error", err)
		return nil, GetTransfersOutput{}, fmt.Errorf("failed to fetch transfers: %w", err)
	}

	out := GetTransfersOutput{Transfers: []TransferEntry{}}
	for _, tr := range transfers {
		entry := TransferEntry{
			ID:          tr.ID,
			Date:        tr.Date.String(),
			Amount:      tr.Amount.InexactFloat64(),
			Description: tr.Description,
		}
		if tr.FromWallet != nil {
			entry.From = tr.FromWallet.Name
		}
		if tr.ToWallet != nil {
			entry.To = tr.ToWallet.Name
		}
		out.Transfers = append(out.Transfers, entry)
	}
	out.Count = len(out.Transfers)

	return nil, out, nil
}

// GetDashboard tool - summary for the period containing today
type GetDashboardInput struct {
	Period string `json:"period,omitempty" jsonschema:"week, biweekly or month (default: the saved dashboard period)"`
}

type GetDashboardOutput struct {
	Period       string             `json:"period" jsonschema:"Period kind used"`
	StartDate    string             `json:"startDate" jsonschema:"First day of the period (YYYY-MM-DD)"`
	EndDate      string             `json:"endDate" jsonschema:"Last day of the period (YYYY-MM-DD)"`
	TotalBalance float64            `json:"totalBalance" jsonschema:"Sum of wallet balances"`
	IncomeTotal  float64            `json:"incomeTotal" jsonschema:"Income due in the period"`
	IncomePaid   float64            `json:"incomePaid" jsonschema:"Income received in the period"`
	ExpenseTotal float64            `json:"expenseTotal" jsonschema:"Expenses due in the period"`
	ExpensePaid  float64            `json:"expensePaid" jsonschema:"Expenses paid in the period"`
	Balance      float64            `json:"balance" jsonschema:"Income minus expenses for the period"`
	OverdueCount int                `json:"overdueCount" jsonschema:"Number of overdue transactions"`
	Upcoming     []TransactionEntry `json:"upcoming" jsonschema:"Unpaid transactions due soon"`
	PaidInPeriod []TransactionEntry `json:"paidInPeriod" jsonschema:"Transactions paid in the period"`
}

func (t *financeTools) GetDashboard(ctx context.Context, req *mcp.CallToolRequest, input GetDashboardInput) (*mcp.CallToolResult, GetDashboardOutput, error) {
	kind := t.client.Preferences.DashboardPeriod()
	if input.Period != "" {
		k, ok := financas.ParsePeriodKind(input.Period)
		if !ok {
			return nil, GetDashboardOutput{}, fmt.Errorf("invalid period %q (expected week, biweekly or month)", input.Period)
		}
		kind = k
	}

	view, err := t.client.Dashboard.Load(ctx, kind, t.today())
	if err != nil {
		t.logger("get_dashboard").Error("Failed to load dashboard", "period", kind, "error", err)
		return nil, GetDashboardOutput{}, fmt.Errorf("failed to load dashboard: %w", err)
	}

	s := view.Summary
	out := GetDashboardOutput{
		Period:       string(view.Kind),
		StartDate:    financas.NewDate(view.Window.Start).String(),
		EndDate:      financas.NewDate(view.Window.End).String(),
		TotalBalance: s.TotalBalance.InexactFloat64(),
		IncomeTotal:  s.Income.Total.InexactFloat64(),
		IncomePaid:   s.Income.Paid.InexactFloat64(),
		ExpenseTotal: s.Expense.Total.InexactFloat64(),
		ExpensePaid:  s.Expense.Paid.InexactFloat64(),
		Balance:      s.Balance.InexactFloat64(),
		OverdueCount: s.OverdueTransactions,
		Upcoming:     []TransactionEntry{},
		PaidInPeriod: []TransactionEntry{},
	}
	for _, tx := range view.Upcoming {
		out.Upcoming = append(out.Upcoming, transactionEntry(tx))
	}
	for _, tx := range view.Paid {
		out.PaidInPeriod = append(out.PaidInPeriod, transactionEntry(tx))
	}

	return nil, out, nil
}
