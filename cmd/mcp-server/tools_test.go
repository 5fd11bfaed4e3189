package main

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/minhasfinancas/financas-go/internal/apitest"
	"github.com/minhasfinancas/financas-go/internal/logging"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolsFixture struct {
	api     *apitest.Server
	logs    *bytes.Buffer
	tools   *financeTools
	wallet  *financas.Wallet
	expense *financas.Category
}

func setupTools(t *testing.T) *toolsFixture {
	t.Helper()
	ctx := context.Background()

	api := apitest.New(t)
	api.AddUser("Ana", "ana@example.com", "secret")
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	api.Now = func() time.Time { return now }

	client, err := financas.NewClient(&financas.ClientOptions{BaseURL: api.BaseURL()})
	require.NoError(t, err)
	_, err = client.Auth.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)

	wallet, err := client.Wallets.Create(ctx, &financas.CreateWalletParams{Name: "Conta", Balance: decimal.NewFromInt(500)})
	require.NoError(t, err)
	expense, err := client.Categories.Create(ctx, &financas.CreateCategoryParams{Name: "Casa", Type: financas.Expense})
	require.NoError(t, err)
	_, err = client.Categories.Create(ctx, &financas.CreateCategoryParams{Name: "Salário", Type: financas.Income})
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	return &toolsFixture{
		api:  api,
		logs: logs,
		tools: &financeTools{
			client: client,
			log:    logging.New(logging.Options{Level: "error", Output: logs, Component: "mcp"}),
			now:    func() time.Time { return now },
		},
		wallet:  wallet,
		expense: expense,
	}
}

func (f *toolsFixture) addTransaction(t *testing.T, desc string, due time.Time, params func(*financas.CreateTransactionParams)) {
	t.Helper()
	p := &financas.CreateTransactionParams{
		Description: desc,
		Amount:      decimal.NewFromInt(100),
		Type:        financas.Expense,
		DueDate:     due,
		WalletID:    f.wallet.ID,
		CategoryID:  f.expense.ID,
	}
	if params != nil {
		params(p)
	}
	_, err := f.tools.client.Transactions.Create(context.Background(), p)
	require.NoError(t, err)
}

func TestGetWalletsTool(t *testing.T) {
	f := setupTools(t)

	_, out, err := f.tools.GetWallets(context.Background(), nil, GetWalletsInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Conta", out.Wallets[0].Name)
	assert.Equal(t, 500.0, out.Wallets[0].Balance)
	assert.False(t, out.Wallets[0].CanDelete)
	assert.Equal(t, 500.0, out.TotalBalance)
}

func TestGetCategoriesTool(t *testing.T) {
	f := setupTools(t)
	ctx := context.Background()

	_, out, err := f.tools.GetCategories(ctx, nil, GetCategoriesInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	_, out, err = f.tools.GetCategories(ctx, nil, GetCategoriesInput{Type: "income"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Salário", out.Categories[0].Name)

	_, _, err = f.tools.GetCategories(ctx, nil, GetCategoriesInput{Type: "transfer"})
	assert.Error(t, err)
}

func TestGetTransactionsTool(t *testing.T) {
	f := setupTools(t)
	ctx := context.Background()

	f.addTransaction(t, "Luz", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil)
	f.addTransaction(t, "Sofá", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), func(p *financas.CreateTransactionParams) {
		p.IsInstallment = true
		p.Installments = 2
	})

	_, out, err := f.tools.GetTransactions(ctx, nil, GetTransactionsInput{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)

	var sofa *TransactionEntry
	for i := range out.Transactions {
		if out.Transactions[i].Description == "Sofá" {
			sofa = &out.Transactions[i]
		}
	}
	require.NotNil(t, sofa)
	assert.Equal(t, "1/2", sofa.Installment)
	assert.Equal(t, "2024-03-20", sofa.DueDate)
	assert.Equal(t, "Conta", sofa.Wallet)

	_, out, err = f.tools.GetTransactions(ctx, nil, GetTransactionsInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)

	_, _, err = f.tools.GetTransactions(ctx, nil, GetTransactionsInput{StartDate: "03/01/2024"})
	assert.Error(t, err)
	_, _, err = f.tools.GetTransactions(ctx, nil, GetTransactionsInput{Status: "late"})
	assert.Error(t, err)
}

func TestGetTransfersTool(t *testing.T) {
	f := setupTools(t)
	ctx := context.Background()

	savings, err := f.tools.client.Wallets.Create(ctx, &financas.CreateWalletParams{Name: "Poupança"})
	require.NoError(t, err)
	_, err = f.tools.client.Transfers.Create(ctx, &financas.CreateTransferParams{
		Amount:       decimal.NewFromInt(50),
		FromWalletID: f.wallet.ID,
		ToWalletID:   savings.ID,
		Date:         time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, out, err := f.tools.GetTransfers(ctx, nil, GetTransfersInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Conta", out.Transfers[0].From)
	assert.Equal(t, "Poupança", out.Transfers[0].To)
	assert.Equal(t, "2024-03-10", out.Transfers[0].Date)
}

func TestGetDashboardTool(t *testing.T) {
	f := setupTools(t)
	ctx := context.Background()

	_, out, err := f.tools.GetDashboard(ctx, nil, GetDashboardInput{Period: "biweekly"})
	require.NoError(t, err)
	assert.Equal(t, "biweekly", out.Period)
	assert.Equal(t, "2024-03-01", out.StartDate)
	assert.Equal(t, "2024-03-15", out.EndDate)
	assert.Equal(t, 500.0, out.TotalBalance)
	assert.NotNil(t, out.Upcoming)

	// defaults to the saved period
	_, out, err = f.tools.GetDashboard(ctx, nil, GetDashboardInput{})
	require.NoError(t, err)
	assert.Equal(t, "month", out.Period)
	assert.Equal(t, "2024-03-31", out.EndDate)

	_, _, err = f.tools.GetDashboard(ctx, nil, GetDashboardInput{Period: "year"})
	assert.Error(t, err)

	f.api.Fail(http.MethodGet, "/dashboard/summary", http.StatusInternalServerError, "boom")
	_, _, err = f.tools.GetDashboard(ctx, nil, GetDashboardInput{})
	assert.ErrorIs(t, err, financas.ErrServerError)
	assert.Contains(t, f.logs.String(), `"tool":"get_dashboard"`)
	assert.Contains(t, f.logs.String(), `"component":"mcp"`)
}

func TestParseDay_UsesLocalMidnight(t *testing.T) {
	got, err := parseDay("2024-03-01")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, time.Local, got.Location())

	_, err = parseDay("01/03/2024")
	assert.Error(t, err)
}
