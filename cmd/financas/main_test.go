package main

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/minhasfinancas/financas-go/internal/apitest"
	"github.com/minhasfinancas/financas-go/internal/config"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type harness struct {
	t   *testing.T
	api *apitest.Server
	dir string
}

func newHarness(t *testing.T) *harness {
	api := apitest.New(t)
	api.AddUser("Ana", "ana@example.com", "secret")
	return &harness{t: t, api: api, dir: t.TempDir()}
}

// app builds a fresh process over the same state file, like a new CLI run
func (h *harness) app(input string) (*app, *bytes.Buffer) {
	h.t.Helper()
	cfg := &config.Config{
		APIURL:  h.api.BaseURL(),
		Timeout: 5 * time.Second,
		Storage: config.StorageConfig{Backend: "file", Path: filepath.Join(h.dir, "state.json")},
		Log:     config.LogConfig{Level: "error"},
	}
	out := &bytes.Buffer{}
	a, err := newApp(cfg, strings.NewReader(input), out)
	require.NoError(h.t, err)
	a.now = func() time.Time { return time.Date(2024, 3, 12, 10, 0, 0, 0, time.Local) }
	h.t.Cleanup(a.close)
	return a, out
}

func (h *harness) run(input string, args ...string) (string, error) {
	h.t.Helper()
	a, out := h.app(input)
	err := a.run(context.Background(), args)
	return out.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	_, err := h.run("", "login", "-email", "ana@example.com", "-password", "secret")
	require.NoError(h.t, err)
}

func TestRun_RequiresSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "wallets")
	assert.ErrorIs(t, err, financas.ErrNotAuthenticated)
	assert.Zero(t, h.api.Calls(http.MethodGet, "/wallets"))
}

func TestRun_LoginPersistsAcrossRuns(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("ana@example.com\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Bem-vindo, Ana")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")
	assert.Equal(t, 1, h.api.Calls(http.MethodPost, "/auth/login"))

	_, err = h.run("", "logout")
	require.NoError(t, err)
	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Não autenticado")
}

func TestRun_LoginFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "login", "-email", "ana@example.com", "-password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Credenciais inválidas", financas.UserMessage(err, err.Error()))
}

func TestRun_WalletLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("", "wallets", "create", "-name", "Nubank", "-balance", "1234,56")
	require.NoError(t, err)
	assert.Contains(t, out, "Nubank")

	out, err = h.run("", "wallets")
	require.NoError(t, err)
	assert.Contains(t, out, "R$ 1.234,56")

	a, _ := h.app("")
	wallets, err := a.client.Wallets.List(context.Background())
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	// a wallet with money is refused before any request goes out
	out, err = h.run("", "wallets", "delete", "-id", wallets[0].ID)
	assert.ErrorIs(t, err, financas.ErrWalletNotEmpty)
	assert.Contains(t, out, "R$ 1.234,56")
	assert.Zero(t, h.api.Calls(http.MethodDelete, "/wallets/:id"))

	h.api.SetWalletOpening(wallets[0].ID, decimal.Zero)
	out, err = h.run("", "wallets", "delete", "-id", wallets[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "excluída")
	assert.Equal(t, 1, h.api.Calls(http.MethodDelete, "/wallets/:id"))
}

func TestRun_ListFailureRendersEmpty(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.Fail(http.MethodGet, "/categories", http.StatusInternalServerError, "boom")

	out, err := h.run("", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhuma categoria.")
}

func TestRun_ThemeToggleIsRemembered(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "theme", "light")
	require.NoError(t, err)

	out, err := h.run("", "theme", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")

	out, err = h.run("", "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")
}

type seeded struct {
	wallet   *financas.Wallet
	category *financas.Category
}

func (h *harness) seed() seeded {
	h.t.Helper()
	h.login()
	a, _ := h.app("")
	ctx := context.Background()
	w, err := a.client.Wallets.Create(ctx, &financas.CreateWalletParams{Name: "Conta"})
	require.NoError(h.t, err)
	c, err := a.client.Categories.Create(ctx, &financas.CreateCategoryParams{Name: "Casa", Type: financas.Expense})
	require.NoError(h.t, err)
	return seeded{wallet: w, category: c}
}

func TestRun_InstallmentDeleteAsksScope(t *testing.T) {
	h := newHarness(t)
	s := h.seed()

	_, err := h.run("", "transactions", "create",
		"-description", "Geladeira", "-amount", "900", "-due", "2024-03-10",
		"-installments", "3", "-wallet", s.wallet.ID, "-category", s.category.ID)
	require.NoError(t, err)
	require.Equal(t, 3, h.api.TransactionCount())

	a, _ := h.app("")
	txs, err := a.client.Transactions.List(context.Background())
	require.NoError(t, err)
	id := txs[0].ID

	// unclear answer cancels without touching the server
	out, err := h.run("talvez\n", "transactions", "delete", "-id", id)
	assert.ErrorIs(t, err, errCancelled)
	assert.Contains(t, out, "parcelado")
	assert.Equal(t, 3, h.api.TransactionCount())
	assert.Zero(t, h.api.Calls(http.MethodDelete, "/transactions/:id"))

	_, err = h.run("s\n", "transactions", "delete", "-id", id)
	require.NoError(t, err)
	assert.Equal(t, 2, h.api.TransactionCount())

	a, _ = h.app("")
	txs, err = a.client.Transactions.List(context.Background())
	require.NoError(t, err)
	_, err = h.run("", "transactions", "delete", "-id", txs[0].ID, "-scope", "all")
	require.NoError(t, err)
	assert.Zero(t, h.api.TransactionCount())
}

func TestRun_StandaloneEditNeverAsks(t *testing.T) {
	h := newHarness(t)
	s := h.seed()

	_, err := h.run("", "transactions", "create",
		"-description", "Mercado", "-amount", "120.50",
		"-wallet", s.wallet.ID, "-category", s.category.ID)
	require.NoError(t, err)

	a, _ := h.app("")
	txs, err := a.client.Transactions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)

	out, err := h.run("", "transactions", "edit", "-id", txs[0].ID, "-amount", "130")
	require.NoError(t, err)
	assert.NotContains(t, out, "todos do grupo")
	assert.Contains(t, out, "atualizado")
}

func TestRun_DashboardAndExport(t *testing.T) {
	h := newHarness(t)
	s := h.seed()
	h.api.Now = func() time.Time { return time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC) }

	_, err := h.run("", "transactions", "create",
		"-description", "Luz", "-amount", "89,90", "-due", "2024-03-11", "-paid",
		"-wallet", s.wallet.ID, "-category", s.category.ID)
	require.NoError(t, err)

	out, err := h.run("", "dashboard", "-period", "biweekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Quinzena")
	assert.Contains(t, out, "01/03/2024 a 15/03/2024")

	// the period choice sticks for the next run
	a, _ := h.app("")
	assert.Equal(t, financas.PeriodBiweekly, a.client.Preferences.DashboardPeriod())

	path := filepath.Join(h.dir, "out.xlsx")
	out, err = h.run("", "export", "-out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 lançamento(s)")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(transactionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Descrição", rows[0][1])
	assert.Equal(t, "Luz", rows[1][1])
	assert.Equal(t, "pago", rows[1][4])

	wallets, err := f.GetRows(walletsSheet)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "Conta", wallets[1][0])
}

func TestRun_DashboardFailureRendersEmpty(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.Fail(http.MethodGet, "/dashboard/summary", http.StatusInternalServerError, "boom")

	out, err := h.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Mês")
	assert.Contains(t, out, "Nenhuma carteira.")
	assert.Contains(t, out, "Nenhum lançamento.")
}

func TestRun_CategoryMustMatchType(t *testing.T) {
	h := newHarness(t)
	s := h.seed()

	_, err := h.run("", "transactions", "create",
		"-description", "Salário", "-amount", "5000", "-type", "INCOME",
		"-wallet", s.wallet.ID, "-category", s.category.ID)
	var vErr *financas.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "category", vErr.Field)
	assert.Zero(t, h.api.Calls(http.MethodPost, "/transactions"))

	_, err = h.run("", "transactions", "create",
		"-description", "Mercado", "-amount", "80",
		"-wallet", s.wallet.ID, "-category", s.category.ID)
	require.NoError(t, err)

	a, _ := h.app("")
	ctx := context.Background()
	income, err := a.client.Categories.Create(ctx, &financas.CreateCategoryParams{Name: "Salário", Type: financas.Income})
	require.NoError(t, err)
	txs, err := a.client.Transactions.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	_, err = h.run("", "transactions", "edit", "-id", txs[0].ID, "-category", income.ID)
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, h.api.Calls(http.MethodPut, "/transactions/:id"))
}
