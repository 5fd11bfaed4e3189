package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/minhasfinancas/financas-go/internal/apitest"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T, methods ...string) (*Validator, *apitest.Server, *bytes.Buffer) {
	t.Helper()
	api := apitest.New(t)
	api.AddUser("Ana", "ana@example.com", "secret")

	client, err := financas.NewClient(&financas.ClientOptions{BaseURL: api.BaseURL()})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	config := &ValidatorConfig{
		APIURL:        api.BaseURL(),
		Email:         "ana@example.com",
		Password:      "secret",
		Verbose:       true,
		MethodsToTest: methods,
	}
	return NewValidator(config, client, out), api, out
}

func TestValidator_AllChecksPassAgainstConformingAPI(t *testing.T) {
	v, api, _ := newTestValidator(t, append(append([]string{}, readChecks...), writeChecks...)...)

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	for _, r := range report.Results {
		assert.True(t, r.Passed, "%s: %s", r.Method, r.Error)
	}
	assert.Equal(t, len(readChecks)+len(writeChecks), report.Passed)
	assert.Equal(t, 100.0, report.SuccessRate)

	// write checks clean up after themselves
	assert.Zero(t, api.TransactionCount())
	wallets, err := v.client.Wallets.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestValidator_ReportsFailures(t *testing.T) {
	v, api, out := newTestValidator(t, "list_wallets", "list_transfers", "bogus")
	api.Fail(http.MethodGet, "/transfers", http.StatusInternalServerError, "boom")

	report, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 2, report.Failed)
	assert.Contains(t, out.String(), "FAIL list_transfers")

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, saveReport(report, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved ValidationReport
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, 3, saved.TotalTests)

	var summary bytes.Buffer
	printSummary(&summary, report, path)
	assert.Contains(t, summary.String(), "bogus: unknown method")
}

func TestValidator_LoginFailure(t *testing.T) {
	v, _, _ := newTestValidator(t, "list_wallets")
	v.config.Password = "wrong"

	_, err := v.Run(context.Background())
	assert.ErrorContains(t, err, "Credenciais inválidas")
}
