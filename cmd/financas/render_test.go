package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"5.5", "R$ 5,50"},
		{"999.99", "R$ 999,99"},
		{"1000", "R$ 1.000,00"},
		{"1234.567", "R$ 1.234,57"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"-42.1", "-R$ 42,10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, brl(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	table(&buf, []string{"ID", "NOME"}, [][]string{{"1", "Conta corrente"}, {"22", "X"}}, newStyles(financas.ThemeLight).label)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[1], "Conta"), strings.Index(lines[2], "X"))
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount("89,90")
	require.NoError(t, err)
	assert.Equal(t, "89.9", d.String())

	_, err = parseAmount("abc")
	var vErr *financas.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestParseScopeAnswer(t *testing.T) {
	for _, in := range []string{"s", "S", "somente", "1"} {
		scope, err := parseScopeAnswer(in)
		require.NoError(t, err)
		assert.Equal(t, financas.ScopeSingle, scope, in)
	}
	for _, in := range []string{"t", "todos", "all", "2"} {
		scope, err := parseScopeAnswer(in)
		require.NoError(t, err)
		assert.Equal(t, financas.ScopeAll, scope, in)
	}
	_, err := parseScopeAnswer("")
	assert.ErrorIs(t, err, errCancelled)
}

func TestPromptScope_AsksWithAction(t *testing.T) {
	var out bytes.Buffer
	a := &app{
		in:     bufio.NewReader(strings.NewReader("t\n")),
		out:    &out,
		styles: newStyles(financas.ThemeLight),
	}
	tx := &financas.Transaction{Description: "Aluguel", IsRecurring: true, RecurringGroupID: "g1"}

	scope, err := promptScope{app: a}.ChooseScope(context.Background(), tx, financas.ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, financas.ScopeAll, scope)
	assert.Contains(t, out.String(), "recorrente")
	assert.Contains(t, out.String(), "Excluir")
}

func TestScopeChooser_RejectsUnknownFlag(t *testing.T) {
	a := &app{}
	_, err := a.scopeChooser("some")
	var vErr *financas.ValidationError
	assert.ErrorAs(t, err, &vErr)

	chooser, err := a.scopeChooser("all")
	require.NoError(t, err)
	scope, err := chooser.ChooseScope(context.Background(), nil, financas.ActionEdit)
	require.NoError(t, err)
	assert.Equal(t, financas.ScopeAll, scope)
}
