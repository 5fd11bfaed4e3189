package financas

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/minhasfinancas/financas-go/internal/transport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validCreateParams() *CreateTransactionParams {
	return &CreateTransactionParams{
		Description: "Aluguel",
		Amount:      decimal.RequireFromString("1500.00"),
		Type:        Expense,
		DueDate:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		WalletID:    "w1",
		CategoryID:  "c1",
	}
}

func TestTransactionService_Create(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodPost, "/transactions"), mock.Anything).
		Return(`{"id": "t1", "description": "Aluguel", "amount": 1500, "type": "EXPENSE", "dueDate": "2024-03-05T00:00:00.000Z"}`, nil)

	params := validCreateParams()
	params.IsRecurring = true
	params.RecurringType = Monthly

	tx, err := client.Transactions.Create(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, "t1", tx.ID)
	assert.Equal(t, "2024-03-05", tx.DueDate.String())

	body := bodyOf(t, mt, 0)
	assert.Equal(t, "2024-03-05", body["dueDate"])
	assert.Equal(t, json.Number("1500"), body["amount"])
	assert.Equal(t, Monthly, body["recurringType"])
	assert.NotContains(t, body, "installments")
	assert.NotContains(t, body, "paymentDate")
}

func TestTransactionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *CreateTransactionParams)
		field  string
	}{
		{name: "empty description", mutate: func(p *CreateTransactionParams) { p.Description = "" }, field: "description"},
		{name: "zero amount", mutate: func(p *CreateTransactionParams) { p.Amount = decimal.Zero }, field: "amount"},
		{name: "bad type", mutate: func(p *CreateTransactionParams) { p.Type = "TRANSFER" }, field: "type"},
		{name: "missing wallet", mutate: func(p *CreateTransactionParams) { p.WalletID = "" }, field: "walletId"},
		{
			name: "recurring and installment",
			mutate: func(p *CreateTransactionParams) {
				p.IsRecurring, p.RecurringType = true, Weekly
				p.IsInstallment, p.Installments = true, 3
			},
			field: "isInstallment",
		},
		{name: "recurring without cadence", mutate: func(p *CreateTransactionParams) { p.IsRecurring = true }, field: "recurringType"},
		{
			name:   "one installment",
			mutate: func(p *CreateTransactionParams) { p.IsInstallment, p.Installments = true, 1 },
			field:  "installments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mt := newMockClient()
			params := validCreateParams()
			tt.mutate(params)

			_, err := client.Transactions.Create(context.Background(), params)

			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs.Errors, 1)
			assert.Equal(t, tt.field, verrs.Errors[0].Field)
			mt.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTransactionService_EditStandaloneSkipsChooser(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodPut, "/transactions/t1"), mock.Anything).
		Return(`{"id": "t1"}`, nil)

	chooser := &countingChooser{answer: ScopeAll}
	desc := "Mercado"
	_, err := client.Transactions.Edit(context.Background(), &Transaction{ID: "t1"}, &UpdateTransactionParams{Description: &desc}, chooser)

	require.NoError(t, err)
	assert.Equal(t, 0, chooser.calls)
	assert.NotContains(t, bodyOf(t, mt, 0), "updateAll")
}

func TestTransactionService_EditGroupedScopes(t *testing.T) {
	tests := []struct {
		scope         GroupScope
		wantUpdateAll bool
	}{
		{scope: ScopeSingle},
		{scope: ScopeAll, wantUpdateAll: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			client, mt := newMockClient()
			mt.On("Execute", mock.Anything, request(http.MethodPut, "/transactions/t1"), mock.Anything).
				Return(`{"id": "t1"}`, nil)

			chooser := &countingChooser{answer: tt.scope}
			amount := decimal.NewFromInt(80)
			tx := &Transaction{ID: "t1", RecurringGroupID: "rg-1"}

			_, err := client.Transactions.Edit(context.Background(), tx, &UpdateTransactionParams{Amount: &amount}, chooser)

			require.NoError(t, err)
			assert.Equal(t, 1, chooser.calls)
			body := bodyOf(t, mt, 0)
			if tt.wantUpdateAll {
				assert.Equal(t, true, body["updateAll"])
			} else {
				assert.NotContains(t, body, "updateAll")
			}
		})
	}
}

func TestTransactionService_EditCancelledSendsNothing(t *testing.T) {
	client, mt := newMockClient()

	cancelled := errors.New("user cancelled")
	chooser := ScopeChooserFunc(func(context.Context, *Transaction, Action) (GroupScope, error) {
		return "", cancelled
	})

	_, err := client.Transactions.Edit(context.Background(), &Transaction{ID: "t1", InstallmentGroupID: "ig"}, nil, chooser)

	assert.ErrorIs(t, err, cancelled)
	mt.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionService_RemoveScopes(t *testing.T) {
	tests := []struct {
		name      string
		tx        *Transaction
		chooser   ScopeChooser
		wantQuery string
	}{
		{name: "standalone", tx: &Transaction{ID: "t1"}, chooser: nil, wantQuery: ""},
		{name: "grouped single", tx: &Transaction{ID: "t1", InstallmentGroupID: "ig"}, chooser: FixedScope(ScopeSingle), wantQuery: ""},
		{name: "grouped all", tx: &Transaction{ID: "t1", InstallmentGroupID: "ig"}, chooser: FixedScope(ScopeAll), wantQuery: "deleteAll=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mt := newMockClient()
			mt.On("Execute", mock.Anything, request(http.MethodDelete, "/transactions/t1"), mock.Anything).
				Return(nil, nil)

			err := client.Transactions.Remove(context.Background(), tt.tx, tt.chooser)

			require.NoError(t, err)
			r := mt.Calls[0].Arguments.Get(1).(*transport.Request)
			assert.Equal(t, tt.wantQuery, r.Query.Encode())
			assert.Nil(t, r.Body)
		})
	}
}

func TestTransactionService_RemoveGroupedWithoutChooser(t *testing.T) {
	client, mt := newMockClient()

	err := client.Transactions.Remove(context.Background(), &Transaction{ID: "t1", RecurringGroupID: "rg"}, nil)

	assert.ErrorIs(t, err, ErrScopeRequired)
	mt.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionService_DeleteRequiresScope(t *testing.T) {
	client, _ := newMockClient()

	err := client.Transactions.Delete(context.Background(), "t1", "")
	assert.ErrorIs(t, err, ErrScopeRequired)

	_, err = client.Transactions.Update(context.Background(), "t1", nil, "every")
	assert.ErrorIs(t, err, ErrScopeRequired)
}

func TestTransactionService_Pay(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodPost, "/transactions/t1/pay"), mock.Anything).
		Return(`{"id": "t1", "isPaid": true, "paymentDate": "2024-03-10T15:30:00.000Z"}`, nil)

	paidAt := time.Date(2024, 3, 10, 12, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	tx, err := client.Transactions.Pay(context.Background(), "t1", paidAt)

	require.NoError(t, err)
	assert.True(t, tx.IsPaid)
	require.NotNil(t, tx.PaymentDate)
	assert.Equal(t, "2024-03-10T15:30:00.000Z", bodyOf(t, mt, 0)["paymentDate"])
}

func TestTransactionQueryBuilder(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodGet, "/transactions"), mock.Anything).
		Return(`[]`, nil)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)

	_, err := client.Transactions.Query().
		Between(start, end).
		Paid(true).
		WithWallet("w1").
		WithCategory("c1").
		OfType(Income).
		Execute(context.Background())

	require.NoError(t, err)
	r := mt.Calls[0].Arguments.Get(1).(*transport.Request)
	assert.Equal(t, "2024-03-01T00:00:00.000Z", r.Query.Get("startDate"))
	assert.Equal(t, "2024-03-15T23:59:59.000Z", r.Query.Get("endDate"))
	assert.Equal(t, "true", r.Query.Get("isPaid"))
	assert.Equal(t, "w1", r.Query.Get("walletId"))
	assert.Equal(t, "c1", r.Query.Get("categoryId"))
	assert.Equal(t, "INCOME", r.Query.Get("type"))
}

func TestTransactionService_ListSendsNoFilters(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodGet, "/transactions"), mock.Anything).
		Return(`[{"id": "t1", "installmentGroupId": "ig", "isInstallment": true, "installments": 3, "currentInstallment": 2}]`, nil)

	txs, err := client.Transactions.List(context.Background())

	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].IsGrouped())
	assert.Equal(t, "2/3", txs[0].InstallmentLabel())
	assert.Nil(t, mt.Calls[0].Arguments.Get(1).(*transport.Request).Query)
}
