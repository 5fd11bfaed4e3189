package financas

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/minhasfinancas/financas-go/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const summaryJSON = `{
	"period": {"month": 3, "year": 2024},
	"wallets": [{"id": "w1", "name": "Conta", "balance": 1000}],
	"totalBalance": 1000,
	"income": {"total": 5000, "paid": 5000, "pending": 0},
	"expense": {"total": 3200.75, "paid": 2000, "pending": 1200.75},
	"balance": 1799.25,
	"pendingTransactions": 4,
	"overdueTransactions": 1
}`

func findRequest(t *testing.T, mt *MockTransport, path string) *transport.Request {
	t.Helper()
	for _, call := range mt.Calls {
		if r := call.Arguments.Get(1).(*transport.Request); r.Path == path {
			return r
		}
	}
	t.Fatalf("no request to %s", path)
	return nil
}

func TestDashboardService_Load(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodGet, "/dashboard/summary"), mock.Anything).
		Return(summaryJSON, nil)
	mt.On("Execute", mock.Anything, request(http.MethodGet, "/dashboard/upcoming"), mock.Anything).
		Return(`[{"id": "t2", "isPaid": false}]`, nil)
	mt.On("Execute", mock.Anything, request(http.MethodGet, "/transactions"), mock.Anything).
		Return(`[{"id": "t1", "isPaid": true}]`, nil)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	view, err := client.Dashboard.Load(context.Background(), PeriodBiweekly, now)

	require.NoError(t, err)
	assert.Equal(t, PeriodBiweekly, view.Kind)
	assert.Equal(t, "1799.25", view.Summary.Balance.String())
	assert.Equal(t, "1200.75", view.Summary.Expense.Pending.String())
	assert.Equal(t, 1, view.Summary.OverdueTransactions)
	require.Len(t, view.Upcoming, 1)
	require.Len(t, view.Paid, 1)

	summary := findRequest(t, mt, "/dashboard/summary")
	assert.Equal(t, "2024-03-01T00:00:00.000Z", summary.Query.Get("startDate"))
	assert.Equal(t, "2024-03-15T23:59:59.000Z", summary.Query.Get("endDate"))

	// 5 days 11h59m59s left rounds up to 6, below the floor of 7
	assert.Equal(t, "7", findRequest(t, mt, "/dashboard/upcoming").Query.Get("days"))

	paid := findRequest(t, mt, "/transactions")
	assert.Equal(t, "true", paid.Query.Get("isPaid"))
	assert.Equal(t, summary.Query.Get("startDate"), paid.Query.Get("startDate"))
	assert.Equal(t, summary.Query.Get("endDate"), paid.Query.Get("endDate"))
}

func TestDashboardService_LoadMonthUpcomingDays(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodGet, "/dashboard/summary"), mock.Anything).
		Return(summaryJSON, nil)
	mt.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(`[]`, nil)

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.Dashboard.Load(context.Background(), PeriodMonth, now)

	require.NoError(t, err)
	assert.Equal(t, "31", findRequest(t, mt, "/dashboard/upcoming").Query.Get("days"))
}

func TestDashboardService_LoadFailsAsAWhole(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodGet, "/dashboard/summary"), mock.Anything).
		Return(summaryJSON, nil)
	mt.On("Execute", mock.Anything, request(http.MethodGet, "/dashboard/upcoming"), mock.Anything).
		Return(nil, &Error{Code: "SERVER_ERROR", StatusCode: 500, Err: ErrServerError})
	mt.On("Execute", mock.Anything, request(http.MethodGet, "/transactions"), mock.Anything).
		Return(`[]`, nil)

	view, err := client.Dashboard.Load(context.Background(), PeriodMonth, time.Now())

	assert.Nil(t, view)
	assert.ErrorIs(t, err, ErrServerError)
}

func TestDashboardService_LoadUnknownKind(t *testing.T) {
	client, mt := newMockClient()

	mt.On("Execute", mock.Anything, request(http.MethodGet, "/dashboard/summary"), mock.Anything).
		Return(summaryJSON, nil)
	mt.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(`[]`, nil)

	view, err := client.Dashboard.Load(context.Background(), "quarter", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, view.Kind)
}
