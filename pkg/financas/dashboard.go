package financas

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DashboardView is everything the dashboard shows for one period
type DashboardView struct {
	Kind     PeriodKind
	Window   Window
	Summary  *DashboardSummary
	Upcoming []*Transaction
	Paid     []*Transaction
}

// dashboardService implements the DashboardService interface
type dashboardService struct {
	client *Client
}

// Summary retrieves totals for the window
func (s *dashboardService) Summary(ctx context.Context, w Window) (*DashboardSummary, error) {
	query := url.Values{
		"startDate": {apiTimestamp(w.Start)},
		"endDate":   {apiTimestamp(w.End)},
	}

	var summary DashboardSummary
	if err := s.client.execute(ctx, http.MethodGet, "/dashboard/summary", query, nil, &summary); err != nil {
		return nil, errors.Wrap(err, "failed to get dashboard summary")
	}
	return &summary, nil
}

// Upcoming retrieves unpaid transactions due within days
func (s *dashboardService) Upcoming(ctx context.Context, days int) ([]*Transaction, error) {
	if days < minUpcomingDays {
		days = minUpcomingDays
	}
	query := url.Values{"days": {strconv.Itoa(days)}}

	var txs []*Transaction
	if err := s.client.execute(ctx, http.MethodGet, "/dashboard/upcoming", query, nil, &txs); err != nil {
		return nil, errors.Wrap(err, "failed to get upcoming transactions")
	}
	return txs, nil
}

// Load computes the window of kind around now and fetches the summary, the
// upcoming list and the paid transactions in parallel. It returns once all
// three are done; any failure fails the whole view.
func (s *dashboardService) Load(ctx context.Context, kind PeriodKind, now time.Time) (*DashboardView, error) {
	if _, ok := ParsePeriodKind(string(kind)); !ok {
		kind = DefaultPeriod
	}
	if now.IsZero() {
		now = s.client.now()
	}

	view := &DashboardView{
		Kind:   kind,
		Window: WindowFor(kind, now),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.Summary(gctx, view.Window)
		if err != nil {
			return err
		}
		view.Summary = summary
		return nil
	})

	g.Go(func() error {
		upcoming, err := s.Upcoming(gctx, view.Window.UpcomingDays(now))
		if err != nil {
			return err
		}
		view.Upcoming = upcoming
		return nil
	})

	g.Go(func() error {
		paid, err := s.client.Transactions.Query().InWindow(view.Window).Paid(true).Execute(gctx)
		if err != nil {
			return err
		}
		view.Paid = paid
		return nil
	})

	if err := g.Wait(); err != nil {
		if s.client.options.Logger != nil {
			s.client.options.Logger.Error("Dashboard load failed", "period", kind, "error", err)
		}
		return nil, errors.Wrap(err, "failed to load dashboard")
	}

	return view, nil
}
