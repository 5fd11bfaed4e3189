package main

import (
	"context"
	"fmt"

	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
)

func (a *app) dashboard(ctx context.Context, args []string) error {
	fs := a.flags("dashboard")
	period := fs.String("period", "", "week, biweekly or month (remembered)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prefs := a.client.Preferences
	if *period != "" {
		if err := prefs.SetDashboardPeriod(financas.PeriodKind(*period)); err != nil {
			return err
		}
	}
	kind := prefs.DashboardPeriod()
	now := a.now()

	view, err := a.client.Dashboard.Load(ctx, kind, now)
	if err != nil {
		// render the empty frame; the reason is in the log
		a.log.Error("Failed to load dashboard", "period", kind, "error", err)
		view = &financas.DashboardView{Kind: kind, Window: financas.WindowFor(kind, now)}
	}
	a.renderDashboard(view)
	return nil
}

func (a *app) renderDashboard(view *financas.DashboardView) {
	w := view.Window
	fmt.Fprintf(a.out, "%s %s\n\n",
		a.styles.title.Render(view.Kind.Label()),
		a.styles.muted.Render(financas.NewDate(w.Start).Display()+" a "+financas.NewDate(w.End).Display()))

	s := view.Summary
	if s == nil {
		s = &financas.DashboardSummary{}
	}

	a.kv("Saldo total", brl(s.TotalBalance))
	a.kv("Receitas", fmt.Sprintf("%s (pago %s, pendente %s)",
		a.styles.income.Render(brl(s.Income.Total)), brl(s.Income.Paid), brl(s.Income.Pending)))
	a.kv("Despesas", fmt.Sprintf("%s (pago %s, pendente %s)",
		a.styles.expense.Render(brl(s.Expense.Total)), brl(s.Expense.Paid), brl(s.Expense.Pending)))

	balance := s.Balance
	if balance.IsNegative() {
		a.kv("Balanço", a.styles.expense.Render(brl(balance)))
	} else {
		a.kv("Balanço", a.styles.income.Render(brl(balance)))
	}
	if s.OverdueTransactions > 0 {
		fmt.Fprintln(a.out, a.styles.warn.Render(fmt.Sprintf("%d lançamento(s) em atraso", s.OverdueTransactions)))
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.styles.title.Render("Carteiras"))
	a.renderWallets(s.Wallets)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.styles.title.Render("Próximos vencimentos"))
	a.renderTransactions(view.Upcoming)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.styles.title.Render("Pagos no período"))
	a.renderTransactions(view.Paid)
}

func (a *app) kv(label, value string) {
	fmt.Fprintf(a.out, "%s %s\n", a.styles.label.Render(fmt.Sprintf("%-12s", label+":")), value)
}

// totals sums income and expense over txs
func totals(txs []*financas.Transaction) (income, expense decimal.Decimal) {
	for _, tx := range txs {
		if tx.Type == financas.Income {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense
}
