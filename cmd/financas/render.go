package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	income  lipgloss.Style
	expense lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
}

func newStyles(theme financas.Theme) styles {
	if theme == financas.ThemeDark {
		return styles{
			title:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
			label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
			value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true),
			income:  lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
			expense: lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
			muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
			warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A")).Bold(true),
			err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		}
	}
	return styles{
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1D4ED8")).Bold(true),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Bold(true),
		income:  lipgloss.NewStyle().Foreground(lipgloss.Color("#047857")),
		expense: lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#B45309")).Bold(true),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C")).Bold(true),
	}
}

// brl formats an amount the Brazilian way: R$ 1.234,56
func brl(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), frac)
}

// table writes rows padded to the widest cell of each column. Widths are
// measured with lipgloss so styled cells line up.
func table(w io.Writer, header []string, rows [][]string, headerStyle lipgloss.Style) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if style != nil {
				cell = style.Render(cell)
			}
			parts[i] = cell + pad
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(header, &headerStyle)
	for _, row := range rows {
		line(row, nil)
	}
}

func (a *app) amount(t financas.TransactionType, d decimal.Decimal) string {
	if t == financas.Income {
		return a.styles.income.Render("+" + brl(d))
	}
	return a.styles.expense.Render("-" + brl(d))
}

func txStatus(tx *financas.Transaction) string {
	if tx.IsPaid {
		return "pago"
	}
	return "pendente"
}

func txGroup(tx *financas.Transaction) string {
	switch {
	case tx.IsInstallment:
		return "parcela " + tx.InstallmentLabel()
	case tx.IsRecurring:
		return strings.ToLower(string(tx.RecurringType))
	}
	return ""
}

func (a *app) renderTransactions(txs []*financas.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, a.styles.muted.Render("Nenhum lançamento."))
		return
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		wallet, category := "", ""
		if tx.Wallet != nil {
			wallet = tx.Wallet.Name
		}
		if tx.Category != nil {
			category = tx.Category.Name
		}
		rows = append(rows, []string{
			tx.ID,
			tx.DueDate.Display(),
			tx.Description,
			a.amount(tx.Type, tx.Amount),
			txStatus(tx),
			txGroup(tx),
			wallet,
			category,
		})
	}
	table(a.out, []string{"ID", "VENCIMENTO", "DESCRIÇÃO", "VALOR", "STATUS", "GRUPO", "CARTEIRA", "CATEGORIA"}, rows, a.styles.label)
}
