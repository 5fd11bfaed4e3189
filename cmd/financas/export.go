package main

import (
	"context"
	"fmt"

	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/xuri/excelize/v2"
)

const (
	transactionsSheet = "Lançamentos"
	walletsSheet      = "Carteiras"
)

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.flags("export")
	out := fs.String("out", "", "Output .xlsx path (default financas_<start>.xlsx)")
	period := fs.String("period", "", "week, biweekly or month (default: dashboard period)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind := a.client.Preferences.DashboardPeriod()
	if *period != "" {
		k, ok := financas.ParsePeriodKind(*period)
		if !ok {
			return &financas.ValidationError{Field: "period", Message: "use week, biweekly ou month", Value: *period}
		}
		kind = k
	}
	window := financas.WindowFor(kind, a.now())

	txs, err := a.client.Transactions.Query().InWindow(window).Execute(ctx)
	if err != nil {
		return err
	}
	wallets, err := a.client.Wallets.List(ctx)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("financas_%s.xlsx", window.Start.Format("20060102"))
	}
	if err := writeWorkbook(path, txs, wallets); err != nil {
		return err
	}

	income, expense := totals(txs)
	fmt.Fprintf(a.out, "%d lançamento(s) exportado(s) para %s (receitas %s, despesas %s)\n",
		len(txs), a.styles.value.Render(path), brl(income), brl(expense))
	return nil
}

func writeWorkbook(path string, txs []*financas.Transaction, wallets []*financas.Wallet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Vencimento", "Descrição", "Tipo", "Valor", "Status", "Grupo", "Carteira", "Categoria"}
	if err := f.SetSheetRow(transactionsSheet, "A1", &header); err != nil {
		return err
	}
	for i, tx := range txs {
		wallet, category := "", ""
		if tx.Wallet != nil {
			wallet = tx.Wallet.Name
		}
		if tx.Category != nil {
			category = tx.Category.Name
		}
		typeText := "Despesa"
		if tx.Type == financas.Income {
			typeText = "Receita"
		}
		row := []interface{}{
			tx.DueDate.String(),
			tx.Description,
			typeText,
			tx.Amount.InexactFloat64(),
			txStatus(tx),
			txGroup(tx),
			wallet,
			category,
		}
		if err := f.SetSheetRow(transactionsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	f.SetColWidth(transactionsSheet, "A", "A", 12)
	f.SetColWidth(transactionsSheet, "B", "B", 30)
	f.SetColWidth(transactionsSheet, "F", "H", 15)

	if _, err := f.NewSheet(walletsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	header = []interface{}{"Carteira", "Saldo"}
	if err := f.SetSheetRow(walletsSheet, "A1", &header); err != nil {
		return err
	}
	for i, w := range wallets {
		row := []interface{}{w.Name, w.Balance.InexactFloat64()}
		if err := f.SetSheetRow(walletsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	f.SetColWidth(walletsSheet, "A", "A", 20)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
