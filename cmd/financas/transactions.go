package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/minhasfinancas/financas-go/pkg/financas"
)

func (a *app) transactions(ctx context.Context, args []string) error {
	action, rest := subcommand(args, "list")
	fs := a.flags("transactions " + action)

	switch action {
	case "list":
		return a.listTransactions(ctx, fs, rest)
	case "create":
		return a.createTransaction(ctx, fs, rest)
	case "edit":
		return a.editTransaction(ctx, fs, rest)

	case "delete":
		id := fs.String("id", "", "Transaction ID")
		scope := fs.String("scope", "", "single or all (asked when empty)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		tx, err := a.findTransaction(ctx, *id)
		if err != nil {
			return err
		}
		chooser, err := a.scopeChooser(*scope)
		if err != nil {
			return err
		}
		if err := a.client.Transactions.Remove(ctx, tx, chooser); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Lançamento excluído")
		return nil

	case "pay":
		id := fs.String("id", "", "Transaction ID")
		date := fs.String("date", "", "Payment date YYYY-MM-DD (now when empty)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var paidAt time.Time
		if *date != "" {
			var err error
			if paidAt, err = parseDay(*date); err != nil {
				return err
			}
		}
		tx, err := a.client.Transactions.Pay(ctx, *id, paidAt)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s marcado como pago\n", a.styles.value.Render(tx.Description))
		return nil
	}
	return fmt.Errorf("transactions: unknown action %q", action)
}

func (a *app) listTransactions(ctx context.Context, fs *flag.FlagSet, args []string) error {
	q := a.client.Transactions.Query()
	var from, to time.Time
	fs.Func("from", "Due on or after YYYY-MM-DD", func(s string) (err error) { from, err = parseDay(s); return })
	fs.Func("to", "Due on or before YYYY-MM-DD", func(s string) (err error) { to, err = parseDay(s); return })
	fs.Func("period", "week, biweekly or month around today", func(s string) error {
		kind, ok := financas.ParsePeriodKind(s)
		if !ok {
			return fmt.Errorf("unknown period %q", s)
		}
		w := financas.WindowFor(kind, a.now())
		from, to = w.Start, w.End
		return nil
	})
	fs.Func("paid", "true or false", func(s string) error {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		q = q.Paid(paid)
		return nil
	})
	fs.Func("wallet", "Wallet ID", func(s string) error { q = q.WithWallet(s); return nil })
	fs.Func("category", "Category ID", func(s string) error { q = q.WithCategory(s); return nil })
	fs.Func("type", "INCOME or EXPENSE", func(s string) error {
		q = q.OfType(financas.TransactionType(strings.ToUpper(s)))
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !from.IsZero() || !to.IsZero() {
		if !to.IsZero() {
			y, m, d := to.Date()
			to = time.Date(y, m, d, 23, 59, 59, 0, to.Location())
		}
		q = q.Between(from, to)
	}

	txs, err := q.Execute(ctx)
	if err != nil {
		a.log.Error("Failed to load transactions", "error", err)
	}
	a.renderTransactions(txs)
	return nil
}

func (a *app) createTransaction(ctx context.Context, fs *flag.FlagSet, args []string) error {
	desc := fs.String("description", "", "Description")
	amountStr := fs.String("amount", "", "Amount")
	txType := fs.String("type", "EXPENSE", "INCOME or EXPENSE")
	due := fs.String("due", "", "Due date YYYY-MM-DD (today when empty)")
	wallet := fs.String("wallet", "", "Wallet ID")
	category := fs.String("category", "", "Category ID")
	paid := fs.Bool("paid", false, "Already paid")
	recurring := fs.String("recurring", "", "WEEKLY, MONTHLY, YEARLY or INDEFINITE")
	installments := fs.Int("installments", 0, "Split into N installments")
	notes := fs.String("notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := parseAmount(*amountStr)
	if err != nil {
		return err
	}
	dueDate := a.now()
	if *due != "" {
		if dueDate, err = parseDay(*due); err != nil {
			return err
		}
	}

	params := &financas.CreateTransactionParams{
		Description:   *desc,
		Amount:        amount,
		Type:          financas.TransactionType(strings.ToUpper(*txType)),
		DueDate:       dueDate,
		IsPaid:        *paid,
		IsRecurring:   *recurring != "",
		RecurringType: financas.RecurringType(strings.ToUpper(*recurring)),
		IsInstallment: *installments > 0,
		Installments:  *installments,
		Notes:         *notes,
		WalletID:      *wallet,
		CategoryID:    *category,
	}
	if *paid {
		now := a.now()
		params.PaymentDate = &now
	}
	if *category != "" {
		if err := a.checkCategory(ctx, *category, params.Type); err != nil {
			return err
		}
	}

	tx, err := a.client.Transactions.Create(ctx, params)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Lançamento %s criado (%s)\n", a.styles.value.Render(tx.Description), tx.ID)
	return nil
}

func (a *app) editTransaction(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("id", "", "Transaction ID")
	scope := fs.String("scope", "", "single or all (asked when empty)")
	params := &financas.UpdateTransactionParams{}
	fs.Func("description", "New description", func(s string) error { params.Description = &s; return nil })
	fs.Func("amount", "New amount", func(s string) error {
		d, err := parseAmount(s)
		params.Amount = &d
		return err
	})
	fs.Func("due", "New due date YYYY-MM-DD", func(s string) error {
		t, err := parseDay(s)
		params.DueDate = &t
		return err
	})
	fs.Func("wallet", "New wallet ID", func(s string) error { params.WalletID = &s; return nil })
	fs.Func("category", "New category ID", func(s string) error { params.CategoryID = &s; return nil })
	fs.Func("notes", "New notes", func(s string) error { params.Notes = &s; return nil })
	if err := fs.Parse(args); err != nil {
		return err
	}

	tx, err := a.findTransaction(ctx, *id)
	if err != nil {
		return err
	}
	if params.CategoryID != nil {
		if err := a.checkCategory(ctx, *params.CategoryID, tx.Type); err != nil {
			return err
		}
	}
	chooser, err := a.scopeChooser(*scope)
	if err != nil {
		return err
	}

	updated, err := a.client.Transactions.Edit(ctx, tx, params, chooser)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Lançamento %s atualizado\n", a.styles.value.Render(updated.Description))
	return nil
}

// checkCategory accepts id only if it is one of the categories offered for t.
// The server does not check that a category matches the transaction type.
func (a *app) checkCategory(ctx context.Context, id string, t financas.TransactionType) error {
	categories, err := a.client.Categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range financas.FilterByType(categories, t) {
		if c.ID == id {
			return nil
		}
	}
	return &financas.ValidationError{
		Field:   "category",
		Message: fmt.Sprintf("a categoria não é do tipo %s", t),
		Value:   id,
	}
}

// findTransaction looks id up in the full list; the API has no single-item GET
func (a *app) findTransaction(ctx context.Context, id string) (*financas.Transaction, error) {
	if id == "" {
		return nil, &financas.ValidationError{Field: "id", Message: "informe o -id do lançamento"}
	}
	txs, err := a.client.Transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, financas.ErrNotFound
}
