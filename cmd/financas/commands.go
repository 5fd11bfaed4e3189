package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
)

var errCancelled = errors.New("operação cancelada")

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// prompt reads one trimmed line. EOF with no input is an empty answer.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, a.styles.label.Render(label))
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func parseAmount(s string) (decimal.Decimal, error) {
	// accept both 1234.56 and 1234,56
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, &financas.ValidationError{Field: "amount", Message: "valor inválido", Value: s}
	}
	return d, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompt("Email: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt("Senha: "); err != nil {
			return err
		}
	}

	user, err := a.client.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", a.styles.label.Render("Bem-vindo,"), a.styles.value.Render(user.Name))
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "Your name")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	for _, field := range []struct {
		v     *string
		label string
	}{{name, "Nome: "}, {email, "Email: "}, {password, "Senha: "}} {
		if *field.v == "" {
			if *field.v, err = a.prompt(field.label); err != nil {
				return err
			}
		}
	}

	user, err := a.client.Auth.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", a.styles.label.Render("Conta criada para"), a.styles.value.Render(user.Email))
	return nil
}

func (a *app) logout() error {
	if err := a.client.Auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.muted.Render("Sessão encerrada."))
	return nil
}

func (a *app) whoami() error {
	user := a.client.Auth.User()
	if user == nil {
		fmt.Fprintln(a.out, a.styles.muted.Render("Não autenticado."))
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", a.styles.value.Render(user.Name), user.Email)
	return nil
}

func (a *app) theme(args []string) error {
	prefs := a.client.Preferences
	action, _ := subcommand(args, "show")

	switch action {
	case "show":
	case "toggle":
		if _, err := prefs.ToggleTheme(); err != nil {
			return err
		}
	case string(financas.ThemeDark), string(financas.ThemeLight):
		if err := prefs.SetTheme(financas.Theme(action)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("theme: unknown action %q", action)
	}

	theme := prefs.Theme()
	a.styles = newStyles(theme)
	fmt.Fprintf(a.out, "%s %s\n", a.styles.label.Render("Tema:"), a.styles.value.Render(string(theme)))
	return nil
}

func (a *app) wallets(ctx context.Context, args []string) error {
	action, rest := subcommand(args, "list")
	fs := a.flags("wallets " + action)

	switch action {
	case "list":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		wallets, err := a.client.Wallets.List(ctx)
		if err != nil {
			a.log.Error("Failed to load wallets", "error", err)
		}
		a.renderWallets(wallets)
		return nil

	case "create":
		name := fs.String("name", "", "Wallet name")
		desc := fs.String("description", "", "Description")
		balance := fs.String("balance", "0", "Opening balance")
		color := fs.String("color", "", "Hex colour")
		icon := fs.String("icon", "", "Icon name")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		amount, err := parseAmount(*balance)
		if err != nil {
			return err
		}
		w, err := a.client.Wallets.Create(ctx, &financas.CreateWalletParams{
			Name:        *name,
			Description: *desc,
			Balance:     amount,
			Color:       *color,
			Icon:        *icon,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Carteira %s criada (%s)\n", a.styles.value.Render(w.Name), w.ID)
		return nil

	case "edit":
		id := fs.String("id", "", "Wallet ID")
		params := &financas.UpdateWalletParams{}
		fs.Func("name", "New name", func(s string) error { params.Name = &s; return nil })
		fs.Func("description", "New description", func(s string) error { params.Description = &s; return nil })
		fs.Func("color", "New hex colour", func(s string) error { params.Color = &s; return nil })
		fs.Func("icon", "New icon", func(s string) error { params.Icon = &s; return nil })
		if err := fs.Parse(rest); err != nil {
			return err
		}
		w, err := a.client.Wallets.Update(ctx, *id, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Carteira %s atualizada\n", a.styles.value.Render(w.Name))
		return nil

	case "delete":
		id := fs.String("id", "", "Wallet ID")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		w, err := a.client.Wallets.Get(ctx, *id)
		if err != nil {
			return err
		}
		if err := a.client.Wallets.Delete(ctx, w); err != nil {
			if errors.Is(err, financas.ErrWalletNotEmpty) {
				fmt.Fprintln(a.out, a.styles.warn.Render(fmt.Sprintf("A carteira %s tem saldo %s. Zere o saldo antes de excluir.", w.Name, brl(w.Balance))))
			}
			return err
		}
		fmt.Fprintf(a.out, "Carteira %s excluída\n", a.styles.value.Render(w.Name))
		return nil

	case "transactions":
		id := fs.String("id", "", "Wallet ID")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		txs, err := a.client.Wallets.Transactions(ctx, *id)
		if err != nil {
			a.log.Error("Failed to load wallet transactions", "wallet", *id, "error", err)
		}
		a.renderTransactions(txs)
		return nil
	}
	return fmt.Errorf("wallets: unknown action %q", action)
}

func (a *app) renderWallets(wallets []*financas.Wallet) {
	if len(wallets) == 0 {
		fmt.Fprintln(a.out, a.styles.muted.Render("Nenhuma carteira."))
		return
	}
	rows := make([][]string, 0, len(wallets))
	total := decimal.Zero
	for _, w := range wallets {
		deletable := "não"
		if w.CanDelete() {
			deletable = "sim"
		}
		rows = append(rows, []string{w.ID, w.Name, brl(w.Balance), deletable})
		total = total.Add(w.Balance)
	}
	table(a.out, []string{"ID", "NOME", "SALDO", "EXCLUÍVEL"}, rows, a.styles.label)
	fmt.Fprintf(a.out, "%s %s\n", a.styles.label.Render("Total:"), a.styles.value.Render(brl(total)))
}

func (a *app) categories(ctx context.Context, args []string) error {
	action, rest := subcommand(args, "list")
	fs := a.flags("categories " + action)

	switch action {
	case "list":
		txType := fs.String("type", "", "INCOME or EXPENSE")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		categories, err := a.client.Categories.List(ctx)
		if err != nil {
			a.log.Error("Failed to load categories", "error", err)
		}
		if *txType != "" {
			categories = financas.FilterByType(categories, financas.TransactionType(strings.ToUpper(*txType)))
		}
		if len(categories) == 0 {
			fmt.Fprintln(a.out, a.styles.muted.Render("Nenhuma categoria."))
			return nil
		}
		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, []string{c.ID, c.Name, string(c.Type), c.Color})
		}
		table(a.out, []string{"ID", "NOME", "TIPO", "COR"}, rows, a.styles.label)
		return nil

	case "create":
		name := fs.String("name", "", "Category name")
		txType := fs.String("type", "EXPENSE", "INCOME or EXPENSE")
		desc := fs.String("description", "", "Description")
		color := fs.String("color", "", "Hex colour")
		icon := fs.String("icon", "", "Icon name")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		c, err := a.client.Categories.Create(ctx, &financas.CreateCategoryParams{
			Name:        *name,
			Type:        financas.TransactionType(strings.ToUpper(*txType)),
			Description: *desc,
			Color:       *color,
			Icon:        *icon,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Categoria %s criada (%s)\n", a.styles.value.Render(c.Name), c.ID)
		return nil

	case "edit":
		id := fs.String("id", "", "Category ID")
		params := &financas.UpdateCategoryParams{}
		fs.Func("name", "New name", func(s string) error { params.Name = &s; return nil })
		fs.Func("description", "New description", func(s string) error { params.Description = &s; return nil })
		fs.Func("color", "New hex colour", func(s string) error { params.Color = &s; return nil })
		fs.Func("icon", "New icon", func(s string) error { params.Icon = &s; return nil })
		if err := fs.Parse(rest); err != nil {
			return err
		}
		c, err := a.client.Categories.Update(ctx, *id, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Categoria %s atualizada\n", a.styles.value.Render(c.Name))
		return nil

	case "delete":
		id := fs.String("id", "", "Category ID")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := a.client.Categories.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Categoria excluída")
		return nil
	}
	return fmt.Errorf("categories: unknown action %q", action)
}

func (a *app) transfers(ctx context.Context, args []string) error {
	action, rest := subcommand(args, "list")
	fs := a.flags("transfers " + action)

	switch action {
	case "list":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		transfers, err := a.client.Transfers.List(ctx)
		if err != nil {
			a.log.Error("Failed to load transfers", "error", err)
		}
		if len(transfers) == 0 {
			fmt.Fprintln(a.out, a.styles.muted.Render("Nenhuma transferência."))
			return nil
		}
		rows := make([][]string, 0, len(transfers))
		for _, tr := range transfers {
			from, to := "", ""
			if tr.FromWallet != nil {
				from = tr.FromWallet.Name
			}
			if tr.ToWallet != nil {
				to = tr.ToWallet.Name
			}
			rows = append(rows, []string{tr.ID, tr.Date.Display(), from + " → " + to, brl(tr.Amount), tr.Description})
		}
		table(a.out, []string{"ID", "DATA", "CARTEIRAS", "VALOR", "DESCRIÇÃO"}, rows, a.styles.label)
		return nil

	case "create":
		from := fs.String("from", "", "Source wallet ID")
		to := fs.String("to", "", "Destination wallet ID")
		amountStr := fs.String("amount", "", "Amount")
		date := fs.String("date", "", "Date YYYY-MM-DD (today when empty)")
		desc := fs.String("description", "", "Description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		amount, err := parseAmount(*amountStr)
		if err != nil {
			return err
		}
		params := &financas.CreateTransferParams{
			Amount:       amount,
			Description:  *desc,
			FromWalletID: *from,
			ToWalletID:   *to,
		}
		if *date != "" {
			if params.Date, err = parseDay(*date); err != nil {
				return err
			}
		}
		tr, err := a.client.Transfers.Create(ctx, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Transferência de %s registrada (%s)\n", a.styles.value.Render(brl(tr.Amount)), tr.ID)
		return nil

	case "delete":
		id := fs.String("id", "", "Transfer ID")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := a.client.Transfers.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Transferência excluída")
		return nil
	}
	return fmt.Errorf("transfers: unknown action %q", action)
}
