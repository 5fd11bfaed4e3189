package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minhasfinancas/financas-go/pkg/financas"
)

// promptScope asks on the terminal whether an edit or delete of a grouped
// transaction applies to one record or to the whole group. Anything other
// than a clear answer cancels.
type promptScope struct {
	app *app
}

func (p promptScope) ChooseScope(_ context.Context, tx *financas.Transaction, action financas.Action) (financas.GroupScope, error) {
	a := p.app
	verb := "Editar"
	if action == financas.ActionDelete {
		verb = "Excluir"
	}

	kind := "recorrente"
	if tx.IsInstallment {
		kind = "parcelado"
	}
	fmt.Fprintf(a.out, "%s faz parte de um lançamento %s.\n", a.styles.value.Render(tx.Description), kind)

	answer, err := a.prompt(verb + " (s) somente este ou (t) todos do grupo? ")
	if err != nil {
		return "", err
	}
	return parseScopeAnswer(answer)
}

func parseScopeAnswer(answer string) (financas.GroupScope, error) {
	switch strings.ToLower(answer) {
	case "s", "somente", "single", "1":
		return financas.ScopeSingle, nil
	case "t", "todos", "all", "2":
		return financas.ScopeAll, nil
	}
	return "", errCancelled
}

// scopeChooser prefers an explicit -scope flag over asking
func (a *app) scopeChooser(flagValue string) (financas.ScopeChooser, error) {
	if flagValue == "" {
		return promptScope{app: a}, nil
	}
	scope := financas.GroupScope(flagValue)
	if !scope.Valid() {
		return nil, &financas.ValidationError{Field: "scope", Message: "use single ou all", Value: flagValue}
	}
	return financas.FixedScope(scope), nil
}

func parseDay(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &financas.ValidationError{Field: "date", Message: "data inválida, use AAAA-MM-DD", Value: s}
}
