package financas

import (
	"context"
	"net/url"
)

// GroupScope is the blast radius of an edit or delete on a transaction that
// belongs to a recurring or installment group.
type GroupScope string

const (
	// ScopeSingle affects only the addressed transaction
	ScopeSingle GroupScope = "single"

	// ScopeAll fans out on the server to every member sharing the group id
	ScopeAll GroupScope = "all"
)

// Request flag names the API understands
const (
	updateAllField = "updateAll"
	deleteAllParam = "deleteAll"
)

// Valid reports whether s is single or all
func (s GroupScope) Valid() bool {
	return s == ScopeSingle || s == ScopeAll
}

// applyToBody sets updateAll only for ScopeAll; single sends no flag
func (s GroupScope) applyToBody(body map[string]interface{}) {
	if s == ScopeAll {
		body[updateAllField] = true
	}
}

// deleteQuery returns deleteAll=true only for ScopeAll
func (s GroupScope) deleteQuery() url.Values {
	if s != ScopeAll {
		return nil
	}
	return url.Values{deleteAllParam: []string{"true"}}
}

// Action is the mutation a scope is being chosen for
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ScopeChooser asks the user whether a mutation on a grouped transaction
// applies to the one record or the whole group. It is only consulted for
// grouped transactions. Returning an error cancels the mutation.
type ScopeChooser interface {
	ChooseScope(ctx context.Context, tx *Transaction, action Action) (GroupScope, error)
}

// ScopeChooserFunc adapts a function to ScopeChooser
type ScopeChooserFunc func(ctx context.Context, tx *Transaction, action Action) (GroupScope, error)

// ChooseScope calls f
func (f ScopeChooserFunc) ChooseScope(ctx context.Context, tx *Transaction, action Action) (GroupScope, error) {
	return f(ctx, tx, action)
}

// FixedScope always answers with the same scope
func FixedScope(scope GroupScope) ScopeChooser {
	return ScopeChooserFunc(func(context.Context, *Transaction, Action) (GroupScope, error) {
		return scope, nil
	})
}

// ScopeFor reports whether mutating tx needs a user choice. Standalone
// transactions are always ScopeSingle with no choice.
func ScopeFor(tx *Transaction) (scope GroupScope, needsChoice bool) {
	if tx == nil || !tx.IsGrouped() {
		return ScopeSingle, false
	}
	return "", true
}

// ResolveScope settles the scope for action on tx before any request is
// built. The chooser is never invoked for standalone transactions.
func ResolveScope(ctx context.Context, tx *Transaction, action Action, chooser ScopeChooser) (GroupScope, error) {
	scope, needsChoice := ScopeFor(tx)
	if !needsChoice {
		return scope, nil
	}

	if chooser == nil {
		return "", ErrScopeRequired
	}

	scope, err := chooser.ChooseScope(ctx, tx, action)
	if err != nil {
		return "", err
	}
	if !scope.Valid() {
		return "", ErrScopeRequired
	}
	return scope, nil
}
