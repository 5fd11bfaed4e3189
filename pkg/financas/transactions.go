package financas

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const minInstallments = 2

// transactionService implements the TransactionService interface
type transactionService struct {
	client *Client
}

// Query returns a transaction query builder
func (s *transactionService) Query() TransactionQueryBuilder {
	return &transactionQueryBuilder{
		client:  s.client,
		filters: url.Values{},
	}
}

// List retrieves every transaction
func (s *transactionService) List(ctx context.Context) ([]*Transaction, error) {
	return s.Query().Execute(ctx)
}

// Create creates a standalone transaction or the seed of a recurring or
// installment series; the server expands the series.
func (s *transactionService) Create(ctx context.Context, params *CreateTransactionParams) (*Transaction, error) {
	if err := validateCreateTransaction(params); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"description":   params.Description,
		"amount":        money(params.Amount),
		"type":          params.Type,
		"dueDate":       apiDate(params.DueDate),
		"isPaid":        params.IsPaid,
		"isRecurring":   params.IsRecurring,
		"isInstallment": params.IsInstallment,
		"walletId":      params.WalletID,
		"categoryId":    params.CategoryID,
	}
	if params.PaymentDate != nil {
		body["paymentDate"] = apiTimestamp(*params.PaymentDate)
	}
	if params.IsRecurring {
		body["recurringType"] = params.RecurringType
	}
	if params.IsInstallment {
		body["installments"] = params.Installments
	}
	if params.Notes != "" {
		body["notes"] = params.Notes
	}

	if s.client.options.Logger != nil {
		s.client.options.Logger.Debug("Creating transaction",
			"type", params.Type, "recurring", params.IsRecurring, "installment", params.IsInstallment)
	}

	var tx Transaction
	if err := s.client.execute(ctx, http.MethodPost, "/transactions", nil, body, &tx); err != nil {
		return nil, errors.Wrap(err, "failed to create transaction")
	}
	return &tx, nil
}

// Edit settles the scope before anything is sent: standalone transactions
// are updated as single without asking, grouped ones only after chooser
// answers.
func (s *transactionService) Edit(ctx context.Context, tx *Transaction, params *UpdateTransactionParams, chooser ScopeChooser) (*Transaction, error) {
	if tx == nil {
		return nil, &ValidationError{Field: "transaction", Message: "required"}
	}
	scope, err := ResolveScope(ctx, tx, ActionEdit, chooser)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, tx.ID, params, scope)
}

// Remove is Edit's counterpart for deletion
func (s *transactionService) Remove(ctx context.Context, tx *Transaction, chooser ScopeChooser) error {
	if tx == nil {
		return &ValidationError{Field: "transaction", Message: "required"}
	}
	scope, err := ResolveScope(ctx, tx, ActionDelete, chooser)
	if err != nil {
		return err
	}
	return s.Delete(ctx, tx.ID, scope)
}

// Update updates a transaction. ScopeAll adds updateAll to the body.
func (s *transactionService) Update(ctx context.Context, transactionID string, params *UpdateTransactionParams, scope GroupScope) (*Transaction, error) {
	if !scope.Valid() {
		return nil, ErrScopeRequired
	}
	body, err := updateTransactionBody(params)
	if err != nil {
		return nil, err
	}
	scope.applyToBody(body)

	var tx Transaction
	if err := s.client.execute(ctx, http.MethodPut, transactionPath(transactionID), nil, body, &tx); err != nil {
		return nil, errors.Wrap(err, "failed to update transaction")
	}
	return &tx, nil
}

// Delete deletes a transaction. ScopeAll adds deleteAll=true to the query.
func (s *transactionService) Delete(ctx context.Context, transactionID string, scope GroupScope) error {
	if !scope.Valid() {
		return ErrScopeRequired
	}
	if err := s.client.execute(ctx, http.MethodDelete, transactionPath(transactionID), scope.deleteQuery(), nil, nil); err != nil {
		return errors.Wrap(err, "failed to delete transaction")
	}
	return nil
}

// Pay marks a transaction paid
func (s *transactionService) Pay(ctx context.Context, transactionID string, paymentDate time.Time) (*Transaction, error) {
	if paymentDate.IsZero() {
		paymentDate = s.client.now()
	}
	body := map[string]interface{}{
		"paymentDate": apiTimestamp(paymentDate),
	}

	var tx Transaction
	if err := s.client.execute(ctx, http.MethodPost, transactionPath(transactionID)+"/pay", nil, body, &tx); err != nil {
		return nil, errors.Wrap(err, "failed to pay transaction")
	}
	return &tx, nil
}

func validateCreateTransaction(p *CreateTransactionParams) error {
	if p == nil {
		return &ValidationError{Field: "params", Message: "required"}
	}

	verrs := &ValidationErrors{}
	if strings.TrimSpace(p.Description) == "" {
		verrs.add("description", "required", p.Description)
	}
	if !p.Amount.IsPositive() {
		verrs.add("amount", "must be greater than zero", p.Amount.String())
	}
	if !p.Type.Valid() {
		verrs.add("type", "must be INCOME or EXPENSE", string(p.Type))
	}
	if p.DueDate.IsZero() {
		verrs.add("dueDate", "required", nil)
	}
	if p.WalletID == "" {
		verrs.add("walletId", "required", nil)
	}
	if p.CategoryID == "" {
		verrs.add("categoryId", "required", nil)
	}
	if p.IsRecurring && p.IsInstallment {
		verrs.add("isInstallment", "a transaction cannot be both recurring and installment", true)
	}
	if p.IsRecurring && !p.RecurringType.Valid() {
		verrs.add("recurringType", "must be WEEKLY, MONTHLY, YEARLY or INDEFINITE", string(p.RecurringType))
	}
	if p.IsInstallment && p.Installments < minInstallments {
		verrs.add("installments", "must be at least "+strconv.Itoa(minInstallments), p.Installments)
	}
	return verrs.orNil()
}

func updateTransactionBody(p *UpdateTransactionParams) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if p == nil {
		return body, nil
	}

	verrs := &ValidationErrors{}

	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			verrs.add("description", "required", *p.Description)
		}
		body["description"] = *p.Description
	}
	if p.Amount != nil {
		if !p.Amount.IsPositive() {
			verrs.add("amount", "must be greater than zero", p.Amount.String())
		}
		body["amount"] = money(*p.Amount)
	}
	if p.DueDate != nil {
		body["dueDate"] = apiDate(*p.DueDate)
	}
	if p.PaymentDate != nil {
		body["paymentDate"] = apiTimestamp(*p.PaymentDate)
	}
	if p.IsPaid != nil {
		body["isPaid"] = *p.IsPaid
	}
	if p.IsRecurring != nil {
		body["isRecurring"] = *p.IsRecurring
	}
	if p.RecurringType != nil {
		if !p.RecurringType.Valid() {
			verrs.add("recurringType", "must be WEEKLY, MONTHLY, YEARLY or INDEFINITE", string(*p.RecurringType))
		}
		body["recurringType"] = *p.RecurringType
	}
	if p.IsInstallment != nil {
		body["isInstallment"] = *p.IsInstallment
	}
	if p.Installments != nil {
		if *p.Installments < minInstallments {
			verrs.add("installments", "must be at least "+strconv.Itoa(minInstallments), *p.Installments)
		}
		body["installments"] = *p.Installments
	}
	if p.IsRecurring != nil && p.IsInstallment != nil && *p.IsRecurring && *p.IsInstallment {
		verrs.add("isInstallment", "a transaction cannot be both recurring and installment", true)
	}
	if p.Notes != nil {
		body["notes"] = *p.Notes
	}
	if p.WalletID != nil {
		body["walletId"] = *p.WalletID
	}
	if p.CategoryID != nil {
		body["categoryId"] = *p.CategoryID
	}

	if err := verrs.orNil(); err != nil {
		return nil, err
	}
	return body, nil
}

func transactionPath(id string) string {
	return "/transactions/" + url.PathEscape(id)
}

// transactionQueryBuilder implements TransactionQueryBuilder
type transactionQueryBuilder struct {
	client  *Client
	filters url.Values
}

// Between sets the date range filter; bounds go out as UTC timestamps
func (b *transactionQueryBuilder) Between(start, end time.Time) TransactionQueryBuilder {
	b.filters.Set("startDate", apiTimestamp(start))
	b.filters.Set("endDate", apiTimestamp(end))
	return b
}

// InWindow filters to a period window
func (b *transactionQueryBuilder) InWindow(w Window) TransactionQueryBuilder {
	return b.Between(w.Start, w.End)
}

// Paid filters by payment status
func (b *transactionQueryBuilder) Paid(paid bool) TransactionQueryBuilder {
	b.filters.Set("isPaid", strconv.FormatBool(paid))
	return b
}

// WithWallet filters by wallet
func (b *transactionQueryBuilder) WithWallet(walletID string) TransactionQueryBuilder {
	b.filters.Set("walletId", walletID)
	return b
}

// WithCategory filters by category
func (b *transactionQueryBuilder) WithCategory(categoryID string) TransactionQueryBuilder {
	b.filters.Set("categoryId", categoryID)
	return b
}

// OfType filters by income or expense
func (b *transactionQueryBuilder) OfType(t TransactionType) TransactionQueryBuilder {
	b.filters.Set("type", string(t))
	return b
}

// Execute runs the query
func (b *transactionQueryBuilder) Execute(ctx context.Context) ([]*Transaction, error) {
	var query url.Values
	if len(b.filters) > 0 {
		query = b.filters
	}

	var txs []*Transaction
	if err := b.client.execute(ctx, http.MethodGet, "/transactions", query, nil, &txs); err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}
	return txs, nil
}
