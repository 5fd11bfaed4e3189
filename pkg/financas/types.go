package financas

import (
	"fmt"
	"time"

	"github.com/minhasfinancas/financas-go/internal/types"
	"github.com/shopspring/decimal"
)

// User is the authenticated account
type User = types.User

// TransactionType classifies both transactions and categories
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Valid reports whether t is INCOME or EXPENSE
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// RecurringType is the cadence of a recurring series
type RecurringType string

const (
	Weekly     RecurringType = "WEEKLY"
	Monthly    RecurringType = "MONTHLY"
	Yearly     RecurringType = "YEARLY"
	Indefinite RecurringType = "INDEFINITE"
)

// Valid reports whether r is one of the known cadences
func (r RecurringType) Valid() bool {
	switch r {
	case Weekly, Monthly, Yearly, Indefinite:
		return true
	}
	return false
}

// Wallet is a named money container with a running balance
type Wallet struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	Color       string          `json:"color"`
	Icon        string          `json:"icon"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CanDelete reports whether the wallet may be deleted: only an exactly zero
// balance qualifies.
func (w *Wallet) CanDelete() bool {
	return w.Balance.IsZero()
}

// WalletRef is the wallet summary embedded in transactions and transfers
type WalletRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Category labels a transaction as a kind of income or expense
type Category struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        TransactionType `json:"type"`
	Color       string          `json:"color"`
	Icon        string          `json:"icon"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CategoryRef is the category summary embedded in transactions
type CategoryRef struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Color string          `json:"color"`
	Icon  string          `json:"icon"`
	Type  TransactionType `json:"type"`
}

// Transaction is a single ledger entry, possibly one member of a recurring
// or installment group generated by the server.
type Transaction struct {
	ID                 string          `json:"id"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Type               TransactionType `json:"type"`
	DueDate            Date            `json:"dueDate"`
	PaymentDate        *Date           `json:"paymentDate,omitempty"`
	IsPaid             bool            `json:"isPaid"`
	IsRecurring        bool            `json:"isRecurring"`
	RecurringType      RecurringType   `json:"recurringType,omitempty"`
	RecurringGroupID   string          `json:"recurringGroupId,omitempty"`
	IsInstallment      bool            `json:"isInstallment"`
	Installments       int             `json:"installments,omitempty"`
	CurrentInstallment int             `json:"currentInstallment,omitempty"`
	InstallmentGroupID string          `json:"installmentGroupId,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Wallet             *WalletRef      `json:"wallet"`
	Category           *CategoryRef    `json:"category"`
}

// IsGrouped reports whether the transaction belongs to a recurring or
// installment series.
func (t *Transaction) IsGrouped() bool {
	return t.RecurringGroupID != "" || t.InstallmentGroupID != ""
}

// GroupID returns whichever group id is set, recurring first
func (t *Transaction) GroupID() string {
	if t.RecurringGroupID != "" {
		return t.RecurringGroupID
	}
	return t.InstallmentGroupID
}

// InstallmentLabel renders "current/total" for installment members
func (t *Transaction) InstallmentLabel() string {
	if !t.IsInstallment || t.Installments == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", t.CurrentInstallment, t.Installments)
}

// Transfer moves money between two wallets
type Transfer struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	FromWallet  *WalletRef      `json:"fromWallet"`
	ToWallet    *WalletRef      `json:"toWallet"`
}

// FlowTotals splits an income or expense total into paid and pending
type FlowTotals struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
}

// DashboardSummary aggregates wallets and flows for a date window
type DashboardSummary struct {
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	} `json:"period"`
	Wallets             []*Wallet       `json:"wallets"`
	TotalBalance        decimal.Decimal `json:"totalBalance"`
	Income              FlowTotals      `json:"income"`
	Expense             FlowTotals      `json:"expense"`
	Balance             decimal.Decimal `json:"balance"`
	PendingTransactions int             `json:"pendingTransactions"`
	OverdueTransactions int             `json:"overdueTransactions"`
}

// CreateWalletParams for creating a wallet
type CreateWalletParams struct {
	Name        string
	Description string
	Balance     decimal.Decimal
	Color       string
	Icon        string
}

// UpdateWalletParams for updating a wallet. The balance is not editable; it
// only moves through transactions and transfers.
type UpdateWalletParams struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsActive    *bool
}

// CreateCategoryParams for creating a category
type CreateCategoryParams struct {
	Name        string
	Description string
	Type        TransactionType
	Color       string
	Icon        string
}

// UpdateCategoryParams for updating a category. Type is fixed at creation.
type UpdateCategoryParams struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsActive    *bool
}

// CreateTransactionParams for creating a standalone transaction or the seed
// of a recurring/installment series
type CreateTransactionParams struct {
	Description   string
	Amount        decimal.Decimal
	Type          TransactionType
	DueDate       time.Time
	PaymentDate   *time.Time
	IsPaid        bool
	IsRecurring   bool
	RecurringType RecurringType
	IsInstallment bool
	Installments  int
	Notes         string
	WalletID      string
	CategoryID    string
}

// UpdateTransactionParams for updating a transaction; nil fields are left alone
type UpdateTransactionParams struct {
	Description   *string
	Amount        *decimal.Decimal
	DueDate       *time.Time
	PaymentDate   *time.Time
	IsPaid        *bool
	IsRecurring   *bool
	RecurringType *RecurringType
	IsInstallment *bool
	Installments  *int
	Notes         *string
	WalletID      *string
	CategoryID    *string
}

// CreateTransferParams for moving money between wallets
type CreateTransferParams struct {
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	FromWalletID string
	ToWalletID   string
}
