package financas

import (
	"context"
	"time"
)

// AuthService handles the session lifecycle
type AuthService interface {
	// Login signs in and persists the token and user
	Login(ctx context.Context, email, password string) (*User, error)

	// Register creates an account and signs in with it
	Register(ctx context.Context, name, email, password string) (*User, error)

	// Logout clears the session from memory and storage
	Logout() error

	// Restore loads a persisted session; true means authenticated
	Restore() (bool, error)

	// State returns the current session state
	State() SessionState

	// User returns the signed-in user, or nil
	User() *User
}

// WalletService handles all wallet-related operations
type WalletService interface {
	// List retrieves all wallets
	List(ctx context.Context) ([]*Wallet, error)

	// Get retrieves a single wallet by ID
	Get(ctx context.Context, walletID string) (*Wallet, error)

	// Create creates a new wallet
	Create(ctx context.Context, params *CreateWalletParams) (*Wallet, error)

	// Update updates an existing wallet
	Update(ctx context.Context, walletID string, params *UpdateWalletParams) (*Wallet, error)

	// Delete deletes a wallet whose balance is exactly zero
	Delete(ctx context.Context, wallet *Wallet) error

	// Transactions lists the transactions posted to a wallet
	Transactions(ctx context.Context, walletID string) ([]*Transaction, error)
}

// CategoryService handles all category-related operations
type CategoryService interface {
	// List retrieves all categories
	List(ctx context.Context) ([]*Category, error)

	// Create creates a new category
	Create(ctx context.Context, params *CreateCategoryParams) (*Category, error)

	// Update updates an existing category
	Update(ctx context.Context, categoryID string, params *UpdateCategoryParams) (*Category, error)

	// Delete deletes a category
	Delete(ctx context.Context, categoryID string) error
}

// TransactionService handles all transaction-related operations
type TransactionService interface {
	// Query returns a transaction query builder
	Query() TransactionQueryBuilder

	// List retrieves every transaction
	List(ctx context.Context) ([]*Transaction, error)

	// Create creates a standalone transaction or the seed of a series
	Create(ctx context.Context, params *CreateTransactionParams) (*Transaction, error)

	// Edit resolves the scope for tx through chooser, then updates it
	Edit(ctx context.Context, tx *Transaction, params *UpdateTransactionParams, chooser ScopeChooser) (*Transaction, error)

	// Remove resolves the scope for tx through chooser, then deletes it
	Remove(ctx context.Context, tx *Transaction, chooser ScopeChooser) error

	// Update updates a transaction with an explicit scope
	Update(ctx context.Context, transactionID string, params *UpdateTransactionParams, scope GroupScope) (*Transaction, error)

	// Delete deletes a transaction with an explicit scope
	Delete(ctx context.Context, transactionID string, scope GroupScope) error

	// Pay marks a transaction paid at paymentDate
	Pay(ctx context.Context, transactionID string, paymentDate time.Time) (*Transaction, error)
}

// TransactionQueryBuilder builds transaction list queries
type TransactionQueryBuilder interface {
	// Between restricts to due dates inside [start, end]
	Between(start, end time.Time) TransactionQueryBuilder

	// InWindow is Between over a period window
	InWindow(w Window) TransactionQueryBuilder

	// Paid restricts to paid or unpaid transactions
	Paid(paid bool) TransactionQueryBuilder

	// WithWallet restricts to one wallet
	WithWallet(walletID string) TransactionQueryBuilder

	// WithCategory restricts to one category
	WithCategory(categoryID string) TransactionQueryBuilder

	// OfType restricts to income or expense
	OfType(t TransactionType) TransactionQueryBuilder

	// Execute runs the query
	Execute(ctx context.Context) ([]*Transaction, error)
}

// TransferService handles transfers between wallets
type TransferService interface {
	// List retrieves all transfers
	List(ctx context.Context) ([]*Transfer, error)

	// Create moves money from one wallet to another
	Create(ctx context.Context, params *CreateTransferParams) (*Transfer, error)

	// Delete deletes a transfer
	Delete(ctx context.Context, transferID string) error
}

// DashboardService handles the dashboard aggregates
type DashboardService interface {
	// Summary retrieves totals for a window
	Summary(ctx context.Context, w Window) (*DashboardSummary, error)

	// Upcoming retrieves unpaid transactions due in the next days
	Upcoming(ctx context.Context, days int) ([]*Transaction, error)

	// Load fetches summary, upcoming and paid transactions for the period
	// containing now, all at once
	Load(ctx context.Context, kind PeriodKind, now time.Time) (*DashboardView, error)
}
