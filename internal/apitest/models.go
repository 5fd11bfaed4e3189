package apitest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is a decimal that goes over the wire as a bare JSON number
type Money struct {
	decimal.Decimal
}

// MarshalJSON writes the exact decimal digits without quotes
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func money(d decimal.Decimal) Money { return Money{Decimal: d} }

// Timestamp renders like the real API: UTC with milliseconds
type Timestamp time.Time

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format("2006-01-02T15:04:05.000Z") + `"`), nil
}

type user struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"createdAt"`
	password  string
}

type walletRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type wallet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Balance     Money     `json:"balance"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`

	opening decimal.Decimal
}

func (w *wallet) ref() *walletRef {
	return &walletRef{ID: w.ID, Name: w.Name, Color: w.Color, Icon: w.Icon}
}

type categoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Type  string `json:"type"`
}

type category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

func (c *category) ref() *categoryRef {
	return &categoryRef{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon, Type: c.Type}
}

type transaction struct {
	ID                 string       `json:"id"`
	Description        string       `json:"description"`
	Amount             Money        `json:"amount"`
	Type               string       `json:"type"`
	DueDate            Timestamp    `json:"dueDate"`
	PaymentDate        *Timestamp   `json:"paymentDate"`
	IsPaid             bool         `json:"isPaid"`
	IsRecurring        bool         `json:"isRecurring"`
	RecurringType      string       `json:"recurringType,omitempty"`
	RecurringGroupID   string       `json:"recurringGroupId,omitempty"`
	IsInstallment      bool         `json:"isInstallment"`
	Installments       int          `json:"installments,omitempty"`
	CurrentInstallment int          `json:"currentInstallment,omitempty"`
	InstallmentGroupID string       `json:"installmentGroupId,omitempty"`
	Notes              string       `json:"notes,omitempty"`
	CreatedAt          Timestamp    `json:"createdAt"`
	UpdatedAt          Timestamp    `json:"updatedAt"`
	Wallet             *walletRef   `json:"wallet"`
	Category           *categoryRef `json:"category"`

	walletID   string
	categoryID string
}

func (t *transaction) groupID() string {
	if t.RecurringGroupID != "" {
		return t.RecurringGroupID
	}
	return t.InstallmentGroupID
}

type transfer struct {
	ID          string     `json:"id"`
	Amount      Money      `json:"amount"`
	Description string     `json:"description,omitempty"`
	Date        Timestamp  `json:"date"`
	CreatedAt   Timestamp  `json:"createdAt"`
	UpdatedAt   Timestamp  `json:"updatedAt"`
	FromWallet  *walletRef `json:"fromWallet"`
	ToWallet    *walletRef `json:"toWallet"`

	fromID string
	toID   string
}

type flowTotals struct {
	Total   Money `json:"total"`
	Paid    Money `json:"paid"`
	Pending Money `json:"pending"`
}

type summary struct {
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	} `json:"period"`
	Wallets             []*wallet  `json:"wallets"`
	TotalBalance        Money      `json:"totalBalance"`
	Income              flowTotals `json:"income"`
	Expense             flowTotals `json:"expense"`
	Balance             Money      `json:"balance"`
	PendingTransactions int        `json:"pendingTransactions"`
	OverdueTransactions int        `json:"overdueTransactions"`
}

// Request bodies. Pointers distinguish absent from zero.

type credentialsReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type walletReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Balance     *decimal.Decimal `json:"balance"`
	Color       *string          `json:"color"`
	Icon        *string          `json:"icon"`
	IsActive    *bool            `json:"isActive"`
}

type categoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"isActive"`
}

type transactionReq struct {
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	Type          *string          `json:"type"`
	DueDate       *string          `json:"dueDate"`
	PaymentDate   *string          `json:"paymentDate"`
	IsPaid        *bool            `json:"isPaid"`
	IsRecurring   *bool            `json:"isRecurring"`
	RecurringType *string          `json:"recurringType"`
	IsInstallment *bool            `json:"isInstallment"`
	Installments  *int             `json:"installments"`
	Notes         *string          `json:"notes"`
	WalletID      *string          `json:"walletId"`
	CategoryID    *string          `json:"categoryId"`
	UpdateAll     bool             `json:"updateAll"`
}

type payReq struct {
	PaymentDate string `json:"paymentDate"`
}

type transferReq struct {
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	FromWalletID string          `json:"fromWalletId"`
	ToWalletID   string          `json:"toWalletId"`
}
