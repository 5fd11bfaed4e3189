package financas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultWalletColor = "#3B82F6"
	defaultWalletIcon  = "wallet"
)

// walletService implements the WalletService interface
type walletService struct {
	client *Client
}

// List retrieves all wallets
func (s *walletService) List(ctx context.Context) ([]*Wallet, error) {
	var wallets []*Wallet
	if err := s.client.execute(ctx, http.MethodGet, "/wallets", nil, nil, &wallets); err != nil {
		return nil, errors.Wrap(err, "failed to list wallets")
	}
	return wallets, nil
}

// Get retrieves a single wallet by ID
func (s *walletService) Get(ctx context.Context, walletID string) (*Wallet, error) {
	var wallet Wallet
	if err := s.client.execute(ctx, http.MethodGet, walletPath(walletID), nil, nil, &wallet); err != nil {
		return nil, errors.Wrap(err, "failed to get wallet")
	}
	return &wallet, nil
}

// Create creates a new wallet
func (s *walletService) Create(ctx context.Context, params *CreateWalletParams) (*Wallet, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "required"}
	}

	verrs := &ValidationErrors{}
	if strings.TrimSpace(params.Name) == "" {
		verrs.add("name", "required", params.Name)
	}
	if err := verrs.orNil(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"name":    params.Name,
		"balance": money(params.Balance),
		"color":   orDefault(params.Color, defaultWalletColor),
		"icon":    orDefault(params.Icon, defaultWalletIcon),
	}
	if params.Description != "" {
		body["description"] = params.Description
	}

	var wallet Wallet
	if err := s.client.execute(ctx, http.MethodPost, "/wallets", nil, body, &wallet); err != nil {
		return nil, errors.Wrap(err, "failed to create wallet")
	}
	return &wallet, nil
}

// Update updates an existing wallet. The balance is never sent.
func (s *walletService) Update(ctx context.Context, walletID string, params *UpdateWalletParams) (*Wallet, error) {
	body := map[string]interface{}{}
	if params != nil {
		if params.Name != nil {
			body["name"] = *params.Name
		}
		if params.Description != nil {
			body["description"] = *params.Description
		}
		if params.Color != nil {
			body["color"] = *params.Color
		}
		if params.Icon != nil {
			body["icon"] = *params.Icon
		}
		if params.IsActive != nil {
			body["isActive"] = *params.IsActive
		}
	}

	var wallet Wallet
	if err := s.client.execute(ctx, http.MethodPut, walletPath(walletID), nil, body, &wallet); err != nil {
		return nil, errors.Wrap(err, "failed to update wallet")
	}
	return &wallet, nil
}

// Delete deletes wallet. A non-zero balance is refused before any request is
// made; if the balance changed on the server since it was fetched, the
// server's rejection comes back with its message intact.
func (s *walletService) Delete(ctx context.Context, wallet *Wallet) error {
	if wallet == nil {
		return &ValidationError{Field: "wallet", Message: "required"}
	}
	if !wallet.CanDelete() {
		return errors.Wrapf(ErrWalletNotEmpty, "wallet %s has balance %s", wallet.Name, wallet.Balance.String())
	}

	if err := s.client.execute(ctx, http.MethodDelete, walletPath(wallet.ID), nil, nil, nil); err != nil {
		return errors.Wrap(err, "failed to delete wallet")
	}
	return nil
}

// Transactions lists the transactions posted to a wallet
func (s *walletService) Transactions(ctx context.Context, walletID string) ([]*Transaction, error) {
	var txs []*Transaction
	if err := s.client.execute(ctx, http.MethodGet, walletPath(walletID)+"/transactions", nil, nil, &txs); err != nil {
		return nil, errors.Wrap(err, "failed to list wallet transactions")
	}
	return txs, nil
}

func walletPath(id string) string {
	return "/wallets/" + url.PathEscape(id)
}

// money encodes an amount as a bare JSON number with no float conversion
func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
