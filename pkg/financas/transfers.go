package financas

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// transferService implements the TransferService interface
type transferService struct {
	client *Client
}

// List retrieves all transfers
func (s *transferService) List(ctx context.Context) ([]*Transfer, error) {
	var transfers []*Transfer
	if err := s.client.execute(ctx, http.MethodGet, "/transfers", nil, nil, &transfers); err != nil {
		return nil, errors.Wrap(err, "failed to list transfers")
	}
	return transfers, nil
}

// Create moves money between two different wallets. The date defaults to
// today.
func (s *transferService) Create(ctx context.Context, params *CreateTransferParams) (*Transfer, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "required"}
	}
	if params.FromWalletID != "" && params.FromWalletID == params.ToWalletID {
		return nil, ErrSameWallet
	}

	verrs := &ValidationErrors{}
	if params.FromWalletID == "" {
		verrs.add("fromWalletId", "required", nil)
	}
	if params.ToWalletID == "" {
		verrs.add("toWalletId", "required", nil)
	}
	if !params.Amount.IsPositive() {
		verrs.add("amount", "must be greater than zero", params.Amount.String())
	}
	if err := verrs.orNil(); err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = s.client.now()
	}

	body := map[string]interface{}{
		"amount":       money(params.Amount),
		"date":         apiDate(date),
		"fromWalletId": params.FromWalletID,
		"toWalletId":   params.ToWalletID,
	}
	if params.Description != "" {
		body["description"] = params.Description
	}

	var transfer Transfer
	if err := s.client.execute(ctx, http.MethodPost, "/transfers", nil, body, &transfer); err != nil {
		return nil, errors.Wrap(err, "failed to create transfer")
	}
	return &transfer, nil
}

// Delete deletes a transfer
func (s *transferService) Delete(ctx context.Context, transferID string) error {
	if err := s.client.execute(ctx, http.MethodDelete, "/transfers/"+url.PathEscape(transferID), nil, nil, nil); err != nil {
		return errors.Wrap(err, "failed to delete transfer")
	}
	return nil
}
