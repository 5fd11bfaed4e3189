package financas

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server message kept verbatim",
			err:  pkgerrors.Wrap(&Error{Code: "BAD_REQUEST", Message: "Carteira possui saldo", StatusCode: 400}, "failed to delete wallet"),
			want: "Carteira possui saldo",
		},
		{
			name: "api error without message",
			err:  &Error{Code: "SERVER_ERROR", StatusCode: 500, Err: ErrServerError},
			want: "Erro ao salvar",
		},
		{
			name: "validation",
			err:  &ValidationError{Field: "amount", Message: "must be greater than zero"},
			want: "must be greater than zero",
		},
		{
			name: "local guard",
			err:  pkgerrors.Wrap(ErrWalletNotEmpty, "wallet X has balance 3"),
			want: ErrWalletNotEmpty.Error(),
		},
		{
			name: "network",
			err:  errors.New("dial tcp: connection refused"),
			want: "Erro ao salvar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "Erro ao salvar"))
		})
	}

	assert.Equal(t, "", UserMessage(nil, "x"))
}

func TestErrorClassification(t *testing.T) {
	expired := &Error{Code: "SESSION_EXPIRED", StatusCode: http.StatusUnauthorized, Err: ErrSessionExpired}
	assert.True(t, IsAuthError(pkgerrors.Wrap(expired, "failed to list wallets")))
	assert.True(t, IsAuthError(ErrNotAuthenticated))
	assert.False(t, IsAuthError(ErrNotFound))

	assert.True(t, IsRetryable(&Error{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(pkgerrors.Wrap(ErrTimeout, "x")))
	assert.False(t, IsRetryable(&Error{StatusCode: http.StatusBadRequest}))
}

func TestValidationErrors_Error(t *testing.T) {
	verrs := &ValidationErrors{}
	assert.NoError(t, verrs.orNil())

	verrs.add("name", "required", "")
	assert.Equal(t, "validation error on field 'name': required", verrs.Error())

	verrs.add("amount", "must be greater than zero", "0")
	assert.Equal(t, "2 validation errors occurred: name: required; amount: must be greater than zero", verrs.Error())
}
