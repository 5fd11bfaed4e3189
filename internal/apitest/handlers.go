package apitest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// balanceLocked is the opening balance moved by paid transactions and
// transfers
func (s *Server) balanceLocked(w *wallet) decimal.Decimal {
	b := w.opening
	for _, tx := range s.transactions {
		if tx.walletID != w.ID || !tx.IsPaid {
			continue
		}
		if tx.Type == "INCOME" {
			b = b.Add(tx.Amount.Decimal)
		} else {
			b = b.Sub(tx.Amount.Decimal)
		}
	}
	for _, tr := range s.transfers {
		if tr.fromID == w.ID {
			b = b.Sub(tr.Amount.Decimal)
		}
		if tr.toID == w.ID {
			b = b.Add(tr.Amount.Decimal)
		}
	}
	return b
}

func (s *Server) walletLocked(id string) *wallet {
	for _, w := range s.wallets {
		if w.ID == id {
			w.Balance = money(s.balanceLocked(w))
			return w
		}
	}
	return nil
}

func (s *Server) categoryLocked(id string) *category {
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Server) listWallets(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, s.walletLocked(w.ID))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getWallet(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.walletLocked(c.Param("id"))
	if w == nil {
		fail(c, http.StatusNotFound, "Carteira não encontrada")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) createWallet(c *gin.Context) {
	var req walletReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fail(c, http.StatusBadRequest, "Nome é obrigatório")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := Timestamp(s.Now())
	w := &wallet{
		ID:        uuid.NewString(),
		Name:      *req.Name,
		Color:     deref(req.Color, "#3B82F6"),
		Icon:      deref(req.Icon, "wallet"),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.Balance != nil {
		w.opening = *req.Balance
	}
	s.wallets = append(s.wallets, w)

	c.JSON(http.StatusCreated, s.walletLocked(w.ID))
}

func (s *Server) updateWallet(c *gin.Context) {
	var req walletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.walletLocked(c.Param("id"))
	if w == nil {
		fail(c, http.StatusNotFound, "Carteira não encontrada")
		return
	}
	if req.Balance != nil {
		fail(c, http.StatusBadRequest, "Saldo não pode ser alterado diretamente")
		return
	}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.Color != nil {
		w.Color = *req.Color
	}
	if req.Icon != nil {
		w.Icon = *req.Icon
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	w.UpdatedAt = Timestamp(s.Now())

	c.JSON(http.StatusOK, w)
}

func (s *Server) deleteWallet(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.walletLocked(c.Param("id"))
	if w == nil {
		fail(c, http.StatusNotFound, "Carteira não encontrada")
		return
	}
	if !w.Balance.IsZero() {
		fail(c, http.StatusBadRequest, "Não é possível excluir carteira com saldo")
		return
	}

	kept := s.wallets[:0]
	for _, other := range s.wallets {
		if other.ID != w.ID {
			kept = append(kept, other)
		}
	}
	s.wallets = kept
	c.Status(http.StatusNoContent)
}

// SetWalletOpening moves a wallet's opening balance behind the client's back
func (s *Server) SetWalletOpening(walletID string, opening decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.ID == walletID {
			w.opening = opening
		}
	}
}

func (s *Server) walletTransactions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.walletLocked(c.Param("id")) == nil {
		fail(c, http.StatusNotFound, "Carteira não encontrada")
		return
	}
	out := []*transaction{}
	for _, tx := range s.transactions {
		if tx.walletID == c.Param("id") {
			out = append(out, tx)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]*category{}, s.categories...)
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil || req.Type == nil {
		fail(c, http.StatusBadRequest, "Nome e tipo são obrigatórios")
		return
	}
	if *req.Type != "INCOME" && *req.Type != "EXPENSE" {
		fail(c, http.StatusBadRequest, "Tipo inválido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := Timestamp(s.Now())
	cat := &category{
		ID:        uuid.NewString(),
		Name:      *req.Name,
		Type:      *req.Type,
		Color:     deref(req.Color, "#10B981"),
		Icon:      deref(req.Icon, "tag"),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	s.categories = append(s.categories, cat)
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.categoryLocked(c.Param("id"))
	if cat == nil {
		fail(c, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	if req.Type != nil && *req.Type != cat.Type {
		fail(c, http.StatusBadRequest, "Tipo da categoria não pode ser alterado")
		return
	}
	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if req.Color != nil {
		cat.Color = *req.Color
	}
	if req.Icon != nil {
		cat.Icon = *req.Icon
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	cat.UpdatedAt = Timestamp(s.Now())
	c.JSON(http.StatusOK, cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if s.categoryLocked(id) == nil {
		fail(c, http.StatusNotFound, "Categoria não encontrada")
		return
	}
	for _, tx := range s.transactions {
		if tx.categoryID == id {
			fail(c, http.StatusBadRequest, "Categoria possui lançamentos")
			return
		}
	}

	kept := s.categories[:0]
	for _, cat := range s.categories {
		if cat.ID != id {
			kept = append(kept, cat)
		}
	}
	s.categories = kept
	c.Status(http.StatusNoContent)
}

func (s *Server) listTransfers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]*transfer{}, s.transfers...)
	c.JSON(http.StatusOK, out)
}

func (s *Server) createTransfer(c *gin.Context) {
	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if req.FromWalletID == req.ToWalletID {
		fail(c, http.StatusBadRequest, "As carteiras de origem e destino devem ser diferentes")
		return
	}
	if !req.Amount.IsPositive() {
		fail(c, http.StatusBadRequest, "Valor deve ser maior que zero")
		return
	}
	date, ok := parseDay(req.Date)
	if !ok {
		fail(c, http.StatusBadRequest, "Data inválida")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := s.walletLocked(req.FromWalletID), s.walletLocked(req.ToWalletID)
	if from == nil || to == nil {
		fail(c, http.StatusNotFound, "Carteira não encontrada")
		return
	}

	now := Timestamp(s.Now())
	tr := &transfer{
		ID:          uuid.NewString(),
		Amount:      money(req.Amount),
		Description: req.Description,
		Date:        Timestamp(date),
		CreatedAt:   now,
		UpdatedAt:   now,
		FromWallet:  from.ref(),
		ToWallet:    to.ref(),
		fromID:      from.ID,
		toID:        to.ID,
	}
	s.transfers = append(s.transfers, tr)
	c.JSON(http.StatusCreated, tr)
}

func (s *Server) deleteTransfer(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	kept := s.transfers[:0]
	found := false
	for _, tr := range s.transfers {
		if tr.ID == id {
			found = true
			continue
		}
		kept = append(kept, tr)
	}
	if !found {
		fail(c, http.StatusNotFound, "Transferência não encontrada")
		return
	}
	s.transfers = kept
	c.Status(http.StatusNoContent)
}

func deref(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
