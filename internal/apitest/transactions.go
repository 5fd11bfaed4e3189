package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// step advances a due date by n cadence units
func step(t time.Time, recurringType string, n int) time.Time {
	switch recurringType {
	case "WEEKLY":
		return t.AddDate(0, 0, 7*n)
	case "YEARLY":
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, n, 0)
	}
}

// splitAmount divides total into n two-decimal slices; the last slice takes
// the rounding remainder so the slices add up to total exactly.
func splitAmount(total decimal.Decimal, n int) []decimal.Decimal {
	slice := total.DivRound(decimal.NewFromInt(int64(n)), 2)
	out := make([]decimal.Decimal, n)
	sum := decimal.Zero
	for i := 0; i < n-1; i++ {
		out[i] = slice
		sum = sum.Add(slice)
	}
	out[n-1] = total.Sub(sum)
	return out
}

func (s *Server) transactionLocked(id string) *transaction {
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

func (s *Server) listTransactions(c *gin.Context) {
	start, hasStart := parseDay(c.Query("startDate"))
	end, hasEnd := parseDay(c.Query("endDate"))
	isPaid, paidFilter := c.GetQuery("isPaid")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*transaction{}
	for _, tx := range s.transactions {
		due := time.Time(tx.DueDate)
		switch {
		case hasStart && due.Before(start):
			continue
		case hasEnd && due.After(end):
			continue
		case paidFilter && strconv.FormatBool(tx.IsPaid) != isPaid:
			continue
		case c.Query("walletId") != "" && tx.walletID != c.Query("walletId"):
			continue
		case c.Query("categoryId") != "" && tx.categoryID != c.Query("categoryId"):
			continue
		case c.Query("type") != "" && tx.Type != c.Query("type"):
			continue
		}
		out = append(out, tx)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createTransaction(c *gin.Context) {
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" ||
		req.Amount == nil || !req.Amount.IsPositive() || req.Type == nil ||
		req.WalletID == nil || req.CategoryID == nil {
		fail(c, http.StatusBadRequest, "Campos obrigatórios ausentes")
		return
	}
	due, ok := parseDay(deref(req.DueDate, ""))
	if !ok {
		fail(c, http.StatusBadRequest, "Data de vencimento inválida")
		return
	}
	recurring := req.IsRecurring != nil && *req.IsRecurring
	installment := req.IsInstallment != nil && *req.IsInstallment
	if recurring && installment {
		fail(c, http.StatusBadRequest, "Lançamento não pode ser recorrente e parcelado")
		return
	}
	if installment && (req.Installments == nil || *req.Installments < 2) {
		fail(c, http.StatusBadRequest, "Número de parcelas deve ser pelo menos 2")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.walletLocked(*req.WalletID)
	cat := s.categoryLocked(*req.CategoryID)
	if w == nil || cat == nil {
		fail(c, http.StatusNotFound, "Carteira ou categoria não encontrada")
		return
	}

	now := Timestamp(s.Now())
	base := transaction{
		Description: *req.Description,
		Amount:      money(*req.Amount),
		Type:        *req.Type,
		DueDate:     Timestamp(due),
		IsPaid:      req.IsPaid != nil && *req.IsPaid,
		Notes:       deref(req.Notes, ""),
		CreatedAt:   now,
		UpdatedAt:   now,
		Wallet:      w.ref(),
		Category:    cat.ref(),
		walletID:    w.ID,
		categoryID:  cat.ID,
	}
	if base.IsPaid {
		paid := now
		if t, ok := parseDay(deref(req.PaymentDate, "")); ok {
			paid = Timestamp(t)
		}
		base.PaymentDate = &paid
	}

	var created []*transaction
	switch {
	case recurring:
		group := uuid.NewString()
		cadence := deref(req.RecurringType, "MONTHLY")
		for i := 0; i < RecurringOccurrences; i++ {
			tx := base
			tx.ID = uuid.NewString()
			tx.IsRecurring = true
			tx.RecurringType = cadence
			tx.RecurringGroupID = group
			tx.DueDate = Timestamp(step(due, cadence, i))
			if i > 0 {
				tx.IsPaid, tx.PaymentDate = false, nil
			}
			created = append(created, &tx)
		}

	case installment:
		group := uuid.NewString()
		n := *req.Installments
		for i, amount := range splitAmount(*req.Amount, n) {
			tx := base
			tx.ID = uuid.NewString()
			tx.Amount = money(amount)
			tx.IsInstallment = true
			tx.Installments = n
			tx.CurrentInstallment = i + 1
			tx.InstallmentGroupID = group
			tx.DueDate = Timestamp(due.AddDate(0, i, 0))
			if i > 0 {
				tx.IsPaid, tx.PaymentDate = false, nil
			}
			created = append(created, &tx)
		}

	default:
		tx := base
		tx.ID = uuid.NewString()
		created = append(created, &tx)
	}

	s.transactions = append(s.transactions, created...)
	c.JSON(http.StatusCreated, created[0])
}

// targetsLocked is tx alone, or every member of its group when all is set
func (s *Server) targetsLocked(tx *transaction, all bool) []*transaction {
	group := tx.groupID()
	if !all || group == "" {
		return []*transaction{tx}
	}
	var out []*transaction
	for _, other := range s.transactions {
		if other.groupID() == group {
			out = append(out, other)
		}
	}
	return out
}

func (s *Server) updateTransaction(c *gin.Context) {
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.transactionLocked(c.Param("id"))
	if tx == nil {
		fail(c, http.StatusNotFound, "Lançamento não encontrado")
		return
	}

	var w *wallet
	if req.WalletID != nil {
		if w = s.walletLocked(*req.WalletID); w == nil {
			fail(c, http.StatusNotFound, "Carteira não encontrada")
			return
		}
	}
	var cat *category
	if req.CategoryID != nil {
		if cat = s.categoryLocked(*req.CategoryID); cat == nil {
			fail(c, http.StatusNotFound, "Categoria não encontrada")
			return
		}
	}

	now := Timestamp(s.Now())
	for _, target := range s.targetsLocked(tx, req.UpdateAll) {
		if req.Description != nil {
			target.Description = *req.Description
		}
		if req.Amount != nil {
			target.Amount = money(*req.Amount)
		}
		if req.Notes != nil {
			target.Notes = *req.Notes
		}
		if w != nil {
			target.walletID, target.Wallet = w.ID, w.ref()
		}
		if cat != nil {
			target.categoryID, target.Category = cat.ID, cat.ref()
		}
		target.UpdatedAt = now
	}

	// dates and payment state only ever move the addressed record
	if req.DueDate != nil {
		if due, ok := parseDay(*req.DueDate); ok {
			tx.DueDate = Timestamp(due)
		}
	}
	if req.IsPaid != nil {
		tx.IsPaid = *req.IsPaid
		if !tx.IsPaid {
			tx.PaymentDate = nil
		}
	}

	c.JSON(http.StatusOK, tx)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	all := c.Query("deleteAll") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.transactionLocked(c.Param("id"))
	if tx == nil {
		fail(c, http.StatusNotFound, "Lançamento não encontrado")
		return
	}

	doomed := make(map[string]bool)
	for _, target := range s.targetsLocked(tx, all) {
		doomed[target.ID] = true
	}
	kept := s.transactions[:0]
	for _, other := range s.transactions {
		if !doomed[other.ID] {
			kept = append(kept, other)
		}
	}
	s.transactions = kept
	c.Status(http.StatusNoContent)
}

func (s *Server) payTransaction(c *gin.Context) {
	var req payReq
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.transactionLocked(c.Param("id"))
	if tx == nil {
		fail(c, http.StatusNotFound, "Lançamento não encontrado")
		return
	}
	if tx.IsPaid {
		fail(c, http.StatusBadRequest, "Lançamento já está pago")
		return
	}

	paid := Timestamp(s.Now())
	if t, ok := parseDay(req.PaymentDate); ok {
		paid = Timestamp(t)
	}
	tx.IsPaid = true
	tx.PaymentDate = &paid
	tx.UpdatedAt = Timestamp(s.Now())
	c.JSON(http.StatusOK, tx)
}

func (s *Server) dashboardSummary(c *gin.Context) {
	start, okStart := parseDay(c.Query("startDate"))
	end, okEnd := parseDay(c.Query("endDate"))
	if !okStart || !okEnd {
		fail(c, http.StatusBadRequest, "Período inválido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out summary
	out.Period.Month = int(start.Month())
	out.Period.Year = start.Year()

	total := decimal.Zero
	out.Wallets = []*wallet{}
	for _, w := range s.wallets {
		w = s.walletLocked(w.ID)
		out.Wallets = append(out.Wallets, w)
		total = total.Add(w.Balance.Decimal)
	}
	out.TotalBalance = money(total)

	var incomePaid, incomePending, expensePaid, expensePending decimal.Decimal
	now := s.Now()
	for _, tx := range s.transactions {
		due := time.Time(tx.DueDate)
		if due.Before(start) || due.After(end) {
			continue
		}
		amount := tx.Amount.Decimal
		switch {
		case tx.Type == "INCOME" && tx.IsPaid:
			incomePaid = incomePaid.Add(amount)
		case tx.Type == "INCOME":
			incomePending = incomePending.Add(amount)
		case tx.IsPaid:
			expensePaid = expensePaid.Add(amount)
		default:
			expensePending = expensePending.Add(amount)
		}
		if !tx.IsPaid {
			out.PendingTransactions++
			if due.Before(now) {
				out.OverdueTransactions++
			}
		}
	}

	out.Income = flowTotals{Total: money(incomePaid.Add(incomePending)), Paid: money(incomePaid), Pending: money(incomePending)}
	out.Expense = flowTotals{Total: money(expensePaid.Add(expensePending)), Paid: money(expensePaid), Pending: money(expensePending)}
	out.Balance = money(out.Income.Total.Sub(out.Expense.Total.Decimal))

	c.JSON(http.StatusOK, out)
}

func (s *Server) dashboardUpcoming(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		fail(c, http.StatusBadRequest, "Dias inválido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	limit := now.AddDate(0, 0, days)
	out := []*transaction{}
	for _, tx := range s.transactions {
		due := time.Time(tx.DueDate)
		if !tx.IsPaid && !due.After(limit) && !due.Before(now.AddDate(0, 0, -1)) {
			out = append(out, tx)
		}
	}
	c.JSON(http.StatusOK, out)
}
