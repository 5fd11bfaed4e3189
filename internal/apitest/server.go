// Package apitest is an in-memory fake of the finance REST API for tests. It
// keeps one user's data set, expands recurring and installment series, fans
// out updateAll/deleteAll, refuses to delete wallets with a balance and
// answers 401 to missing or revoked tokens.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	basePath = "/api"
	tokenTTL = 24 * time.Hour

	// RecurringOccurrences is how many members a recurring seed expands to
	RecurringOccurrences = 12
)

type failure struct {
	status  int
	message string
}

// Server is a running fake API. URL + "/api" is the client base URL.
type Server struct {
	*httptest.Server

	// Now is the server clock for overdue and upcoming checks
	Now func() time.Time

	mu           sync.Mutex
	secret       []byte
	users        map[string]*user
	wallets      []*wallet
	categories   []*category
	transactions []*transaction
	transfers    []*transfer
	calls        map[string]int
	failures     map[string]failure
}

// New starts a fake API. It is closed when the test ends.
func New(t testing.TB) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		Now:      time.Now,
		secret:   []byte(uuid.NewString()),
		users:    make(map[string]*user),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to the client
func (s *Server) BaseURL() string {
	return s.URL + basePath
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.count, s.injectFailures)

	api := r.Group(basePath)
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)

	authed := api.Group("", s.requireToken)

	authed.GET("/wallets", s.listWallets)
	authed.POST("/wallets", s.createWallet)
	authed.GET("/wallets/:id", s.getWallet)
	authed.PUT("/wallets/:id", s.updateWallet)
	authed.DELETE("/wallets/:id", s.deleteWallet)
	authed.GET("/wallets/:id/transactions", s.walletTransactions)

	authed.GET("/categories", s.listCategories)
	authed.POST("/categories", s.createCategory)
	authed.PUT("/categories/:id", s.updateCategory)
	authed.DELETE("/categories/:id", s.deleteCategory)

	authed.GET("/transactions", s.listTransactions)
	authed.POST("/transactions", s.createTransaction)
	authed.PUT("/transactions/:id", s.updateTransaction)
	authed.DELETE("/transactions/:id", s.deleteTransaction)
	authed.POST("/transactions/:id/pay", s.payTransaction)

	authed.GET("/transfers", s.listTransfers)
	authed.POST("/transfers", s.createTransfer)
	authed.DELETE("/transfers/:id", s.deleteTransfer)

	authed.GET("/dashboard/summary", s.dashboardSummary)
	authed.GET("/dashboard/upcoming", s.dashboardUpcoming)

	return r
}

// Calls reports how many times route was hit, e.g. Calls("POST", "/auth/login")
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+basePath+route]
}

// Fail makes every request to route answer status with message until
// ClearFailures is called.
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+basePath+route] = failure{status: status, message: message}
}

// ClearFailures removes every injected failure
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// RevokeTokens invalidates every token issued so far
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}

// AddUser registers an account directly
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) *user {
	u := &user{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.ToLower(email),
		CreatedAt: Timestamp(s.Now()),
		password:  password,
	}
	s.users[u.Email] = u
	return u
}

// TransactionCount is the number of stored transactions
func (s *Server) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *Server) count(c *gin.Context) {
	s.mu.Lock()
	s.calls[c.Request.Method+" "+c.FullPath()]++
	s.mu.Unlock()
	c.Next()
}

func (s *Server) injectFailures(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failures[c.Request.Method+" "+c.FullPath()]
	s.mu.Unlock()

	if ok {
		fail(c, f.status, f.message)
		return
	}
	c.Next()
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		fail(c, http.StatusUnauthorized, "Token não fornecido")
		return
	}

	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	_, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		fail(c, http.StatusUnauthorized, "Token inválido")
		return
	}
	c.Next()
}

func (s *Server) issueToken(u *user) (string, error) {
	now := s.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}).SignedString(s.secret)
}

func (s *Server) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(req.Email)]
	if !ok || u.password != req.Password {
		fail(c, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}
	s.respondAuthLocked(c, http.StatusOK, u)
}

func (s *Server) register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Dados inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		fail(c, http.StatusBadRequest, "Email já cadastrado")
		return
	}
	s.respondAuthLocked(c, http.StatusCreated, s.addUserLocked(req.Name, req.Email, req.Password))
}

func (s *Server) respondAuthLocked(c *gin.Context, status int, u *user) {
	token, err := s.issueToken(u)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Erro ao gerar token")
		return
	}
	c.JSON(status, gin.H{"user": u, "token": token})
}

// fail writes the API's error envelope and stops the chain
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
