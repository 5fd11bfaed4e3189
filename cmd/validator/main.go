package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minhasfinancas/financas-go/pkg/financas"
	"github.com/shopspring/decimal"
)

// ValidatorConfig holds configuration for the validator
type ValidatorConfig struct {
	APIURL        string
	Email         string
	Password      string
	OutputDir     string
	Verbose       bool
	Write         bool
	MethodsToTest []string
}

// ValidationResult represents the result of a validation test
type ValidationResult struct {
	Method   string        `json:"method"`
	Passed   bool          `json:"passed"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ValidationReport represents the full validation report
type ValidationReport struct {
	Timestamp   time.Time          `json:"timestamp"`
	APIURL      string             `json:"api_url"`
	TotalTests  int                `json:"total_tests"`
	Passed      int                `json:"passed"`
	Failed      int                `json:"failed"`
	SuccessRate float64            `json:"success_rate"`
	Results     []ValidationResult `json:"results"`
}

// readChecks only read; writeChecks create and remove their own records
var (
	readChecks  = []string{"list_wallets", "list_categories", "list_transactions", "list_transfers", "dashboard_summary", "dashboard_upcoming"}
	writeChecks = []string{"wallet_delete_guard", "installment_delete_scope", "recurring_update_scope"}
)

func main() {
	config := parseFlags()

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	client, err := financas.NewClient(&financas.ClientOptions{BaseURL: config.APIURL})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	validator := NewValidator(config, client, os.Stdout)
	report, err := validator.Run(context.Background())
	if err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	reportPath := filepath.Join(config.OutputDir, fmt.Sprintf("validation_report_%d.json", time.Now().Unix()))
	if err := saveReport(report, reportPath); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}

	printSummary(os.Stdout, report, reportPath)

	// Exit with non-zero if any tests failed
	if report.Failed > 0 {
		client.Close()
		os.Exit(1)
	}
}

func parseFlags() *ValidatorConfig {
	config := &ValidatorConfig{}

	flag.StringVar(&config.APIURL, "api", envOr("FINANCAS_API_URL", financas.DefaultBaseURL), "API base URL")
	flag.StringVar(&config.Email, "email", os.Getenv("FINANCAS_EMAIL"), "Account email")
	flag.StringVar(&config.Password, "password", os.Getenv("FINANCAS_PASSWORD"), "Account password")
	flag.StringVar(&config.OutputDir, "output", "./validation_results", "Output directory for results")
	flag.BoolVar(&config.Verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&config.Write, "write", false, "Also run checks that create and delete records")

	methodList := flag.String("methods", "", "Comma-separated list of methods to test (empty for all)")

	flag.Parse()

	if *methodList != "" {
		config.MethodsToTest = strings.Split(*methodList, ",")
	} else {
		config.MethodsToTest = append([]string{}, readChecks...)
		if config.Write {
			config.MethodsToTest = append(config.MethodsToTest, writeChecks...)
		}
	}

	return config
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validator runs SDK calls against a live API and checks the server
// behaves the way the client relies on
type Validator struct {
	config *ValidatorConfig
	client *financas.Client
	out    io.Writer
}

// NewValidator creates a new validator
func NewValidator(config *ValidatorConfig, client *financas.Client, out io.Writer) *Validator {
	return &Validator{config: config, client: client, out: out}
}

// Run logs in and executes the validation tests
func (v *Validator) Run(ctx context.Context) (*ValidationReport, error) {
	if _, err := v.client.Auth.Login(ctx, v.config.Email, v.config.Password); err != nil {
		return nil, fmt.Errorf("login: %s", financas.UserMessage(err, err.Error()))
	}

	report := &ValidationReport{
		Timestamp: time.Now(),
		APIURL:    v.config.APIURL,
		Results:   make([]ValidationResult, 0),
	}

	for _, method := range v.config.MethodsToTest {
		if v.config.Verbose {
			fmt.Fprintf(v.out, "Testing %s...\n", method)
		}

		result := v.testMethod(ctx, method)
		report.Results = append(report.Results, result)

		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	report.TotalTests = len(report.Results)
	if report.TotalTests > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.TotalTests) * 100
	}

	return report, nil
}

// testMethod tests a single method
func (v *Validator) testMethod(ctx context.Context, method string) ValidationResult {
	start := time.Now()
	result := ValidationResult{Method: method}

	detail, err := v.execute(ctx, method)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		if v.config.Verbose {
			fmt.Fprintf(v.out, "  FAIL %s: %v\n", method, err)
		}
		return result
	}

	result.Passed = true
	result.Detail = detail
	return result
}

func (v *Validator) execute(ctx context.Context, method string) (string, error) {
	c := v.client
	window := financas.WindowFor(financas.PeriodMonth, time.Now())

	switch method {
	case "list_wallets":
		wallets, err := c.Wallets.List(ctx)
		return fmt.Sprintf("%d wallets", len(wallets)), err
	case "list_categories":
		categories, err := c.Categories.List(ctx)
		return fmt.Sprintf("%d categories", len(categories)), err
	case "list_transactions":
		txs, err := c.Transactions.Query().InWindow(window).Execute(ctx)
		return fmt.Sprintf("%d transactions this month", len(txs)), err
	case "list_transfers":
		transfers, err := c.Transfers.List(ctx)
		return fmt.Sprintf("%d transfers", len(transfers)), err
	case "dashboard_summary":
		s, err := c.Dashboard.Summary(ctx, window)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("balance %s", s.TotalBalance.StringFixed(2)), nil
	case "dashboard_upcoming":
		txs, err := c.Dashboard.Upcoming(ctx, window.UpcomingDays(time.Now()))
		return fmt.Sprintf("%d upcoming", len(txs)), err
	case "wallet_delete_guard":
		return v.checkWalletGuard(ctx)
	case "installment_delete_scope":
		return v.checkInstallmentScope(ctx)
	case "recurring_update_scope":
		return v.checkRecurringScope(ctx)
	}
	return "", fmt.Errorf("unknown method %q", method)
}

// scratch creates a throwaway zero-balance wallet and expense category
func (v *Validator) scratch(ctx context.Context) (*financas.Wallet, *financas.Category, func(), error) {
	tag := "validator-" + uuid.NewString()[:8]
	w, err := v.client.Wallets.Create(ctx, &financas.CreateWalletParams{Name: tag})
	if err != nil {
		return nil, nil, nil, err
	}
	cat, err := v.client.Categories.Create(ctx, &financas.CreateCategoryParams{Name: tag, Type: financas.Expense})
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		_ = v.client.Categories.Delete(ctx, cat.ID)
		if fresh, err := v.client.Wallets.Get(ctx, w.ID); err == nil {
			_ = v.client.Wallets.Delete(ctx, fresh)
		}
	}
	return w, cat, cleanup, nil
}

func (v *Validator) groupMembers(ctx context.Context, w *financas.Wallet, groupID string) (int, error) {
	txs, err := v.client.Transactions.Query().WithWallet(w.ID).Execute(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, tx := range txs {
		if tx.GroupID() == groupID {
			n++
		}
	}
	return n, nil
}

// checkWalletGuard confirms the server refuses to delete a wallet with money
// even when the client guard is bypassed
func (v *Validator) checkWalletGuard(ctx context.Context) (string, error) {
	w, cat, cleanup, err := v.scratch(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	// a paid 0.01 income leaves the wallet holding one cent
	income, err := v.client.Categories.Create(ctx, &financas.CreateCategoryParams{Name: cat.Name, Type: financas.Income})
	if err != nil {
		return "", err
	}
	defer v.client.Categories.Delete(ctx, income.ID)

	now := time.Now()
	tx, err := v.client.Transactions.Create(ctx, &financas.CreateTransactionParams{
		Description: "validator cent",
		Amount:      decimal.RequireFromString("0.01"),
		Type:        financas.Income,
		DueDate:     now,
		IsPaid:      true,
		PaymentDate: &now,
		WalletID:    w.ID,
		CategoryID:  income.ID,
	})
	if err != nil {
		return "", err
	}
	// removing the cent zeroes the wallet again for cleanup
	defer v.client.Transactions.Delete(ctx, tx.ID, financas.ScopeSingle)

	// pretend the balance was zero on fetch
	stale := *w
	stale.Balance = decimal.Zero
	err = v.client.Wallets.Delete(ctx, &stale)
	if err == nil {
		return "", fmt.Errorf("server deleted wallet %s holding 0.01", w.ID)
	}
	return fmt.Sprintf("rejected: %s", financas.UserMessage(err, err.Error())), nil
}

// checkInstallmentScope confirms single deletes one member and all deletes the rest
func (v *Validator) checkInstallmentScope(ctx context.Context) (string, error) {
	w, cat, cleanup, err := v.scratch(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	seed, err := v.client.Transactions.Create(ctx, &financas.CreateTransactionParams{
		Description:   "validator installment",
		Amount:        decimal.RequireFromString("3.00"),
		Type:          financas.Expense,
		DueDate:       time.Now(),
		IsInstallment: true,
		Installments:  3,
		WalletID:      w.ID,
		CategoryID:    cat.ID,
	})
	if err != nil {
		return "", err
	}
	group := seed.GroupID()
	if group == "" {
		return "", fmt.Errorf("installment seed %s came back without a group id", seed.ID)
	}

	if err := v.client.Transactions.Delete(ctx, seed.ID, financas.ScopeSingle); err != nil {
		return "", err
	}
	n, err := v.groupMembers(ctx, w, group)
	if err != nil {
		return "", err
	}
	if n != 2 {
		return "", fmt.Errorf("single delete left %d members, want 2", n)
	}

	txs, err := v.client.Transactions.Query().WithWallet(w.ID).Execute(ctx)
	if err != nil || len(txs) == 0 {
		return "", fmt.Errorf("list after single delete: %v", err)
	}
	if err := v.client.Transactions.Delete(ctx, txs[0].ID, financas.ScopeAll); err != nil {
		return "", err
	}
	if n, err = v.groupMembers(ctx, w, group); err != nil {
		return "", err
	}
	if n != 0 {
		return "", fmt.Errorf("delete all left %d members", n)
	}
	return "single removed 1 of 3, all removed the rest", nil
}

// checkRecurringScope confirms updateAll reaches every member of the group
func (v *Validator) checkRecurringScope(ctx context.Context) (string, error) {
	w, cat, cleanup, err := v.scratch(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	seed, err := v.client.Transactions.Create(ctx, &financas.CreateTransactionParams{
		Description:   "validator recurring",
		Amount:        decimal.RequireFromString("1.00"),
		Type:          financas.Expense,
		DueDate:       time.Now(),
		IsRecurring:   true,
		RecurringType: financas.Monthly,
		WalletID:      w.ID,
		CategoryID:    cat.ID,
	})
	if err != nil {
		return "", err
	}
	defer v.client.Transactions.Delete(ctx, seed.ID, financas.ScopeAll)

	notes := "validator " + uuid.NewString()[:8]
	if _, err := v.client.Transactions.Update(ctx, seed.ID, &financas.UpdateTransactionParams{Notes: &notes}, financas.ScopeAll); err != nil {
		return "", err
	}

	txs, err := v.client.Transactions.Query().WithWallet(w.ID).Execute(ctx)
	if err != nil {
		return "", err
	}
	members := 0
	for _, tx := range txs {
		if tx.GroupID() != seed.GroupID() {
			continue
		}
		members++
		if tx.Notes != notes {
			return "", fmt.Errorf("member %s kept notes %q", tx.ID, tx.Notes)
		}
	}
	return fmt.Sprintf("updated %d members", members), nil
}

func saveReport(report *ValidationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(w io.Writer, report *ValidationReport, path string) {
	fmt.Fprintln(w, "\n=== Validation Report ===")
	fmt.Fprintf(w, "API: %s\n", report.APIURL)
	fmt.Fprintf(w, "Total Tests: %d\n", report.TotalTests)
	fmt.Fprintf(w, "Passed: %d\n", report.Passed)
	fmt.Fprintf(w, "Failed: %d\n", report.Failed)
	fmt.Fprintf(w, "Success Rate: %.1f%%\n", report.SuccessRate)

	if report.Failed > 0 {
		fmt.Fprintln(w, "\nFailed Tests:")
		for _, result := range report.Results {
			if !result.Passed {
				fmt.Fprintf(w, "  - %s: %s\n", result.Method, result.Error)
			}
		}
	}

	fmt.Fprintf(w, "\nReport saved to: %s\n", path)
}
