package financas

import (
	"sync"

	"github.com/minhasfinancas/financas-go/internal/types"
	"github.com/pkg/errors"
)

// Theme is the persisted colour scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Preferences holds the UI choices that survive restarts: the colour theme
// and the dashboard period kind.
type Preferences struct {
	storage     Storage
	prefersDark func() bool

	mu sync.Mutex
}

func newPreferences(storage Storage, prefersDark func() bool) *Preferences {
	return &Preferences{
		storage:     storage,
		prefersDark: prefersDark,
	}
}

// Theme returns the saved theme. With nothing saved it follows the
// environment's preference, and is light when there is no hint.
func (p *Preferences) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.themeLocked()
}

func (p *Preferences) themeLocked() Theme {
	saved, ok, err := p.storage.Get(types.KeyTheme)
	if err == nil && ok {
		if Theme(saved) == ThemeDark {
			return ThemeDark
		}
		return ThemeLight
	}
	if p.prefersDark != nil && p.prefersDark() {
		return ThemeDark
	}
	return ThemeLight
}

// IsDark reports whether the dark theme is active
func (p *Preferences) IsDark() bool {
	return p.Theme() == ThemeDark
}

// SetTheme persists theme
func (p *Preferences) SetTheme(theme Theme) error {
	if theme != ThemeDark && theme != ThemeLight {
		return &ValidationError{Field: "theme", Message: "must be dark or light", Value: string(theme)}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Wrap(p.storage.Set(types.KeyTheme, string(theme)), "failed to save theme")
}

// ToggleTheme flips between dark and light and returns the new theme
func (p *Preferences) ToggleTheme() (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := ThemeDark
	if p.themeLocked() == ThemeDark {
		next = ThemeLight
	}
	if err := p.storage.Set(types.KeyTheme, string(next)); err != nil {
		return p.themeLocked(), errors.Wrap(err, "failed to save theme")
	}
	return next, nil
}

// DashboardPeriod returns the last chosen period kind, month by default
func (p *Preferences) DashboardPeriod() PeriodKind {
	p.mu.Lock()
	defer p.mu.Unlock()

	saved, ok, err := p.storage.Get(types.KeyDashboardPeriod)
	if err != nil || !ok {
		return DefaultPeriod
	}
	kind, valid := ParsePeriodKind(saved)
	if !valid {
		return DefaultPeriod
	}
	return kind
}

// SetDashboardPeriod persists kind
func (p *Preferences) SetDashboardPeriod(kind PeriodKind) error {
	if _, ok := ParsePeriodKind(string(kind)); !ok {
		return &ValidationError{Field: "period", Message: "must be week, biweekly or month", Value: string(kind)}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Wrap(p.storage.Set(types.KeyDashboardPeriod, string(kind)), "failed to save dashboard period")
}
