// Package theme holds the light/dark preference: resolution at start-up,
// persistence on every change, and the indicator derived from it.
package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
)

// Persister stores the preference. Load reports ok=false when nothing has
// been saved yet.
type Persister interface {
	Load() (theme models.Theme, ok bool, err error)
	Save(theme models.Theme) error
}

// Indicator is the front-end element that shows the active theme.
type Indicator interface {
	ShowTheme(theme models.Theme, icon string)
}

// PlatformDarkSignal reports whether the terminal background is dark.
func PlatformDarkSignal() bool {
	return lipgloss.HasDarkBackground()
}

// Store is the process-wide theme preference.
type Store struct {
	mu        sync.Mutex
	current   models.Theme
	persister Persister
	indicator Indicator
	logger    *logging.Logger
}

// NewStore resolves the initial theme and shows it on the indicator.
// Resolution order: persisted preference, then darkSignal, then light.
// Either of persister, darkSignal and indicator may be nil.
func NewStore(persister Persister, darkSignal func() bool, indicator Indicator, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Store{
		persister: persister,
		indicator: indicator,
		logger:    logger,
	}
	s.current = s.resolve(darkSignal)
	s.show(s.current)
	return s
}

func (s *Store) resolve(darkSignal func() bool) models.Theme {
	if s.persister != nil {
		theme, ok, err := s.persister.Load()
		if err != nil {
			s.logger.Debugf("theme preference unreadable, ignoring: %v", err)
		} else if ok {
			return theme
		}
	}
	if darkSignal != nil && darkSignal() {
		return models.ThemeDark
	}
	return models.ThemeLight
}

// Get returns the active theme.
func (s *Store) Get() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set makes theme active, persists it and refreshes the indicator.
// Persistence failures are logged and otherwise ignored.
func (s *Store) Set(theme models.Theme) {
	s.mu.Lock()
	s.current = theme
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Save(theme); err != nil {
			s.logger.Debugf("theme preference not saved: %v", err)
		}
	}
	s.show(theme)
}

// Toggle switches between light and dark and returns the new theme.
func (s *Store) Toggle() models.Theme {
	s.mu.Lock()
	next := s.current.Opposite()
	s.mu.Unlock()

	s.Set(next)
	return next
}

func (s *Store) show(theme models.Theme) {
	if s.indicator != nil {
		s.indicator.ShowTheme(theme, theme.Icon())
	}
}
