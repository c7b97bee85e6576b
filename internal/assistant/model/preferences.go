package model

import "context"

// Theme is the persisted UI colour preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeDark
)

// ParseTheme validates a theme label.
func ParseTheme(v string) (Theme, bool) {
	switch Theme(v) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	default:
		return "", false
	}
}

// PreferenceRepository is the durable key-value storage behind the query
// history and the theme preference. Absent keys are not errors: loaders return
// nil/"" with a nil error.
type PreferenceRepository interface {
	// LoadHistory returns the raw persisted history payload (a JSON array of strings).
	LoadHistory(ctx context.Context) ([]byte, error)

	// SaveHistory replaces the persisted history payload.
	SaveHistory(ctx context.Context, payload []byte) error

	// DeleteHistory removes the persisted history.
	DeleteHistory(ctx context.Context) error

	LoadTheme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme Theme) error

	Close() error
}
