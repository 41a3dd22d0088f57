package state

import (
	"context"
	"fmt"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ThemeStore keeps the theme preference in the ThemeKey slot. It never expires.
type ThemeStore struct {
	store Store
}

func NewThemeStore(store Store) *ThemeStore {
	return &ThemeStore{store: store}
}

// Get returns the saved theme, or fallback when nothing valid is stored.
func (t *ThemeStore) Get(ctx context.Context, fallback Theme) Theme {
	raw, err := t.store.Get(ctx, ThemeKey)
	if err != nil {
		return fallback
	}
	switch Theme(raw) {
	case ThemeDark, ThemeLight:
		return Theme(raw)
	}
	return fallback
}

func (t *ThemeStore) Set(ctx context.Context, theme Theme) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return t.store.Set(ctx, ThemeKey, string(theme), 0)
}

// Toggle flips the saved theme and returns the new value.
func (t *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := ThemeLight
	if t.Get(ctx, ThemeDark) == ThemeLight {
		next = ThemeDark
	}
	return next, t.Set(ctx, next)
}
