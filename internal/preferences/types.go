package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidTheme  = errors.New("theme must be light or dark")
	ErrInvalidLayout = errors.New("invalid layout")
)

// Theme is the desk's colour scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// DefaultTheme applies when nothing was stored
	DefaultTheme = ThemeLight
)

// ParseTheme accepts exactly "light" or "dark"
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Toggle flips light and dark
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// GridColumns is the width of the trading layout grid
const (
	GridColumns   = 12
	GridRowHeight = 30
)

// Panel is one draggable box on the trading layout page
type Panel struct {
	ID    string `json:"i" yaml:"id" validate:"required,max=64"`
	Title string `json:"title" yaml:"title" validate:"required,max=128"`
	X     int    `json:"x" yaml:"x" validate:"gte=0,lt=12"`
	Y     int    `json:"y" yaml:"y" validate:"gte=0"`
	W     int    `json:"w" yaml:"w" validate:"gte=1,lte=12"`
	H     int    `json:"h" yaml:"h" validate:"gte=1"`
}

// Layout is the saved panel arrangement
type Layout struct {
	Cols      int     `json:"cols" yaml:"cols,omitempty"`
	RowHeight int     `json:"rowHeight" yaml:"row_height,omitempty"`
	Panels    []Panel `json:"panels" yaml:"panels" validate:"required,min=1,dive"`
}

// DefaultLayout is the arrangement a new user starts with
func DefaultLayout() Layout {
	return Layout{
		Cols:      GridColumns,
		RowHeight: GridRowHeight,
		Panels: []Panel{
			{ID: "panel1", Title: "Market Overview", X: 0, Y: 0, W: 4, H: 4},
			{ID: "panel2", Title: "Order Book", X: 4, Y: 0, W: 4, H: 4},
			{ID: "panel3", Title: "Trade History", X: 8, Y: 0, W: 4, H: 4},
		},
	}
}

var validate = validator.New()

// Validate checks tags, grid bounds and unique panel ids
func (l Layout) Validate() error {
	if err := validate.Struct(l); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %s", ErrInvalidLayout, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	seen := make(map[string]struct{}, len(l.Panels))
	for _, p := range l.Panels {
		if p.X+p.W > GridColumns {
			return fmt.Errorf("%w: panel %s overflows %d columns", ErrInvalidLayout, p.ID, GridColumns)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate panel %s", ErrInvalidLayout, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// normalized fills grid constants the client may omit
func (l Layout) normalized() Layout {
	l.Cols = GridColumns
	if l.RowHeight <= 0 {
		l.RowHeight = GridRowHeight
	}
	return l
}

// Store persists per-user preferences. Reads of a user with nothing
// stored return the defaults, not an error.
type Store interface {
	Theme(ctx context.Context, user string) (Theme, error)
	SetTheme(ctx context.Context, user string, theme Theme) error
	Layout(ctx context.Context, user string) (Layout, error)
	SetLayout(ctx context.Context, user string, layout Layout) error
}
