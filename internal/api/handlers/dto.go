package handlers

import "github.com/wonny/symfx/internal/preferences"

// RateRequest is the body of PUT /api/orders/{quoteId}/rate.
// Rate is free text: anything unparsable becomes 0.0000.
type RateRequest struct {
	Rate string `json:"rate" validate:"max=64"`
}

// ThemeRequest is the body of PUT /api/theme
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// LayoutRequest is the body of PUT /api/layout
type LayoutRequest struct {
	Cols      int                 `json:"cols" validate:"omitempty,eq=12"`
	RowHeight int                 `json:"rowHeight" validate:"omitempty,gte=10,lte=200"`
	Panels    []preferences.Panel `json:"panels" validate:"required,min=1,max=24"`
}

// ThemeResponse reports the current theme
type ThemeResponse struct {
	Theme preferences.Theme `json:"theme"`
}
