package orders

import (
	"sort"
)

// View names
const (
	ViewActive  = "active"
	ViewHistory = "history"
)

// View is a filtered, recency-sorted, paginated projection of the store
type View struct {
	Name     string
	States   []State
	PageSize int
}

// Page is one slice of a view
type Page struct {
	View        string  `json:"view"`
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	PageSize    int     `json:"pageSize"`
	Total       int     `json:"total"`
	HasPrev     bool    `json:"hasPrev"`
	HasNext     bool    `json:"hasNext"`
}

// ActiveView shows quotes still awaiting a decision
func ActiveView(pageSize int) View {
	return View{Name: ViewActive, States: []State{StateNew, StateWorking}, PageSize: pageSize}
}

// HistoryView shows decided quotes. states defaults to accepted and cancelled.
func HistoryView(pageSize int, states ...State) View {
	if len(states) == 0 {
		states = []State{StateAccepted, StateCancelled}
	}
	return View{Name: ViewHistory, States: states, PageSize: pageSize}
}

// Includes reports whether an order passes the view's state filter
func (v View) Includes(o Order) bool {
	for _, s := range v.States {
		if o.State == s {
			return true
		}
	}
	return false
}

// Select filters and sorts: createdAt descending, quoteId ascending on ties
func (v View) Select(all []Order) []Order {
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if v.Includes(o) {
			out = append(out, o)
		}
	}
	SortByRecency(out)
	return out
}

// Page derives the requested page, clamping it into [1, totalPages]
func (v View) Page(all []Order, page int) Page {
	selected := v.Select(all)
	size := v.pageSize()
	total := TotalPages(len(selected), size)
	page = clamp(page, 1, total)

	start := (page - 1) * size
	end := start + size
	if start > len(selected) {
		start = len(selected)
	}
	if end > len(selected) {
		end = len(selected)
	}

	return Page{
		View:        v.Name,
		Orders:      selected[start:end],
		CurrentPage: page,
		TotalPages:  total,
		PageSize:    size,
		Total:       len(selected),
		HasPrev:     page > 1,
		HasNext:     page < total,
	}
}

// TotalPages is max(ceil(count/size), 1)
func TotalPages(count, size int) int {
	if size < 1 {
		size = 1
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// SortByRecency sorts in place, newest createdAt first
func SortByRecency(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, tj := list[i].CreatedTime(), list[j].CreatedTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return list[i].QuoteID < list[j].QuoteID
	})
}

func (v View) pageSize() int {
	if v.PageSize < 1 {
		return 1
	}
	return v.PageSize
}

// Pager tracks the current page of one view for one viewer
type Pager struct {
	current int
}

// NewPager starts at page 1
func NewPager() *Pager {
	return &Pager{current: 1}
}

// Current returns the page number
func (p *Pager) Current() int {
	return p.current
}

// Prev moves back one page, never below 1
func (p *Pager) Prev() int {
	p.current = clamp(p.current-1, 1, p.current)
	return p.current
}

// Next moves forward one page, never beyond totalPages
func (p *Pager) Next(totalPages int) int {
	p.current = clamp(p.current+1, 1, totalPages)
	return p.current
}

// Clamp pulls the page back into range after the view shrank
func (p *Pager) Clamp(totalPages int) int {
	p.current = clamp(p.current, 1, totalPages)
	return p.current
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
