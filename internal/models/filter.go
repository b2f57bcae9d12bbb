package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FilterState is the current set of user-chosen constraints narrowing the
// visible record set. An empty set or unset range for a dimension means
// "no constraint on this dimension". The state is a value object: every
// user edit replaces it wholesale, it is never mutated in place.
type FilterState struct {
	DateFrom   *time.Time `json:"dateFrom,omitempty"`
	DateTo     *time.Time `json:"dateTo,omitempty"`
	Customers  []string   `json:"customers,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Tiers      []string   `json:"tiers,omitempty"`
	MinAmount  *float64   `json:"minAmount,omitempty"`
	MaxAmount  *float64   `json:"maxAmount,omitempty"`
	Search     string     `json:"search,omitempty"`
}

// IsEmpty reports whether no dimension is constrained.
func (f FilterState) IsEmpty() bool {
	return f.DateFrom == nil && f.DateTo == nil &&
		len(f.Customers) == 0 && len(f.Categories) == 0 && len(f.Tiers) == 0 &&
		f.MinAmount == nil && f.MaxAmount == nil && f.Search == ""
}

// CacheKey returns a deterministic string representation of the state,
// suitable for keying cached view aggregates. Set order does not matter.
func (f FilterState) CacheKey() string {
	var b strings.Builder
	if f.DateFrom != nil {
		fmt.Fprintf(&b, "from=%s;", f.DateFrom.Format("2006-01-02"))
	}
	if f.DateTo != nil {
		fmt.Fprintf(&b, "to=%s;", f.DateTo.Format("2006-01-02"))
	}
	if len(f.Customers) > 0 {
		fmt.Fprintf(&b, "cust=%s;", sortedJoin(f.Customers))
	}
	if len(f.Categories) > 0 {
		fmt.Fprintf(&b, "cat=%s;", sortedJoin(f.Categories))
	}
	if len(f.Tiers) > 0 {
		fmt.Fprintf(&b, "tier=%s;", sortedJoin(f.Tiers))
	}
	if f.MinAmount != nil {
		fmt.Fprintf(&b, "min=%g;", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		fmt.Fprintf(&b, "max=%g;", *f.MaxAmount)
	}
	if f.Search != "" {
		fmt.Fprintf(&b, "q=%s;", strings.ToLower(f.Search))
	}
	if b.Len() == 0 {
		return "all"
	}
	return b.String()
}

func sortedJoin(values []string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
