// Package filter narrows the in-memory dataset by a composable filter
// state, either synchronously or in cooperative chunks.
package filter

import (
	"strings"

	"github.com/agridash/dealer-insights/internal/models"
)

// Matches reports whether a record satisfies every active dimension of the
// filter state. Dimensions are ANDed; a multi-value dimension matches if
// the record's value is any of the accepted ones. Evaluation short-circuits
// on the first failing dimension.
//
// The Tiers dimension is not evaluated here: a record carries no tier, the
// assignment is derived from dealer aggregates, so the dashboard service
// scopes by tier after the record-level pass.
func Matches(r models.NormalizedRecord, f models.FilterState) bool {
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	if len(f.Customers) > 0 && !containsFold(f.Customers, r.CustomerName) {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, string(r.Category)) {
		return false
	}
	if f.MinAmount != nil && r.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && r.Amount > *f.MaxAmount {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.CustomerName), term) &&
			!strings.Contains(r.ItemNameCleaned, term) &&
			!strings.Contains(strings.ToLower(r.ItemName), term) {
			return false
		}
	}
	return true
}

// Apply filters synchronously in one pass, preserving input order. The
// chunked pipeline produces exactly the same output; chunking is a
// responsiveness optimization, not a correctness requirement.
func Apply(records []models.NormalizedRecord, f models.FilterState) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(accepted []string, value string) bool {
	for _, a := range accepted {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}
