// Package query filters, sorts and paginates part collections for the
// listing endpoints. Everything here is pure: no I/O, no shared state.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"partpal/internal/domain"
)

// Page is one slice of a listing plus the metadata needed to request the rest.
type Page struct {
	Items      []domain.Part `json:"items"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// List filters parts, sorts the whole filtered set, then cuts the requested
// page. The input slice is never reordered.
func List(parts []domain.Part, p Params) Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	matched := Filter(parts, p)
	Sort(matched, p.Sort)

	total := len(matched)
	return Page{
		Items:      Paginate(matched, p.Page, p.PageSize),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: (total + p.PageSize - 1) / p.PageSize,
	}
}

// Filter returns a new slice holding the parts that satisfy every filter in p.
func Filter(parts []domain.Part, p Params) []domain.Part {
	needle := strings.ToLower(p.Search)
	out := make([]domain.Part, 0, len(parts))
	for _, part := range parts {
		if matches(part, p, needle) {
			out = append(out, part)
		}
	}
	return out
}

func matches(part domain.Part, p Params, needle string) bool {
	if needle != "" && !matchesText(part, needle) {
		return false
	}
	if p.CategoryID != "" && part.CategoryID != p.CategoryID {
		return false
	}
	if p.VehicleID != "" && part.VehicleID != p.VehicleID {
		return false
	}
	if len(p.Statuses) > 0 && !contains(p.Statuses, part.Status) {
		return false
	}
	if len(p.Conditions) > 0 && !contains(p.Conditions, part.Condition) {
		return false
	}
	if p.PriceMin != nil && part.Price < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && part.Price > *p.PriceMax {
		return false
	}
	if p.Listed != nil && part.Listed != *p.Listed {
		return false
	}
	return true
}

func matchesText(part domain.Part, needle string) bool {
	if strings.Contains(strings.ToLower(part.Name), needle) ||
		strings.Contains(strings.ToLower(part.Description), needle) {
		return true
	}
	return part.PartNumber != nil && strings.Contains(strings.ToLower(*part.PartNumber), needle)
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Sort orders parts in place. Ties keep their relative order; an unknown key
// leaves the slice untouched.
func Sort(parts []domain.Part, key SortKey) {
	var less func(a, b domain.Part) bool
	switch key {
	case SortNewest:
		less = func(a, b domain.Part) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortOldest:
		less = func(a, b domain.Part) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortName:
		// Collators keep scratch buffers, so each call gets its own.
		col := collate.New(language.English, collate.Loose)
		less = func(a, b domain.Part) bool { return col.CompareString(a.Name, b.Name) < 0 }
	case SortPriceAsc:
		less = func(a, b domain.Part) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b domain.Part) bool { return a.Price > b.Price }
	default:
		return
	}
	sort.SliceStable(parts, func(i, j int) bool { return less(parts[i], parts[j]) })
}

// Paginate returns the 1-based page of size records. Pages past the end are
// empty, not an error.
func Paginate(parts []domain.Part, page, size int) []domain.Part {
	if page < 1 || size < 1 || page-1 > len(parts)/size {
		return []domain.Part{}
	}
	offset := (page - 1) * size
	if offset >= len(parts) {
		return []domain.Part{}
	}
	end := offset + size
	if end > len(parts) {
		end = len(parts)
	}
	return parts[offset:end]
}
