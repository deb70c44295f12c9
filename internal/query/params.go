package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"partpal/internal/domain"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortName      SortKey = "name"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 24
	MaxPageSize     = 100
)

var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError names the rejected parameter. It unwraps to ErrInvalidParameter.
type ParamError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// Params is the parsed parts-listing query. Nil pointers mean "no filter".
type Params struct {
	Search     string
	CategoryID string
	VehicleID  string
	Statuses   []domain.PartStatus
	Conditions []domain.PartCondition
	PriceMin   *float64
	PriceMax   *float64
	Listed     *bool
	Sort       SortKey
	Page       int
	PageSize   int
}

// DefaultParams matches every part and returns the first page, newest first.
func DefaultParams() Params {
	return Params{Sort: SortNewest, Page: DefaultPage, PageSize: DefaultPageSize}
}

// Parse maps query-string values onto Params. Multi-value filters accept
// repeated keys, comma-separated values, or both.
func Parse(v url.Values) (Params, error) {
	p := DefaultParams()
	p.Search = strings.TrimSpace(first(v, "search", "q"))
	p.CategoryID = strings.TrimSpace(first(v, "category", "categoryId"))
	p.VehicleID = strings.TrimSpace(first(v, "vehicle", "vehicleId"))

	for _, s := range multi(v, "status") {
		p.Statuses = append(p.Statuses, domain.PartStatus(s))
	}
	for _, s := range multi(v, "condition") {
		p.Conditions = append(p.Conditions, domain.PartCondition(s))
	}

	var err error
	if p.PriceMin, err = parsePrice(v, "minPrice"); err != nil {
		return Params{}, err
	}
	if p.PriceMax, err = parsePrice(v, "maxPrice"); err != nil {
		return Params{}, err
	}
	if p.PriceMin != nil && p.PriceMax != nil && *p.PriceMin > *p.PriceMax {
		return Params{}, &ParamError{Param: "minPrice", Value: v.Get("minPrice"), Reason: "greater than maxPrice"}
	}

	switch strings.ToLower(strings.TrimSpace(v.Get("isListedOnMarketplace"))) {
	case "true":
		t := true
		p.Listed = &t
	case "false":
		f := false
		p.Listed = &f
	}

	if s := strings.TrimSpace(v.Get("sortBy")); s != "" {
		p.Sort = SortKey(s)
	}

	if p.Page, err = parseInt(v, "page", DefaultPage); err != nil {
		return Params{}, err
	}
	if p.PageSize, err = parseInt(v, "pageSize", DefaultPageSize); err != nil {
		return Params{}, err
	}
	if p.PageSize > MaxPageSize {
		return Params{}, &ParamError{Param: "pageSize", Value: v.Get("pageSize"), Reason: fmt.Sprintf("must be at most %d", MaxPageSize)}
	}
	return p, nil
}

func first(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := v.Get(k); s != "" {
			return s
		}
	}
	return ""
}

func multi(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func parseInt(v url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParamError{Param: key, Value: raw, Reason: "not an integer"}
	}
	if n < 1 {
		return 0, &ParamError{Param: key, Value: raw, Reason: "must be at least 1"}
	}
	return n, nil
}

func parsePrice(v url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &ParamError{Param: key, Value: raw, Reason: "not a number"}
	}
	if f < 0 {
		return nil, &ParamError{Param: key, Value: raw, Reason: "must not be negative"}
	}
	return &f, nil
}
