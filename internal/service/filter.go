package service

import (
	"github.com/noorhashem/devflow-backend/internal/apperr"
)

// Filter selects the ordering of an answer listing. It is a closed set:
// unknown values are rejected at the validation boundary instead of silently
// falling through to a default ordering.
type Filter string

const (
	FilterDefault Filter = ""
	FilterLatest  Filter = "latest"
	FilterOldest  Filter = "oldest"
	FilterPopular Filter = "popular"
)

func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(raw); f {
	case FilterDefault, FilterLatest, FilterOldest, FilterPopular:
		return f, nil
	default:
		return FilterDefault, apperr.Validation("unknown filter: " + raw)
	}
}

func (f Filter) orderClause() string {
	switch f {
	case FilterOldest:
		return "created_at asc"
	case FilterPopular:
		return "upvotes desc"
	default:
		return "created_at desc"
	}
}
