package pagination

import "reflect"

const (
	// DefaultPage is used when callers pass a page below 1.
	DefaultPage = 1
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 5
)

// PageEnvelope is the result of slicing a sequence into one page. Total and
// TotalPages always describe the full input, whatever page was requested.
type PageEnvelope[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Data       []T `json:"data"`
}

// Paginate slices items into the requested 1-based page. A page past the end
// yields an empty Data slice, never an error. The input is not mutated.
//
// Compatibility quirk, kept on purpose: duplicate values are collapsed within
// the returned page slice only, while Total/TotalPages still count every input
// element, so a page can hold fewer than PerPage distinct values. Element
// types that are not comparable (derived views holding slices) are passed
// through untouched.
func Paginate[T any](items []T, page, perPage int) PageEnvelope[T] {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	offset := (page - 1) * perPage
	end := offset + perPage
	if offset > len(items) {
		offset = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return PageEnvelope[T]{
		Page:       page,
		PerPage:    perPage,
		Total:      len(items),
		TotalPages: ceilDiv(len(items), perPage),
		Data:       dedupe(items[offset:end]),
	}
}

func ceilDiv(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func dedupe[T any](window []T) []T {
	out := make([]T, 0, len(window))
	if !reflect.TypeFor[T]().Comparable() {
		return append(out, window...)
	}
	seen := make(map[any]struct{}, len(window))
	for _, item := range window {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
