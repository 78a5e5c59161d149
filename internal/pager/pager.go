// Package pager computes page windows over dynamically-sized collections.
//
// Resolve takes a single total-count snapshot and derives the clamped page,
// slice bounds, and navigation affordances from it in one shot. Callers must
// count once per render and reuse the result; taking a second count between
// clamping and slicing reintroduces the race this package exists to avoid.
package pager

import "unicode/utf8"

// Page is one resolved window of a collection.
type Page struct {
	Number   int  // clamped 1-based page index
	Offset   int  // slice start, (Number-1)*Limit
	Limit    int  // page size
	LastPage int  // index of the last page (1 for an empty collection)
	HasPrev  bool // a previous page exists
	HasNext  bool // a next page exists
}

// Resolve clamps a requested 1-based page index against a collection of
// total elements and a fixed page size. Requests below 1 land on page 1;
// requests past the end land on the last page. An empty collection resolves
// to a single empty page with no navigation.
func Resolve(total, requested, size int) Page {
	if size < 1 {
		size = 1
	}

	lastPage := (total + size - 1) / size
	if lastPage < 1 {
		lastPage = 1
	}

	page := requested
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	return Page{
		Number:   page,
		Offset:   (page - 1) * size,
		Limit:    size,
		LastPage: lastPage,
		HasPrev:  page > 1,
		HasNext:  page < lastPage,
	}
}

// Ellipsis truncates text to at most max characters, replacing the tail
// with "..." when it does not fit. Counts runes, not bytes.
func Ellipsis(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	return string(runes[:max-3]) + "..."
}
