// Package catalog speaks the Assembly64 browser protocol: line-oriented
// commands over a socket, multi-line responses terminated by a "." line.
package catalog

import "strings"

// PageSize is the fixed number of items requested per page.
const PageSize = 20

// Category is one catalog category with its entry count.
type Category struct {
	Name  string
	Count int
}

// Item is one catalog entry as the browser retains it. List responses also
// carry group, year and file type, which only matter for the detail view
// and are fetched again through Info.
type Item struct {
	ID   int
	Name string
}

// QueryKind tags which kind of query produced a page.
type QueryKind int

const (
	QueryCategory QueryKind = iota
	QueryText
	QueryAdvanced
)

// Query describes how a page was produced, so the next and previous pages
// can be fetched with the same parameters.
type Query struct {
	Kind     QueryKind
	Category string         // QueryCategory: the category path
	Text     string         // QueryText: the free-text query
	Filter   FilterCategory // QueryText: optional category narrowing
	Filters  Filters        // QueryAdvanced
}

// Page is one window of results. Pages replace each other wholesale; the
// client never caches.
type Page struct {
	Items  []Item
	Offset int
	Total  int
	Query  Query
}

// FilterCategory narrows a search to one category.
type FilterCategory int

const (
	CatAll FilterCategory = iota
	CatGames
	CatDemos
	CatMusic
)

var filterCategoryNames = [...]string{"All", "Games", "Demos", "Music"}

func (c FilterCategory) String() string {
	if int(c) < len(filterCategoryNames) {
		return filterCategoryNames[c]
	}
	return "All"
}

// Next cycles to the following category, wrapping at the end.
func (c FilterCategory) Next() FilterCategory {
	return FilterCategory((int(c) + 1) % len(filterCategoryNames))
}

// FileType narrows a search to one file type.
type FileType int

const (
	TypeAny FileType = iota
	TypePRG
	TypeD64
	TypeCRT
	TypeSID
)

var fileTypeNames = [...]string{"Any", "prg", "d64", "crt", "sid"}

func (t FileType) String() string {
	if int(t) < len(fileTypeNames) {
		return fileTypeNames[t]
	}
	return "Any"
}

// Next cycles to the following file type, wrapping at the end.
func (t FileType) Next() FileType {
	return FileType((int(t) + 1) % len(fileTypeNames))
}

// Filters is an advanced search; zero values mean unset.
type Filters struct {
	Category FilterCategory
	Title    string
	Group    string
	Type     FileType
	Top200   bool
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f.Category == CatAll && f.Title == "" && f.Group == "" &&
		f.Type == TypeAny && !f.Top200
}

// Clauses renders the set filters as key=value clauses. Values travel as
// single tokens, so spaces become underscores.
func (f Filters) Clauses() []string {
	var out []string
	if f.Category != CatAll {
		out = append(out, "cat="+f.Category.String())
	}
	if t := strings.TrimSpace(f.Title); t != "" {
		out = append(out, "title="+strings.ReplaceAll(t, " ", "_"))
	}
	if g := strings.TrimSpace(f.Group); g != "" {
		out = append(out, "group="+strings.ReplaceAll(g, " ", "_"))
	}
	if f.Type != TypeAny {
		out = append(out, "type="+f.Type.String())
	}
	if f.Top200 {
		out = append(out, "top200=1")
	}
	return out
}

// InfoField is one label/value pair of an entry's detail record.
type InfoField struct {
	Label string
	Value string
}

// InfoRecord is the ordered detail record for one entry. It is transient:
// the browser discards it on leaving the detail view.
type InfoRecord []InfoField
