package domain

import (
	"strings"
	"unicode/utf8"
)

// CatalogItem is an item as listed by a catalog source.
// Items are identified by ID; the other fields are informational.
type CatalogItem struct {
	// ID is the catalog's identifier for the item.
	ID string `json:"id"`

	// Name is the display name as published by the catalog.
	Name string `json:"name"`

	// DetailURL links to the item's page in the catalog.
	DetailURL string `json:"detailUrl"`
}

// Recent projects a catalog item into its stored form.
func (c CatalogItem) Recent() RecentItem {
	return RecentItem{
		ID:   c.ID,
		Name: c.Name,
		URL:  c.DetailURL,
	}
}

// RecentItem is the stored and displayed form of a catalog item.
// Field names are part of the stored document format.
type RecentItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DisplayName keeps the first letter of the name and lower-cases the rest.
// Catalog feeds tend to publish names in capitals.
func (r RecentItem) DisplayName() string {
	if r.Name == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(r.Name)
	return r.Name[:size] + strings.ToLower(r.Name[size:])
}

func cloneItems(items []RecentItem) []RecentItem {
	if items == nil {
		return nil
	}
	out := make([]RecentItem, len(items))
	copy(out, items)
	return out
}
