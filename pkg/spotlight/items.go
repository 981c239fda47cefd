// Package spotlight ranks free-text labels against a loosely typed query.
package spotlight

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Item is a rankable entry; Key identifies it to the caller.
type Item struct {
	Key   string
	Label string
}

func NewItem(key, label string) Item {
	return Item{Key: key, Label: label}
}

// Items is an ordered collection searched with fuzzy matching.
type Items struct {
	items []Item
}

func (it *Items) Add(items ...Item) {
	it.items = append(it.items, items...)
}

func (it *Items) Len() int {
	return len(it.items)
}

// Find returns items whose label fuzzily contains q (case and accent insensitive),
// best matches first, at most limit items when limit > 0.
func (it *Items) Find(q string, limit int) []Item {
	q = strings.TrimSpace(q)
	if q == "" || len(it.items) == 0 {
		return nil
	}
	words := make([]string, len(it.items))
	for i, item := range it.items {
		words[i] = item.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(q, words)
	sort.Stable(ranks)

	result := make([]Item, 0, len(ranks))
	for _, rank := range ranks {
		result = append(result, it.items[rank.OriginalIndex])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}
