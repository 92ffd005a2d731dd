package menu

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/leoassist/leo/utils"
)

const searchCacheSize = 128

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Filter keeps the items matching every whitespace-separated token of
// query. A token matches when a keyword contains it, it contains a
// keyword, or the description contains it. An empty query keeps all.
func Filter(items []Item, query string) []Item {
	q := normalize(query)
	if q == "" {
		out := make([]Item, len(items))
		copy(out, items)
		return out
	}

	tokens := strings.Fields(q)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if matchesAll(item, tokens) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll(item Item, tokens []string) bool {
	description := strings.ToLower(item.Description)
	for _, token := range tokens {
		matched := strings.Contains(description, token)
		for _, keyword := range item.Keywords {
			if matched {
				break
			}
			k := strings.ToLower(keyword)
			matched = strings.Contains(k, token) || strings.Contains(token, k)
		}
		if !matched {
			return false
		}
	}
	return true
}

// Score ranks item against the whole trimmed query: +10 for an exact
// keyword, +5 for a keyword containing it, +3 for the description.
func Score(item Item, query string) int {
	q := normalize(query)
	if q == "" {
		return 0
	}

	var exact, partial bool
	for _, keyword := range item.Keywords {
		k := strings.ToLower(keyword)
		if k == q {
			exact = true
		}
		if strings.Contains(k, q) {
			partial = true
		}
	}

	score := 0
	if exact {
		score += 10
	}
	if partial {
		score += 5
	}
	if strings.Contains(strings.ToLower(item.Description), q) {
		score += 3
	}
	return score
}

// Rank filters items and orders them by descending score. Ties keep
// their menu order.
func Rank(items []Item, query string) []Item {
	filtered := Filter(items, query)
	if normalize(query) == "" {
		return filtered
	}

	scores := make(map[string]int, len(filtered))
	for _, item := range filtered {
		scores[item.ID] = Score(item, query)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return scores[filtered[i].ID] > scores[filtered[j].ID]
	})
	return filtered
}

// Searcher memoizes ranked results per normalized query.
type Searcher struct {
	items []Item
	cache *lru.Cache[string, []Item]
}

func NewSearcher(items []Item) *Searcher {
	cache, err := lru.New[string, []Item](searchCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &Searcher{items: items, cache: cache}
}

var defaultSearcher = NewSearcher(defaultItems)

// Search ranks the default menu for query.
func Search(query string) []Item {
	return defaultSearcher.Search(query)
}

func (s *Searcher) Search(query string) []Item {
	key := normalize(query)
	if cached, ok := s.cache.Get(key); ok {
		utils.Verbose("menu search cache hit for %q", key)
		return clone(cached)
	}

	ranked := Rank(s.items, key)
	s.cache.Add(key, ranked)
	return clone(ranked)
}

// Len reports the number of cached queries.
func (s *Searcher) Len() int {
	return s.cache.Len()
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
