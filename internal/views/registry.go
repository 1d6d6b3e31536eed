package views

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dewinglab/coinmatch/internal/record"
)

// RegistryFilter narrows the catalog list. Query is a free-text substring
// match; Mint and Authority are exact facet selections, empty meaning all.
type RegistryFilter struct {
	Query     string
	Mint      string
	Authority string
}

// RegistrySort orders the catalog list.
type RegistrySort struct {
	// ByCatalogNumber sorts on catalog number instead of the display title.
	ByCatalogNumber bool
	Descending      bool
}

var registryCollator = collate.New(language.English, collate.IgnoreCase)

// FilterCoins applies the filter facets. The query matches
// case-insensitively against mint, authority, denomination, date range,
// catalog number, reference list and provenance joined together.
func FilterCoins(coins []record.Coin, f RegistryFilter) []record.Coin {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := []record.Coin{}
	for _, c := range coins {
		if f.Mint != "" && c.Mint != f.Mint {
			continue
		}
		if f.Authority != "" && c.Authority != f.Authority {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(strings.Join([]string{
				c.Mint, c.Authority, c.Denomination, c.DateRange,
				c.CatalogNumber, c.ReferenceList, c.ProvenanceText,
			}, " "))
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// SortCoins orders coins stably with locale-aware, case-insensitive
// comparison. Coins without a catalog number sort after those with one
// when sorting by catalog number.
func SortCoins(coins []record.Coin, s RegistrySort) []record.Coin {
	out := make([]record.Coin, len(coins))
	copy(out, coins)
	key := func(c record.Coin) string {
		if s.ByCatalogNumber {
			return c.CatalogNumber
		}
		return record.CoinTitle(c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if s.ByCatalogNumber {
			if a == "" && b != "" {
				return false
			}
			if a != "" && b == "" {
				return true
			}
		}
		cmp := registryCollator.CompareString(a, b)
		if s.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// Mints returns the distinct mint facet values, sorted.
func Mints(coins []record.Coin) []string {
	return facet(coins, func(c record.Coin) string { return c.Mint })
}

// Authorities returns the distinct authority facet values, sorted.
func Authorities(coins []record.Coin) []string {
	return facet(coins, func(c record.Coin) string { return c.Authority })
}

func facet(coins []record.Coin, key func(record.Coin) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range coins {
		k := key(c)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return registryCollator.CompareString(out[i], out[j]) < 0
	})
	return out
}
