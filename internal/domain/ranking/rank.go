// Package ranking orders the catalog for display. Rank is a pure function
// of the catalog, the query, the usage counters and the hidden set; the
// Pipeline re-evaluates it whenever one of them changes.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

// DefaultHeadSize is the length of the most-used head list.
const DefaultHeadSize = 5

// Input is everything one ranking pass depends on.
type Input struct {
	Catalog  []types.LaunchItem
	Query    string
	Counters map[string]types.Counter
	Hidden   types.IDSet
}

// Result is one ranked list.
type Result struct {
	Items []types.LaunchItem `json:"items"`
	Query string             `json:"query"`
	// SearchEmptyWithQuery is set when a non-blank query matched nothing.
	SearchEmptyWithQuery bool `json:"search_empty_with_query"`
}

// Stamp applies the deprioritized flag from counters to the variants that
// carry one. Other variants are returned unchanged.
func Stamp(catalog []types.LaunchItem, counters map[string]types.Counter) []types.LaunchItem {
	out := make([]types.LaunchItem, len(catalog))
	for i, item := range catalog {
		if d, ok := item.(types.Deprioritizable); ok {
			item = d.WithDeprioritized(counters[item.Info().ID].IsDeprioritized())
		}
		out[i] = item
	}
	return out
}

// Rank filters and orders the catalog:
//  1. stamp deprioritized items
//  2. drop hidden items and items not matching the trimmed query
//  3. head: up to headSize non-deprioritized items by long-term count
//  4. tail: everything else by combined score
//  5. stable re-sort of head ++ tail by actionable notification rank
func Rank(in Input, headSize int) Result {
	return rankStamped(Stamp(in.Catalog, in.Counters), in, headSize)
}

func rankStamped(stamped []types.LaunchItem, in Input, headSize int) Result {
	query := strings.TrimSpace(in.Query)

	filtered := make([]types.LaunchItem, 0, len(stamped))
	for _, item := range stamped {
		if in.Hidden.Has(item.Info().ID) || !item.Matches(query) {
			continue
		}
		filtered = append(filtered, item)
	}

	items := byUsage(filtered, in.Counters, headSize)
	slices.SortStableFunc(items, func(a, b types.LaunchItem) int {
		return cmp.Compare(notificationKey(a), notificationKey(b))
	})

	return Result{
		Items:                items,
		Query:                in.Query,
		SearchEmptyWithQuery: len(items) == 0 && query != "",
	}
}

// byUsage concatenates the most-used head with the combined-score tail.
func byUsage(items []types.LaunchItem, counters map[string]types.Counter, headSize int) []types.LaunchItem {
	counter := func(item types.LaunchItem) types.Counter {
		return counters[item.Info().ID]
	}

	candidates := make([]types.LaunchItem, 0, len(items))
	for _, item := range items {
		if !counter(item).IsDeprioritized() {
			candidates = append(candidates, item)
		}
	}
	slices.SortStableFunc(candidates, func(a, b types.LaunchItem) int {
		return cmp.Compare(counter(b).LongTermRank(), counter(a).LongTermRank())
	})
	head := candidates[:min(max(headSize, 0), len(candidates))]

	inHead := make(map[string]struct{}, len(head))
	for _, item := range head {
		inHead[item.Info().ID] = struct{}{}
	}
	tail := make([]types.LaunchItem, 0, len(items)-len(head))
	for _, item := range items {
		if _, ok := inHead[item.Info().ID]; !ok {
			tail = append(tail, item)
		}
	}
	slices.SortStableFunc(tail, func(a, b types.LaunchItem) int {
		return cmp.Compare(counter(b).CombinedRank(), counter(a).CombinedRank())
	})

	out := make([]types.LaunchItem, 0, len(items))
	out = append(out, head...)
	return append(out, tail...)
}

func notificationKey(item types.LaunchItem) int {
	if rank, ok := item.Info().ActionableRank(); ok {
		return rank
	}
	return math.MaxInt
}
