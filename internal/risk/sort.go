package risk

import "sort"

// SortResults sorts results by tier (critical first, untiered last),
// then by scale ID ascending.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		oi := results[i].Tier.order()
		oj := results[j].Tier.order()
		if oi != oj {
			return oi < oj
		}
		return results[i].Scale < results[j].Scale
	})
}
