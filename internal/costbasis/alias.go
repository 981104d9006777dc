package costbasis

import "slices"

// Aliases lists identifiers that denote the same economic instrument, e.g. after a re-listing.
// Keys map to every other identifier of the instrument; lookups work in both directions.
type Aliases map[string][]string

// Same reports whether figi belongs to the instrument identified by target.
func (a Aliases) Same(target, figi string) bool {
	if figi == target {
		return true
	}
	return slices.Contains(a[target], figi) || slices.Contains(a[figi], target)
}
