package dataset

import "slices"

// sortByCategoryOrder orders records by the declared size and quant
// category order, keeping the relative order of equal keys.
func sortByCategoryOrder(recs []RunRecord) {
	slices.SortStableFunc(recs, func(a, b RunRecord) int {
		if d := a.Size.Index() - b.Size.Index(); d != 0 {
			return d
		}
		return a.Quant.Index() - b.Quant.Index()
	})
}
