// internal/domain/scheme/engine.go
package scheme

import (
	"sort"
	"time"

	"github.com/your-org/distribution-backend/internal/domain/distributor"
)

// ComputeFreebies evaluates every scheme applicable to the distributor
// against the paid quantities and returns the free quantity earned per
// reward SKU. Only non-zero rewards are present in the result.
//
// For each purchased SKU the candidate schemes are walked in descending
// BuyQty order; each scheme is applied floor(remaining/buyQty) times and the
// remainder carries down to the next smaller threshold, so every purchased
// unit is consumed by at most one threshold tier.
func ComputeFreebies(dist *distributor.Distributor, schemes []Scheme, purchased map[uint]int, asOf time.Time) map[uint]int {
	applicable := applicableSchemes(dist, schemes, asOf)

	byBuySKU := make(map[uint][]Scheme)
	for _, sc := range applicable {
		byBuySKU[sc.BuySKUID] = append(byBuySKU[sc.BuySKUID], sc)
	}

	freebies := make(map[uint]int)
	for skuID, qty := range purchased {
		if qty <= 0 {
			continue
		}

		candidates := byBuySKU[skuID]
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].BuyQty > candidates[j].BuyQty
		})

		remaining := qty
		for _, sc := range candidates {
			if sc.BuyQty <= 0 || remaining < sc.BuyQty {
				continue
			}
			timesApplied := remaining / sc.BuyQty
			freebies[sc.GetSKUID] += timesApplied * sc.GetQty
			remaining = remaining % sc.BuyQty
		}
	}

	for skuID, qty := range freebies {
		if qty <= 0 {
			delete(freebies, skuID)
		}
	}

	return freebies
}

// applicableSchemes filters to active schemes whose scope covers the
// distributor, deduplicated by id.
func applicableSchemes(dist *distributor.Distributor, schemes []Scheme, asOf time.Time) []Scheme {
	seen := make(map[uint]struct{})
	var out []Scheme

	for _, sc := range schemes {
		if !sc.IsActive(asOf) {
			continue
		}

		matches := false
		switch sc.Scope {
		case ScopeGlobal:
			matches = true
		case ScopeStore:
			matches = dist.StoreID != nil && sc.StoreID != nil && *dist.StoreID == *sc.StoreID
		case ScopeDistributor:
			matches = dist.SpecialScheme && sc.DistributorID != nil && *sc.DistributorID == dist.ID
		}
		if !matches {
			continue
		}

		if _, dup := seen[sc.ID]; dup {
			continue
		}
		seen[sc.ID] = struct{}{}
		out = append(out, sc)
	}

	return out
}
