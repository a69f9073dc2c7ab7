// internal/domain/scheme/engine_test.go
package scheme

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/distribution-backend/internal/domain/distributor"
)

var (
	schemeStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	schemeEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	evalDate    = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
)

func globalScheme(id uint, buySKU uint, buyQty int, getSKU uint, getQty int) Scheme {
	return Scheme{
		ID:        id,
		BuySKUID:  buySKU,
		BuyQty:    buyQty,
		GetSKUID:  getSKU,
		GetQty:    getQty,
		StartDate: schemeStart,
		EndDate:   schemeEnd,
		Scope:     ScopeGlobal,
	}
}

func TestComputeFreebiesSingleThreshold(t *testing.T) {
	dist := &distributor.Distributor{ID: 1}
	schemes := []Scheme{globalScheme(1, 10, 100, 20, 10)}

	freebies := ComputeFreebies(dist, schemes, map[uint]int{10: 100}, evalDate)
	assert.Equal(t, map[uint]int{20: 10}, freebies)

	freebies = ComputeFreebies(dist, schemes, map[uint]int{10: 250}, evalDate)
	assert.Equal(t, map[uint]int{20: 20}, freebies)

	freebies = ComputeFreebies(dist, schemes, map[uint]int{10: 99}, evalDate)
	assert.Empty(t, freebies)
}

func TestComputeFreebiesRemainderCarriesDown(t *testing.T) {
	dist := &distributor.Distributor{ID: 1}
	schemes := []Scheme{
		globalScheme(1, 10, 100, 20, 10),
		globalScheme(2, 10, 10, 21, 1),
	}

	// 250 = 2x100 (20 of SKU 20) with remainder 50 = 5x10 (5 of SKU 21)
	freebies := ComputeFreebies(dist, schemes, map[uint]int{10: 250}, evalDate)
	assert.Equal(t, map[uint]int{20: 20, 21: 5}, freebies)
}

func TestComputeFreebiesAccumulatesSameRewardSKU(t *testing.T) {
	dist := &distributor.Distributor{ID: 1}
	schemes := []Scheme{
		globalScheme(1, 10, 100, 20, 10),
		globalScheme(2, 11, 50, 20, 5),
	}

	freebies := ComputeFreebies(dist, schemes, map[uint]int{10: 100, 11: 50}, evalDate)
	assert.Equal(t, map[uint]int{20: 15}, freebies)
}

func TestComputeFreebiesScopeFiltering(t *testing.T) {
	storeID := uint(7)
	otherStore := uint(8)
	distID := uint(3)

	storeScheme := globalScheme(1, 10, 10, 20, 1)
	storeScheme.Scope = ScopeStore
	storeScheme.StoreID = &storeID

	otherStoreScheme := globalScheme(2, 10, 10, 21, 1)
	otherStoreScheme.Scope = ScopeStore
	otherStoreScheme.StoreID = &otherStore

	distScheme := globalScheme(3, 10, 20, 22, 1)
	distScheme.Scope = ScopeDistributor
	distScheme.DistributorID = &distID

	schemes := []Scheme{storeScheme, otherStoreScheme, distScheme}

	// Distributor attached to store 7 without the special scheme flag: only
	// the store scheme applies; the other store's scheme never does.
	dist := &distributor.Distributor{ID: distID, StoreID: &storeID}
	freebies := ComputeFreebies(dist, schemes, map[uint]int{10: 10}, evalDate)
	assert.Equal(t, map[uint]int{20: 1}, freebies)

	// Special-scheme distributors additionally earn their targeted scheme,
	// whose larger threshold consumes the quantity first.
	dist.SpecialScheme = true
	freebies = ComputeFreebies(dist, schemes, map[uint]int{10: 20}, evalDate)
	assert.Equal(t, map[uint]int{22: 1}, freebies)
}

func TestComputeFreebiesDistributorScopeRequiresFlag(t *testing.T) {
	distID := uint(3)
	sc := globalScheme(1, 10, 10, 20, 1)
	sc.Scope = ScopeDistributor
	sc.DistributorID = &distID

	dist := &distributor.Distributor{ID: distID, SpecialScheme: false}
	freebies := ComputeFreebies(dist, []Scheme{sc}, map[uint]int{10: 100}, evalDate)
	assert.Empty(t, freebies)

	dist.SpecialScheme = true
	freebies = ComputeFreebies(dist, []Scheme{sc}, map[uint]int{10: 100}, evalDate)
	assert.Equal(t, map[uint]int{20: 10}, freebies)
}

func TestComputeFreebiesExcludesInactiveSchemes(t *testing.T) {
	dist := &distributor.Distributor{ID: 1}

	expired := globalScheme(1, 10, 10, 20, 1)
	expired.EndDate = evalDate.AddDate(0, -1, 0)

	notStarted := globalScheme(2, 10, 10, 21, 1)
	notStarted.StartDate = evalDate.AddDate(0, 1, 0)

	stoppedAt := evalDate.AddDate(0, -1, 0)
	stopped := globalScheme(3, 10, 10, 22, 1)
	stopped.StoppedAt = &stoppedAt

	freebies := ComputeFreebies(dist, []Scheme{expired, notStarted, stopped}, map[uint]int{10: 100}, evalDate)
	assert.Empty(t, freebies)
}

func TestComputeFreebiesDeduplicatesById(t *testing.T) {
	dist := &distributor.Distributor{ID: 1}
	sc := globalScheme(1, 10, 10, 20, 1)

	freebies := ComputeFreebies(dist, []Scheme{sc, sc}, map[uint]int{10: 10}, evalDate)
	assert.Equal(t, map[uint]int{20: 1}, freebies)
}
