package v3pool

// SystemDiff is the set of pool-level changes between two snapshots of a
// Uniswap V3 system: pools newly seen, pools whose dynamic state changed,
// and pool IDs no longer present.
type SystemDiff struct {
	Additions []*Pool  `json:"additions,omitempty"`
	Updates   []*Pool  `json:"updates,omitempty"`
	Deletions []uint64 `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d SystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// poolChanged reports whether any field a swap simulation or price
// derivation depends on differs between old and new: the active tick,
// sqrt price, liquidity, or any per-tick bookkeeping.
func poolChanged(old, new *Pool) bool {
	if old.Tick != new.Tick {
		return true
	}
	if old.SqrtPriceX96.Cmp(new.SqrtPriceX96) != 0 {
		return true
	}
	if old.Liquidity.Cmp(new.Liquidity) != 0 {
		return true
	}

	if len(old.Ticks) != len(new.Ticks) {
		return true
	}

	for index, oldInfo := range old.Ticks {
		newInfo, ok := new.Ticks[index]
		if !ok {
			return true
		}
		if oldInfo.Initialized != newInfo.Initialized {
			return true
		}
		if oldInfo.LiquidityNet.Cmp(newInfo.LiquidityNet) != 0 {
			return true
		}
		if oldInfo.LiquidityGross.Cmp(newInfo.LiquidityGross) != 0 {
			return true
		}
	}

	return false
}

// Differ computes the SystemDiff between two snapshots of a Uniswap V3
// system, keyed on each pool's ID.
func Differ(old, new []*Pool) SystemDiff {
	oldPoolsMap := make(map[uint64]*Pool, len(old))
	for _, pool := range old {
		oldPoolsMap[pool.ID] = pool
	}

	newPoolsMap := make(map[uint64]*Pool, len(new))
	for _, pool := range new {
		newPoolsMap[pool.ID] = pool
	}

	var additions []*Pool
	var updates []*Pool
	var deletions []uint64

	for newID, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[newID]
		if !exists {
			additions = append(additions, newPool)
		} else if poolChanged(oldPool, newPool) {
			updates = append(updates, newPool)
		}
	}

	for oldID := range oldPoolsMap {
		if _, exists := newPoolsMap[oldID]; !exists {
			deletions = append(deletions, oldID)
		}
	}

	return SystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
