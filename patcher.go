package v3pool

// Patcher constructs the next state of a Uniswap V3 system by applying a
// SystemDiff to the previous state, deep-copying every pool so the result
// shares no memory with either input.
func Patcher(prevState []*Pool, diff SystemDiff) ([]*Pool, error) {
	newStateMap := make(map[uint64]*Pool, len(prevState))
	for _, pool := range prevState {
		newStateMap[pool.ID] = pool.Clone()
	}

	for _, poolIDToDelete := range diff.Deletions {
		delete(newStateMap, poolIDToDelete)
	}

	for _, updatedPool := range diff.Updates {
		newStateMap[updatedPool.ID] = updatedPool.Clone()
	}

	for _, addedPool := range diff.Additions {
		newStateMap[addedPool.ID] = addedPool.Clone()
	}

	finalState := make([]*Pool, 0, len(newStateMap))
	for _, pool := range newStateMap {
		finalState = append(finalState, pool)
	}

	return finalState, nil
}
