package indexer

import (
	"github.com/ethereum/go-ethereum/common"

	v3pool "github.com/defistate/v3pool"
)

// Indexer builds an IndexedUniswapV3 view from a raw slice of pools.
type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed Uniswap V3 system from a raw slice of pools.
func (i *Indexer) Index(pools []*v3pool.Pool) IndexedUniswapV3 {
	return NewIndexableUniswapV3System(pools)
}

// IndexableUniswapV3System provides fast, indexed access to Uniswap V3 pool data.
type IndexableUniswapV3System struct {
	byID      map[uint64]*v3pool.Pool
	byAddress map[common.Address]*v3pool.Pool
	all       []*v3pool.Pool
}

// NewIndexableUniswapV3System creates a new indexed Uniswap V3 system.
func NewIndexableUniswapV3System(pools []*v3pool.Pool) *IndexableUniswapV3System {
	byID := make(map[uint64]*v3pool.Pool, len(pools))
	byAddress := make(map[common.Address]*v3pool.Pool, len(pools))

	for _, p := range pools {
		byID[p.ID] = p
		byAddress[p.Address] = p
	}

	return &IndexableUniswapV3System{
		byID:      byID,
		byAddress: byAddress,
		all:       pools,
	}
}

// GetByID retrieves a pool by its unique ID.
func (ius *IndexableUniswapV3System) GetByID(id uint64) (*v3pool.Pool, bool) {
	p, ok := ius.byID[id]
	return p, ok
}

// GetByAddress retrieves a pool by its contract address.
func (ius *IndexableUniswapV3System) GetByAddress(address common.Address) (*v3pool.Pool, bool) {
	p, ok := ius.byAddress[address]
	return p, ok
}

// All returns a defensive copy of the slice of all pools.
func (ius *IndexableUniswapV3System) All() []*v3pool.Pool {
	allCopy := make([]*v3pool.Pool, len(ius.all))
	copy(allCopy, ius.all)
	return allCopy
}
