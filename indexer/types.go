package indexer

import (
	"github.com/ethereum/go-ethereum/common"

	v3pool "github.com/defistate/v3pool"
)

// IndexedUniswapV3 provides a unified, read-only view of a set of Uniswap V3
// pool replicas, indexed for O(1) lookup by ID or by contract address.
type IndexedUniswapV3 interface {
	GetByID(id uint64) (*v3pool.Pool, bool)
	GetByAddress(address common.Address) (*v3pool.Pool, bool)
	All() []*v3pool.Pool
}
