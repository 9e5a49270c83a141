// Package v3pool replicates a single Uniswap V3 concentrated-liquidity pool
// off-chain by replaying its mint/burn/swap logs, and simulates exact-input
// swaps against that replica bit-for-bit identically to the on-chain
// reference implementation.
package v3pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/v3pool/tickbitmap"
)

// TickInfo is the per-tick liquidity bookkeeping needed to walk the tick
// bitmap during a swap. Fee-growth and oracle accumulators tracked on-chain
// are intentionally not replicated; only the fields the swap loop and
// mutator consume are kept.
type TickInfo struct {
	LiquidityGross *big.Int `json:"liquidityGross"`
	LiquidityNet   *big.Int `json:"liquidityNet"`
	Initialized    bool     `json:"initialized"`
}

func newTickInfo() *TickInfo {
	return &TickInfo{
		LiquidityGross: new(big.Int),
		LiquidityNet:   new(big.Int),
	}
}

func (t *TickInfo) clone() *TickInfo {
	return &TickInfo{
		LiquidityGross: new(big.Int).Set(t.LiquidityGross),
		LiquidityNet:   new(big.Int).Set(t.LiquidityNet),
		Initialized:    t.Initialized,
	}
}

// Pool is the off-chain replica of a single Uniswap V3 pool. A zero-value
// Pool is not usable; construct one with NewFromAddress or by hydrating a
// Pool built from NewEmptyPoolFromLog.
type Pool struct {
	ID      uint64         `json:"id"`
	Address common.Address `json:"address"`

	Token0         common.Address `json:"token0"`
	Token0Decimals uint8          `json:"token0Decimals"`
	Token1         common.Address `json:"token1"`
	Token1Decimals uint8          `json:"token1Decimals"`

	Fee         uint32 `json:"fee"`
	Tick        int32  `json:"tick"`
	TickSpacing int32  `json:"tickSpacing"`

	Liquidity    *big.Int `json:"liquidity"`
	SqrtPriceX96 *big.Int `json:"sqrtPriceX96"`

	// Ticks holds an entry for each tick touched by a mint or burn; a burn
	// that brings a tick's liquidity_gross back to zero removes its entry.
	Ticks map[int32]*TickInfo `json:"ticks"`

	// TickBitmap marks which compressed tick positions have an entry in
	// Ticks, packed 256 bits to a word the same way the on-chain
	// TickBitmap library does.
	TickBitmap tickbitmap.Map `json:"tickBitmap"`
}

// dataIsPopulated reports whether both token addresses have been
// discovered, mirroring the on-chain pool's token0/token1 invariant.
func (p *Pool) dataIsPopulated() bool {
	var zero common.Address
	return p.Token0 != zero && p.Token1 != zero
}

// tokenOut returns the counterparty token for a swap whose input is tokenIn.
func (p *Pool) tokenOut(tokenIn common.Address) common.Address {
	if p.Token0 == tokenIn {
		return p.Token1
	}
	return p.Token0
}

// Clone returns a deep copy of the pool: every *big.Int, the Ticks map and
// its TickInfo values, and the TickBitmap are independent from the
// original's backing memory.
func (p *Pool) Clone() *Pool {
	clone := *p
	clone.Liquidity = new(big.Int).Set(p.Liquidity)
	clone.SqrtPriceX96 = new(big.Int).Set(p.SqrtPriceX96)

	if p.Ticks != nil {
		clone.Ticks = make(map[int32]*TickInfo, len(p.Ticks))
		for tick, info := range p.Ticks {
			clone.Ticks[tick] = info.clone()
		}
	}

	if p.TickBitmap != nil {
		clone.TickBitmap = make(tickbitmap.Map, len(p.TickBitmap))
		for word, bits := range p.TickBitmap {
			cp := make([]uint64, len(bits))
			copy(cp, bits)
			clone.TickBitmap[word] = cp
		}
	}

	return &clone
}
