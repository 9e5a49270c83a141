package v3pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/v3pool/swapmath"
	"github.com/defistate/v3pool/tickbitmap"
	"github.com/defistate/v3pool/tickmath"
)

var (
	minSqrtRatioPlusOne  = new(big.Int).Add(tickmath.MIN_SQRT_RATIO, big.NewInt(1))
	maxSqrtRatioMinusOne = new(big.Int).Sub(tickmath.MAX_SQRT_RATIO, big.NewInt(1))
)

// swapState is the transient state threaded through the swap-stepping loop.
type swapState struct {
	sqrtPriceX96             *big.Int
	amountCalculated         *big.Int
	amountSpecifiedRemaining *big.Int
	tick                     int32
	liquidity                *big.Int
}

// swapStep is the per-iteration scratch space for a single tick segment.
type swapStep struct {
	sqrtPriceStartX96 *big.Int
	tickNext          int32
	initialized       bool
	sqrtPriceNextX96  *big.Int
	amountIn          *big.Int
	amountOut         *big.Int
	feeAmount         *big.Int
}

// SimulateSwap computes the exact output amount for an exact-input swap of
// amountIn of tokenIn, without mutating the pool. Zero input returns zero.
func (p *Pool) SimulateSwap(tokenIn common.Address, amountIn *big.Int) (*big.Int, error) {
	if amountIn.Sign() == 0 {
		return new(big.Int), nil
	}
	state, err := p.runSwap(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Neg(state.amountCalculated), nil
}

// SimulateSwapMut computes the exact output amount for an exact-input swap
// and commits the resulting sqrt price, liquidity and tick to the pool.
func (p *Pool) SimulateSwapMut(tokenIn common.Address, amountIn *big.Int) (*big.Int, error) {
	if amountIn.Sign() == 0 {
		return new(big.Int), nil
	}
	state, err := p.runSwap(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}

	p.Liquidity = state.liquidity
	p.SqrtPriceX96 = state.sqrtPriceX96
	p.Tick = state.tick

	return new(big.Int).Neg(state.amountCalculated), nil
}

// runSwap walks ticks from the pool's current price, consuming
// amountSpecifiedRemaining one tick segment at a time, until either the
// entire input has been consumed or the price has reached its limit.
func (p *Pool) runSwap(tokenIn common.Address, amountIn *big.Int) (*swapState, error) {
	zeroForOne := tokenIn == p.Token0

	sqrtPriceLimitX96 := maxSqrtRatioMinusOne
	if zeroForOne {
		sqrtPriceLimitX96 = minSqrtRatioPlusOne
	}

	state := &swapState{
		sqrtPriceX96:             new(big.Int).Set(p.SqrtPriceX96),
		amountCalculated:         new(big.Int),
		amountSpecifiedRemaining: new(big.Int).Set(amountIn),
		tick:                     p.Tick,
		liquidity:                new(big.Int).Set(p.Liquidity),
	}

	for state.amountSpecifiedRemaining.Sign() != 0 && state.sqrtPriceX96.Cmp(sqrtPriceLimitX96) != 0 {
		step := &swapStep{
			sqrtPriceStartX96: new(big.Int).Set(state.sqrtPriceX96),
			sqrtPriceNextX96:  new(big.Int),
			amountIn:          new(big.Int),
			amountOut:         new(big.Int),
			feeAmount:         new(big.Int),
		}

		tickNext, initialized := tickbitmap.NextInitializedTickWithinOneWord(p.TickBitmap, state.tick, p.TickSpacing, zeroForOne)
		step.tickNext = clampTick(tickNext)
		step.initialized = initialized

		if err := tickmath.GetSqrtRatioAtTick(step.sqrtPriceNextX96, step.tickNext); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArithmetic, err)
		}

		swapTargetSqrtRatio := step.sqrtPriceNextX96
		if zeroForOne {
			if step.sqrtPriceNextX96.Cmp(sqrtPriceLimitX96) < 0 {
				swapTargetSqrtRatio = sqrtPriceLimitX96
			}
		} else if step.sqrtPriceNextX96.Cmp(sqrtPriceLimitX96) > 0 {
			swapTargetSqrtRatio = sqrtPriceLimitX96
		}

		if err := swapmath.ComputeSwapStep(
			state.sqrtPriceX96, step.amountIn, step.amountOut, step.feeAmount,
			state.sqrtPriceX96, swapTargetSqrtRatio, state.liquidity,
			state.amountSpecifiedRemaining, big.NewInt(int64(p.Fee)),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSwapSimulation, err)
		}

		consumed := new(big.Int).Add(step.amountIn, step.feeAmount)
		state.amountSpecifiedRemaining.Sub(state.amountSpecifiedRemaining, consumed)
		state.amountCalculated.Sub(state.amountCalculated, step.amountOut)

		if state.sqrtPriceX96.Cmp(step.sqrtPriceNextX96) == 0 {
			if step.initialized {
				info, ok := p.Ticks[step.tickNext]
				if !ok {
					panic(fmt.Sprintf("v3pool: tick %d set in bitmap but missing from Ticks", step.tickNext))
				}

				liquidityNet := new(big.Int).Set(info.LiquidityNet)
				if zeroForOne {
					liquidityNet.Neg(liquidityNet)
				}

				nextLiquidity := new(big.Int).Add(state.liquidity, liquidityNet)
				if nextLiquidity.Sign() < 0 {
					return nil, fmt.Errorf("%w: liquidity underflow crossing tick %d", ErrSwapSimulation, step.tickNext)
				}
				state.liquidity = nextLiquidity
			}

			if zeroForOne {
				state.tick = step.tickNext - 1
			} else {
				state.tick = step.tickNext
			}
		} else if state.sqrtPriceX96.Cmp(step.sqrtPriceStartX96) != 0 {
			tick, err := tickmath.GetTickAtSqrtRatio(state.sqrtPriceX96)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrArithmetic, err)
			}
			state.tick = tick
		}
	}

	return state, nil
}

// clampTick bounds a bitmap search result to the valid tick domain; the
// bitmap itself has no notion of MIN_TICK/MAX_TICK.
func clampTick(tick int32) int32 {
	if tick < tickmath.MIN_TICK {
		return tickmath.MIN_TICK
	}
	if tick > tickmath.MAX_TICK {
		return tickmath.MAX_TICK
	}
	return tick
}
