package v3pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/v3pool/liquiditymath"
	"github.com/defistate/v3pool/tickbitmap"
)

// ModifyPosition applies a signed liquidity delta to the ticks tickLower and
// tickUpper and, if the pool's current tick lies strictly between them,
// folds the delta into the pool's active liquidity. liquidityDelta
// may be negative (a burn). Mint/burn events are only emitted after the
// on-chain contract has already validated tickLower < tickUpper and the
// resulting liquidity_gross bound, so those checks are not repeated here.
func (p *Pool) ModifyPosition(tickLower, tickUpper int32, liquidityDelta *big.Int) error {
	if err := p.updatePosition(tickLower, tickUpper, liquidityDelta); err != nil {
		return err
	}

	if liquidityDelta.Sign() == 0 {
		return nil
	}

	if p.Tick > tickLower && p.Tick < tickUpper {
		next := new(big.Int)
		if err := liquiditymath.AddDelta(next, p.Liquidity, liquidityDelta); err != nil {
			return errors.Join(ErrArithmetic, err)
		}
		p.Liquidity = next
	}

	return nil
}

// updatePosition updates the lower and upper tick boundaries of a range and
// flips their bitmap entries if the update toggled either tick between
// "has liquidity" and "has none". A negative delta that empties a tick
// removes it from Ticks entirely, mirroring the on-chain contract freeing
// the tick's storage slot.
func (p *Pool) updatePosition(tickLower, tickUpper int32, liquidityDelta *big.Int) error {
	var flippedLower, flippedUpper bool
	var err error

	if liquidityDelta.Sign() != 0 {
		flippedLower, err = p.updateTick(tickLower, liquidityDelta, false)
		if err != nil {
			return err
		}
		flippedUpper, err = p.updateTick(tickUpper, liquidityDelta, true)
		if err != nil {
			return err
		}

		if flippedLower {
			tickbitmap.FlipTick(p.TickBitmap, tickLower, p.TickSpacing)
		}
		if flippedUpper {
			tickbitmap.FlipTick(p.TickBitmap, tickUpper, p.TickSpacing)
		}
	}

	if liquidityDelta.Sign() < 0 {
		if flippedLower {
			delete(p.Ticks, tickLower)
		}
		if flippedUpper {
			delete(p.Ticks, tickUpper)
		}
	}

	return nil
}

// updateTick inserts a default TickInfo on first touch, folds
// liquidityDelta into liquidity_gross and liquidity_net (negated when
// upper), and reports whether the tick flipped between uninitialized and
// initialized.
func (p *Pool) updateTick(tick int32, liquidityDelta *big.Int, upper bool) (flipped bool, err error) {
	info, ok := p.Ticks[tick]
	if !ok {
		info = newTickInfo()
		p.Ticks[tick] = info
	}

	liquidityGrossBefore := info.LiquidityGross

	liquidityGrossAfter := new(big.Int).Add(liquidityGrossBefore, liquidityDelta)
	if liquidityGrossAfter.Sign() < 0 {
		return false, fmt.Errorf("%w: tick %d liquidity_gross underflow", ErrArithmetic, tick)
	}

	flipped = (liquidityGrossAfter.Sign() == 0) != (liquidityGrossBefore.Sign() == 0)

	if liquidityGrossBefore.Sign() == 0 {
		info.Initialized = true
	}

	info.LiquidityGross = liquidityGrossAfter

	if upper {
		info.LiquidityNet.Sub(info.LiquidityNet, liquidityDelta)
	} else {
		info.LiquidityNet.Add(info.LiquidityNet, liquidityDelta)
	}

	return flipped, nil
}
