package v3pool

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/v3pool/tickmath"
)

// maxUint128 bounds CalculateVirtualReserves' result: the on-chain reserve
// identities are u128 quantities, and the Rust original panics (via
// .expect()) on a u128 conversion overflow rather than silently wrapping.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// CalculatePrice returns the price of baseToken denominated in the other
// pool token, decimal-adjusted. baseToken must be one of p.Token0/p.Token1.
func (p *Pool) CalculatePrice(baseToken common.Address) (float64, error) {
	tick, err := tickmath.GetTickAtSqrtRatio(p.SqrtPriceX96)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrArithmetic, err)
	}

	shift := int(p.Token0Decimals) - int(p.Token1Decimals)

	var price float64
	switch {
	case shift < 0:
		price = math.Pow(1.0001, float64(tick)) / math.Pow(10, float64(-shift))
	case shift > 0:
		price = math.Pow(1.0001, float64(tick)) * math.Pow(10, float64(shift))
	default:
		price = math.Pow(1.0001, float64(tick))
	}

	if baseToken == p.Token0 {
		return price, nil
	}
	return 1.0 / price, nil
}

// CalculateVirtualReserves derives the pool's implied token0/token1 reserves
// from its current liquidity and sqrt price, using the identities
// x = L/sqrt(price), y = L*sqrt(price).
func (p *Pool) CalculateVirtualReserves() (reserve0, reserve1 *big.Int, err error) {
	tick, err := tickmath.GetTickAtSqrtRatio(p.SqrtPriceX96)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrArithmetic, err)
	}

	price := math.Pow(1.0001, float64(tick))
	sqrtPrice := big.NewFloat(math.Sqrt(price))

	if sqrtPrice.Sign() == 0 {
		return new(big.Int), new(big.Int), nil
	}

	liquidity := new(big.Float).SetInt(p.Liquidity)

	reserveXFloat := new(big.Float).Quo(liquidity, sqrtPrice)
	reserveYFloat := new(big.Float).Mul(liquidity, sqrtPrice)

	reserve0, _ = reserveXFloat.Int(nil)
	reserve1, _ = reserveYFloat.Int(nil)

	if reserve0.CmpAbs(maxUint128) > 0 || reserve1.CmpAbs(maxUint128) > 0 {
		return nil, nil, fmt.Errorf("%w: virtual reserves overflow u128", ErrArithmetic)
	}

	return reserve0, reserve1, nil
}
