package v3pool

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const swapFunctionABI = `[{
	"name": "swap",
	"type": "function",
	"inputs": [
		{"name": "recipient", "type": "address"},
		{"name": "zeroForOne", "type": "bool"},
		{"name": "amountSpecified", "type": "int256"},
		{"name": "sqrtPriceLimitX96", "type": "uint160"},
		{"name": "data", "type": "bytes"}
	],
	"outputs": [
		{"name": "amount0", "type": "int256"},
		{"name": "amount1", "type": "int256"}
	]
}]`

var swapABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(swapFunctionABI))
	if err != nil {
		panic("v3pool: invalid embedded swap ABI: " + err.Error())
	}
	swapABI = parsed
}

// SwapCalldata ABI-encodes a call to the pool's swap(address,bool,int256,
// uint160,bytes) function, for submitting a swap computed by SimulateSwap
// on-chain.
func SwapCalldata(recipient common.Address, zeroForOne bool, amountSpecified *big.Int, sqrtPriceLimitX96 *big.Int, data []byte) ([]byte, error) {
	return swapABI.Pack("swap", recipient, zeroForOne, amountSpecified, sqrtPriceLimitX96, data)
}
