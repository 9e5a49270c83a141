package v3pool

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapCalldata_EncodesMethodSelectorAndArgs(t *testing.T) {
	recipient := common.HexToAddress("0x000000000000000000000000000000000000c0")
	amountSpecified := big.NewInt(1_000_000)
	sqrtPriceLimitX96 := new(big.Int).Lsh(big.NewInt(1), 96)
	data := []byte{0x01, 0x02, 0x03}

	calldata, err := SwapCalldata(recipient, true, amountSpecified, sqrtPriceLimitX96, data)
	require.NoError(t, err)
	require.True(t, len(calldata) >= 4, "calldata should at least contain a method selector")

	method, ok := swapABI.Methods["swap"]
	require.True(t, ok)
	assert.Equal(t, method.ID, calldata[:4], "calldata should be prefixed with the swap method selector")

	args, err := method.Inputs.Unpack(calldata[4:])
	require.NoError(t, err)
	require.Len(t, args, 5)

	assert.Equal(t, recipient, args[0])
	assert.Equal(t, true, args[1])
	assert.Zero(t, amountSpecified.Cmp(args[2].(*big.Int)))
	assert.Zero(t, sqrtPriceLimitX96.Cmp(args[3].(*big.Int)))
	assert.Equal(t, data, args[4])
}

func TestSwapCalldata_ZeroRecipientAllowed(t *testing.T) {
	_, err := SwapCalldata(common.Address{}, false, big.NewInt(1), big.NewInt(1), nil)
	require.NoError(t, err, "the zero address is a valid (if unusual) ABI-encodable address")
}
