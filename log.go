package v3pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event signatures, Keccak-256 of the canonical event strings.
var (
	SwapEventSignature = common.HexToHash("0xc42079f94a6350d7e6235f291749249928cc2ac818eb64fed8004e115fbcca67")
	BurnEventSignature = common.HexToHash("0x0c396cd989a39f4459b5fa1aed6a9a8dcdbc45908acfd67e028cd568da98982c")
	MintEventSignature = common.HexToHash("0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde")

	// PoolCreatedEventSignature is the factory event a new pool is deployed
	// under. Computed rather than hardcoded since the factory's ABI, unlike
	// the pool's, is not otherwise embedded in this package.
	PoolCreatedEventSignature = crypto.Keccak256Hash([]byte("PoolCreated(address,address,uint24,int24,address)"))
)

var (
	uint128Type, _ = abi.NewType("uint128", "", nil)
	uint160Type, _ = abi.NewType("uint160", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	int256Type, _  = abi.NewType("int256", "", nil)
	int24Type, _   = abi.NewType("int24", "", nil)
	addressType, _ = abi.NewType("address", "", nil)

	swapDataArgs = abi.Arguments{
		{Type: int256Type},  // amount0
		{Type: int256Type},  // amount1
		{Type: uint160Type}, // sqrtPriceX96
		{Type: uint128Type}, // liquidity
		{Type: int24Type},   // tick
	}
	mintDataArgs = abi.Arguments{
		{Type: addressType}, // sender
		{Type: uint128Type}, // amount
		{Type: uint256Type}, // amount0
		{Type: uint256Type}, // amount1
	}
	burnDataArgs = abi.Arguments{
		{Type: uint128Type}, // amount
		{Type: uint256Type}, // amount0
		{Type: uint256Type}, // amount1
	}
	poolCreatedDataArgs = abi.Arguments{
		{Type: int24Type},   // tickSpacing
		{Type: addressType}, // pool
	}
)

// SyncFromLog applies a Swap, Mint or Burn log to the pool in place,
// dispatching on topics[0]. Any other signature is an ErrInvalidEventSignature.
func (p *Pool) SyncFromLog(log *types.Log) error {
	if len(log.Topics) == 0 {
		return errors.Join(ErrEventLog, ErrInvalidEventSignature)
	}

	switch log.Topics[0] {
	case BurnEventSignature:
		return p.syncFromBurnLog(log)
	case MintEventSignature:
		return p.syncFromMintLog(log)
	case SwapEventSignature:
		return p.syncFromSwapLog(log)
	default:
		return errors.Join(ErrEventLog, ErrInvalidEventSignature)
	}
}

func (p *Pool) syncFromBurnLog(log *types.Log) error {
	tickLower, tickUpper, amount, err := decodeBurnLog(log)
	if err != nil {
		return err
	}
	delta := new(big.Int).Neg(amount)
	return p.ModifyPosition(tickLower, tickUpper, delta)
}

func (p *Pool) syncFromMintLog(log *types.Log) error {
	tickLower, tickUpper, amount, err := decodeMintLog(log)
	if err != nil {
		return err
	}
	return p.ModifyPosition(tickLower, tickUpper, amount)
}

func (p *Pool) syncFromSwapLog(log *types.Log) error {
	sqrtPrice, liquidity, tick, err := decodeSwapLog(log)
	if err != nil {
		return err
	}
	p.SqrtPriceX96 = sqrtPrice
	p.Liquidity = liquidity
	p.Tick = tick
	return nil
}

// decodeSwapLog decodes a Swap event's data field. amount0/amount1 (the
// pool's signed token deltas) are not needed by the replica and are
// discarded; only the resulting sqrtPriceX96, liquidity and tick matter.
func decodeSwapLog(log *types.Log) (sqrtPriceX96, liquidity *big.Int, tick int32, err error) {
	values, err := swapDataArgs.UnpackValues(log.Data)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: decode swap log: %v", ErrEventLog, err)
	}

	sqrtPriceX96 = values[2].(*big.Int)
	liquidity = values[3].(*big.Int)
	tick = int32(values[4].(*big.Int).Int64())

	return sqrtPriceX96, liquidity, tick, nil
}

// decodeMintLog decodes a Mint event. tick_lower and tick_upper come from
// topics[2] and topics[3] as big-endian signed 24-bit values left-padded to
// 32 bytes; only "amount" is consumed from the data field.
func decodeMintLog(log *types.Log) (tickLower, tickUpper int32, amount *big.Int, err error) {
	tickLower, tickUpper, err = decodeTickTopics(log)
	if err != nil {
		return 0, 0, nil, err
	}

	values, err := mintDataArgs.UnpackValues(log.Data)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: decode mint log: %v", ErrEventLog, err)
	}

	amount = values[1].(*big.Int)
	return tickLower, tickUpper, amount, nil
}

// decodeBurnLog decodes a Burn event, same topic layout as Mint.
func decodeBurnLog(log *types.Log) (tickLower, tickUpper int32, amount *big.Int, err error) {
	tickLower, tickUpper, err = decodeTickTopics(log)
	if err != nil {
		return 0, 0, nil, err
	}

	values, err := burnDataArgs.UnpackValues(log.Data)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: decode burn log: %v", ErrEventLog, err)
	}

	amount = values[0].(*big.Int)
	return tickLower, tickUpper, amount, nil
}

// decodeTickTopics reads tick_lower and tick_upper from topics[2] and
// topics[3]. Solidity sign-extends an indexed int24 to a full 32-byte word
// and stores that word as the topic unhashed, so each word is read back as a
// big-endian two's complement 256-bit integer.
func decodeTickTopics(log *types.Log) (tickLower, tickUpper int32, err error) {
	if len(log.Topics) < 4 {
		return 0, 0, fmt.Errorf("%w: expected 4 topics, got %d", ErrEventLog, len(log.Topics))
	}

	tickLower = int32(signedWord(log.Topics[2]).Int64())
	tickUpper = int32(signedWord(log.Topics[3]).Int64())

	return tickLower, tickUpper, nil
}

// signedWord interprets a 32-byte word as a big-endian two's complement
// signed 256-bit integer.
func signedWord(word common.Hash) *big.Int {
	raw := new(big.Int).SetBytes(word.Bytes())
	if word[0]&0x80 != 0 {
		raw.Sub(raw, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return raw
}
