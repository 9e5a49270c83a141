package v3pool

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/v3pool/tickbitmap"
)

// signedTopic encodes v as Solidity would when sign-extending an indexed
// int24 (or any signed value) across a full 32-byte topic word.
func signedTopic(t *testing.T, v int64) common.Hash {
	t.Helper()
	n := big.NewInt(v)
	if n.Sign() < 0 {
		n = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	var h common.Hash
	n.FillBytes(h[:])
	return h
}

func TestEventSignatures_MatchSpec(t *testing.T) {
	assert.Equal(t, common.HexToHash("0xc42079f94a6350d7e6235f291749249928cc2ac818eb64fed8004e115fbcca67"), SwapEventSignature)
	assert.Equal(t, common.HexToHash("0x0c396cd989a39f4459b5fa1aed6a9a8dcdbc45908acfd67e028cd568da98982c"), BurnEventSignature)
	assert.Equal(t, common.HexToHash("0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde"), MintEventSignature)
}

func TestSignedWord_RoundTripsPositiveAndNegative(t *testing.T) {
	for _, v := range []int64{0, 1, 887272, -1, -887272} {
		got := signedWord(signedTopic(t, v))
		assert.Equal(t, v, got.Int64(), "signedWord should recover %d", v)
	}
}

func TestSyncFromLog_UnknownSignatureErrors(t *testing.T) {
	p := &Pool{Ticks: make(map[int32]*TickInfo), TickBitmap: make(tickbitmap.Map), Liquidity: new(big.Int), SqrtPriceX96: new(big.Int)}

	log := &types.Log{Topics: []common.Hash{common.HexToHash("0xdeadbeef")}}
	err := p.SyncFromLog(log)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEventSignature)
}

func TestSyncFromLog_NoTopicsErrors(t *testing.T) {
	p := &Pool{Ticks: make(map[int32]*TickInfo), TickBitmap: make(tickbitmap.Map), Liquidity: new(big.Int), SqrtPriceX96: new(big.Int)}

	err := p.SyncFromLog(&types.Log{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEventSignature)
}

func TestSyncFromLog_Swap(t *testing.T) {
	p := &Pool{
		Ticks:        make(map[int32]*TickInfo),
		TickBitmap:   make(tickbitmap.Map),
		Liquidity:    new(big.Int),
		SqrtPriceX96: new(big.Int),
	}

	data, err := swapDataArgs.Pack(
		big.NewInt(-1000),
		big.NewInt(2000),
		new(big.Int).Lsh(big.NewInt(1), 96),
		big.NewInt(5_000_000),
		big.NewInt(-120),
	)
	require.NoError(t, err)

	log := &types.Log{
		Topics: []common.Hash{SwapEventSignature},
		Data:   data,
	}

	require.NoError(t, p.SyncFromLog(log))
	assert.Equal(t, int64(5_000_000), p.Liquidity.Int64())
	assert.Equal(t, int32(-120), p.Tick)
	assert.Zero(t, p.SqrtPriceX96.Cmp(new(big.Int).Lsh(big.NewInt(1), 96)))
}

func TestSyncFromLog_Mint(t *testing.T) {
	p := &Pool{
		Ticks:       make(map[int32]*TickInfo),
		TickBitmap:  make(tickbitmap.Map),
		TickSpacing: 60,
		Liquidity:   big.NewInt(1000),
	}

	data, err := mintDataArgs.Pack(
		common.HexToAddress("0x01"),
		big.NewInt(500),
		big.NewInt(123),
		big.NewInt(456),
	)
	require.NoError(t, err)

	log := &types.Log{
		Topics: []common.Hash{
			MintEventSignature,
			common.HexToHash("0x00"), // owner (unused)
			signedTopic(t, -60),      // tickLower
			signedTopic(t, 60),       // tickUpper
		},
		Data: data,
	}

	require.NoError(t, p.SyncFromLog(log))
	info, ok := p.Ticks[-60]
	require.True(t, ok)
	assert.Equal(t, int64(500), info.LiquidityGross.Int64())
}

func TestSyncFromLog_Burn(t *testing.T) {
	p := &Pool{
		Ticks:       make(map[int32]*TickInfo),
		TickBitmap:  make(tickbitmap.Map),
		TickSpacing: 60,
		Liquidity:   big.NewInt(1000),
	}
	require.NoError(t, p.ModifyPosition(-60, 60, big.NewInt(500)))

	data, err := burnDataArgs.Pack(
		big.NewInt(500),
		big.NewInt(123),
		big.NewInt(456),
	)
	require.NoError(t, err)

	log := &types.Log{
		Topics: []common.Hash{
			BurnEventSignature,
			common.HexToHash("0x00"),
			signedTopic(t, -60),
			signedTopic(t, 60),
		},
		Data: data,
	}

	require.NoError(t, p.SyncFromLog(log))
	_, ok := p.Ticks[-60]
	assert.False(t, ok, "burning all liquidity should remove the tick")
}

func TestDecodeTickTopics_TooFewTopicsErrors(t *testing.T) {
	_, _, err := decodeTickTopics(&types.Log{Topics: []common.Hash{MintEventSignature}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEventLog)
}
