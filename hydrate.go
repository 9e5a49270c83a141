package v3pool

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/v3pool/tickbitmap"
)

// defaultTickDataWindow is the block range queried per Burn/Mint log request
// when backfilling a pool's tick data.
const defaultTickDataWindow = uint64(100_000)

// ContractCaller is the capability a hydration source must provide: reading
// the chain head, calling view functions, and filtering historical logs.
// *ethclient.Client satisfies this directly.
type ContractCaller interface {
	ethereum.ContractCaller
	ethereum.LogFilterer
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

const poolFunctionABI = `[
	{"name":"token0","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]},
	{"name":"token1","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]},
	{"name":"fee","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint24"}]},
	{"name":"tickSpacing","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"int24"}]},
	{"name":"liquidity","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint128"}]},
	{"name":"slot0","type":"function","stateMutability":"view","inputs":[],"outputs":[
		{"type":"uint160"},{"type":"int24"},{"type":"uint16"},{"type":"uint16"},{"type":"uint16"},{"type":"uint8"},{"type":"bool"}
	]}
]`

const erc20FunctionABI = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint8"}]}
]`

var (
	poolABI  abi.ABI
	erc20ABI abi.ABI
)

func init() {
	p, err := abi.JSON(strings.NewReader(poolFunctionABI))
	if err != nil {
		panic("v3pool: invalid embedded pool ABI: " + err.Error())
	}
	poolABI = p

	e, err := abi.JSON(strings.NewReader(erc20FunctionABI))
	if err != nil {
		panic("v3pool: invalid embedded erc20 ABI: " + err.Error())
	}
	erc20ABI = e
}

// HydrateOption configures a hydration call. The interface method is
// unexported so options can only be constructed via the With* functions.
type HydrateOption interface {
	apply(*hydrateConfig)
}

type funcHydrateOption func(*hydrateConfig)

func (f funcHydrateOption) apply(c *hydrateConfig) { f(c) }

func newHydrateOption(f func(*hydrateConfig)) HydrateOption {
	return funcHydrateOption(f)
}

type hydrateConfig struct {
	logger     Logger
	metrics    *metrics
	tickWindow uint64
}

func newHydrateConfig(opts []HydrateOption) *hydrateConfig {
	c := &hydrateConfig{
		logger:     noopLogger{},
		tickWindow: defaultTickDataWindow,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// WithLogger sets the Logger used while hydrating.
func WithLogger(logger Logger) HydrateOption {
	return newHydrateOption(func(c *hydrateConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithRegisterer registers the package's metrics against reg; hydration
// counts the log windows it fetches. A nil Registerer (the default)
// disables metrics.
func WithRegisterer(reg prometheus.Registerer) HydrateOption {
	return newHydrateOption(func(c *hydrateConfig) {
		c.metrics = newMetrics(reg)
	})
}

// WithTickDataWindow overrides the block-range size used per log request
// when backfilling tick data. The default matches the on-chain indexer
// convention of 100,000 blocks per window.
func WithTickDataWindow(blocks uint64) HydrateOption {
	return newHydrateOption(func(c *hydrateConfig) {
		if blocks > 0 {
			c.tickWindow = blocks
		}
	})
}

// NewFromAddress constructs a fully hydrated Pool for the pool contract at
// address, reading its immutable parameters, backfilling tick data from
// creationBlock to the chain head, and then reading its current top-level
// state (tokens, decimals, fee, liquidity, sqrt price, tick).
func NewFromAddress(ctx context.Context, address common.Address, creationBlock uint64, caller ContractCaller, opts ...HydrateOption) (*Pool, error) {
	cfg := newHydrateConfig(opts)

	pool := &Pool{
		Address:    address,
		Ticks:      make(map[int32]*TickInfo),
		TickBitmap: make(tickbitmap.Map),
	}

	// Tick spacing must be known before syncing any Burn/Mint log, since it
	// is required to compress a tick into a tick-bitmap word/bit position.
	tickSpacing, err := callInt24(ctx, caller, address, "tickSpacing", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: read tick spacing: %v", ErrPoolData, err)
	}
	pool.TickSpacing = tickSpacing

	syncedBlock, err := populateTickData(ctx, pool, caller, creationBlock, cfg)
	if err != nil {
		return nil, err
	}

	if err := PopulateData(ctx, pool, caller, new(big.Int).SetUint64(syncedBlock)); err != nil {
		return nil, err
	}

	if !pool.dataIsPopulated() {
		return nil, fmt.Errorf("%w: token addresses were not populated", ErrPoolData)
	}

	return pool, nil
}

// NewFromLog constructs a fully hydrated Pool from a factory PoolCreated
// log, using the log's own block number as the pool's creation block. The
// log must carry a block number (as logs read from a confirmed block
// always do); a log awaiting inclusion has none and is rejected.
func NewFromLog(ctx context.Context, log *types.Log, caller ContractCaller, opts ...HydrateOption) (*Pool, error) {
	if len(log.Topics) == 0 || log.Topics[0] != PoolCreatedEventSignature {
		return nil, ErrInvalidEventSignature
	}
	if log.BlockNumber == 0 {
		return nil, ErrLogBlockNumberNotFound
	}

	values, err := poolCreatedDataArgs.UnpackValues(log.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack PoolCreated data: %v", ErrEventLog, err)
	}
	address, ok := values[1].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected pool address type", ErrEventLog)
	}

	return NewFromAddress(ctx, address, log.BlockNumber, caller, opts...)
}

// PopulateTickData backfills a pool's ticks and tick bitmap by scanning
// Burn and Mint logs from fromBlock to the current chain head in fixed-size
// windows, applying each log in order. It returns the block number the
// chain head was read at.
func PopulateTickData(ctx context.Context, pool *Pool, caller ContractCaller, fromBlock uint64, opts ...HydrateOption) (uint64, error) {
	return populateTickData(ctx, pool, caller, fromBlock, newHydrateConfig(opts))
}

func populateTickData(ctx context.Context, pool *Pool, caller ContractCaller, fromBlock uint64, cfg *hydrateConfig) (uint64, error) {
	header, err := caller.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: read chain head: %v", ErrTransport, err)
	}
	currentBlock := header.Number.Uint64()

	for start := fromBlock; start <= currentBlock; start += cfg.tickWindow {
		end := start + cfg.tickWindow

		query := ethereum.FilterQuery{
			Addresses: []common.Address{pool.Address},
			Topics:    [][]common.Hash{{BurnEventSignature, MintEventSignature}},
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
		}

		logs, err := caller.FilterLogs(ctx, query)
		if err != nil {
			return 0, fmt.Errorf("%w: filter logs [%d,%d]: %v", ErrTransport, start, end, err)
		}

		for i := range logs {
			if err := pool.SyncFromLog(&logs[i]); err != nil {
				return 0, err
			}
		}

		cfg.metrics.incLogWindow()
		cfg.logger.Debug("backfilled tick data window", "fromBlock", start, "toBlock", end, "logs", len(logs))
	}

	return currentBlock, nil
}

// PopulateData reads a pool's current token addresses, decimals, fee,
// liquidity, sqrt price and tick as of blockNumber (nil for latest).
func PopulateData(ctx context.Context, pool *Pool, caller ContractCaller, blockNumber *big.Int) error {
	token0, err := callAddress(ctx, caller, pool.Address, "token0", blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read token0: %v", ErrPoolData, err)
	}
	token1, err := callAddress(ctx, caller, pool.Address, "token1", blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read token1: %v", ErrPoolData, err)
	}

	token0Decimals, err := callDecimals(ctx, caller, token0, blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read token0 decimals: %v", ErrPoolData, err)
	}
	token1Decimals, err := callDecimals(ctx, caller, token1, blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read token1 decimals: %v", ErrPoolData, err)
	}

	fee, err := callUint24(ctx, caller, pool.Address, "fee", blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read fee: %v", ErrPoolData, err)
	}

	liquidity, err := callUint128(ctx, caller, pool.Address, "liquidity", blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read liquidity: %v", ErrPoolData, err)
	}

	sqrtPriceX96, tick, err := callSlot0(ctx, caller, pool.Address, blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read slot0: %v", ErrPoolData, err)
	}

	tickSpacing, err := callInt24(ctx, caller, pool.Address, "tickSpacing", blockNumber)
	if err != nil {
		return fmt.Errorf("%w: read tick spacing: %v", ErrPoolData, err)
	}

	pool.Token0 = token0
	pool.Token1 = token1
	pool.Token0Decimals = token0Decimals
	pool.Token1Decimals = token1Decimals
	pool.Fee = fee
	pool.Liquidity = liquidity
	pool.SqrtPriceX96 = sqrtPriceX96
	pool.Tick = tick
	pool.TickSpacing = tickSpacing

	return nil
}

// NewEmptyPoolFromLog constructs a pool shell from a factory PoolCreated
// log, leaving its liquidity, sqrt price, tick, ticks and tick bitmap
// unpopulated. Call PopulateTickData and PopulateData (or NewFromAddress)
// to fully hydrate it.
//
// PoolCreated's indexed parameters are token0 (topics[1]), token1
// (topics[2]) and fee (topics[3]); the pool address and tickSpacing are
// ABI-encoded in the log's data.
func NewEmptyPoolFromLog(log *types.Log) (*Pool, error) {
	if len(log.Topics) == 0 || log.Topics[0] != PoolCreatedEventSignature {
		return nil, ErrInvalidEventSignature
	}
	if len(log.Topics) < 4 {
		return nil, fmt.Errorf("%w: expected 4 topics, got %d", ErrEventLog, len(log.Topics))
	}

	values, err := poolCreatedDataArgs.UnpackValues(log.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack PoolCreated data: %v", ErrEventLog, err)
	}

	tickSpacing, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected tickSpacing type", ErrEventLog)
	}
	address, ok := values[1].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected pool address type", ErrEventLog)
	}

	return &Pool{
		Address:     address,
		Token0:      common.BytesToAddress(log.Topics[1].Bytes()),
		Token1:      common.BytesToAddress(log.Topics[2].Bytes()),
		Fee:         uint32(signedWord(log.Topics[3]).Int64()),
		TickSpacing: int32(tickSpacing.Int64()),
		Ticks:       make(map[int32]*TickInfo),
		TickBitmap:  make(tickbitmap.Map),
	}, nil
}

// -----------------------------------------------------------------------------
// ABI-encoded view calls
// -----------------------------------------------------------------------------

func callPool(ctx context.Context, caller ContractCaller, address common.Address, method string, blockNumber *big.Int) ([]interface{}, error) {
	data, err := poolABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	return poolABI.Unpack(method, out)
}

func callInt24(ctx context.Context, caller ContractCaller, address common.Address, method string, blockNumber *big.Int) (int32, error) {
	values, err := callPool(ctx, caller, address, method, blockNumber)
	if err != nil {
		return 0, err
	}
	return int32(values[0].(*big.Int).Int64()), nil
}

func callUint24(ctx context.Context, caller ContractCaller, address common.Address, method string, blockNumber *big.Int) (uint32, error) {
	values, err := callPool(ctx, caller, address, method, blockNumber)
	if err != nil {
		return 0, err
	}
	return uint32(values[0].(*big.Int).Uint64()), nil
}

func callUint128(ctx context.Context, caller ContractCaller, address common.Address, method string, blockNumber *big.Int) (*big.Int, error) {
	values, err := callPool(ctx, caller, address, method, blockNumber)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

func callAddress(ctx context.Context, caller ContractCaller, address common.Address, method string, blockNumber *big.Int) (common.Address, error) {
	values, err := callPool(ctx, caller, address, method, blockNumber)
	if err != nil {
		return common.Address{}, err
	}
	return values[0].(common.Address), nil
}

func callSlot0(ctx context.Context, caller ContractCaller, address common.Address, blockNumber *big.Int) (sqrtPriceX96 *big.Int, tick int32, err error) {
	values, err := callPool(ctx, caller, address, "slot0", blockNumber)
	if err != nil {
		return nil, 0, err
	}
	sqrtPriceX96 = values[0].(*big.Int)
	tick = int32(values[1].(*big.Int).Int64())
	return sqrtPriceX96, tick, nil
}

func callDecimals(ctx context.Context, caller ContractCaller, token common.Address, blockNumber *big.Int) (uint8, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}

	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, blockNumber)
	if err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}

	values, err := erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, err
	}
	return values[0].(uint8), nil
}
