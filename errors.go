package v3pool

import "errors"

// Sentinel errors for the error categories used throughout v3pool. Callers
// match a category with errors.Is. A category is either wrapped around a
// more specific message with fmt.Errorf("%w: ..."), or joined with a
// specific cause via errors.Join; only in the errors.Join case does
// errors.Is also match that cause.
var (
	// ErrArithmetic covers fixed-point math failures surfaced by the
	// tickmath/liquiditymath kernels and the mutator: out-of-bounds ticks
	// or sqrt prices, liquidity overflow/underflow, and virtual reserves
	// that exceed a u128.
	ErrArithmetic = errors.New("arithmetic error")

	// ErrSwapSimulation covers failures inside the swap-stepping loop: an
	// error from a swap-step computation, or a liquidity underflow when
	// crossing a tick.
	ErrSwapSimulation = errors.New("swap simulation error")

	// ErrEventLog covers malformed or unexpected mint/burn/swap logs.
	ErrEventLog = errors.New("event log error")

	// ErrInvalidEventSignature is an ErrEventLog cause: the log's topic[0]
	// does not match any signature this pool understands.
	ErrInvalidEventSignature = errors.New("invalid event signature")

	// ErrLogBlockNumberNotFound is an ErrEventLog cause: a log arrived
	// without a block number attached.
	ErrLogBlockNumberNotFound = errors.New("log block number not found")

	// ErrPoolData covers failures reading pool state off-chain: token
	// addresses, token decimals, fee, tick spacing, liquidity, slot0.
	ErrPoolData = errors.New("pool data error")

	// ErrTransport covers failures in the underlying RPC/websocket
	// transport used by the hydration driver and live log stream.
	ErrTransport = errors.New("transport error")
)
