package v3pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Constants for reconnection logic.
const (
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second

	logChannelBufferSize = 256
)

// StreamConfig holds the configuration for a live log stream.
type StreamConfig struct {
	URL     string
	Pool    *Pool
	Logger  Logger
	Metrics *metrics
}

func (c *StreamConfig) validate() error {
	if c.URL == "" {
		return errors.New("streamconfig: URL is required")
	}
	if c.Pool == nil {
		return errors.New("streamconfig: Pool is required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// StreamProcessor
// -----------------------------------------------------------------------------

// StreamProcessor applies incoming Swap/Mint/Burn logs to a Pool in arrival
// order. It holds the business logic of keeping a Pool's in-memory state
// synced with the chain, decoupled from the networking layer that feeds it.
type StreamProcessor struct {
	mu      sync.Mutex
	pool    *Pool
	logger  Logger
	metrics *metrics

	lastBlock uint64
}

// NewStreamProcessor creates a pure logic processor without networking.
func NewStreamProcessor(pool *Pool, logger Logger, m *metrics) *StreamProcessor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &StreamProcessor{pool: pool, logger: logger, metrics: m}
}

// ProcessLog applies a single Swap/Mint/Burn log to the processor's Pool.
// Logs from blocks strictly below the last block already applied are
// discarded as stale, since a reconnect may redeliver the tail of the
// previous subscription; further logs from that same block are applied.
func (sp *StreamProcessor) ProcessLog(log types.Log) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if log.BlockNumber != 0 && log.BlockNumber < sp.lastBlock {
		sp.logger.Debug("discarding stale log", "block", log.BlockNumber, "lastBlock", sp.lastBlock)
		return nil
	}

	start := time.Now()
	if err := sp.pool.SyncFromLog(&log); err != nil {
		return fmt.Errorf("process log: %w", err)
	}
	sp.metrics.observeSwap(start)

	if log.BlockNumber != 0 {
		sp.lastBlock = log.BlockNumber
	}

	sp.logger.Debug("applied log",
		"block", log.BlockNumber,
		"txHash", log.TxHash.Hex(),
		"logIndex", log.Index,
	)
	return nil
}

// -----------------------------------------------------------------------------
// StreamClient (networking wrapper)
// -----------------------------------------------------------------------------

// StreamClient subscribes to a pool's Swap/Mint/Burn logs over a websocket
// RPC endpoint and keeps the underlying Pool synced, reconnecting with
// exponential backoff on any transport failure.
type StreamClient struct {
	processor *StreamProcessor
	logger    Logger
	errCh     chan error
}

// DialStream connects to cfg.URL and begins streaming logs for cfg.Pool in
// the background. Cancel ctx to stop the client.
func DialStream(ctx context.Context, cfg StreamConfig) (*StreamClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	client := &StreamClient{
		processor: NewStreamProcessor(cfg.Pool, logger, cfg.Metrics),
		logger:    logger,
		errCh:     make(chan error, 1),
	}

	go client.run(ctx, cfg.URL)
	return client, nil
}

// Err returns a read-only channel that is closed when the client's
// background loop exits. Every failure is retried, so no error values are
// sent on it.
func (c *StreamClient) Err() <-chan error {
	return c.errCh
}

func (c *StreamClient) run(ctx context.Context, url string) {
	defer close(c.errCh)
	reconnectDelay := initialReconnectDelay

	for {
		if ctx.Err() != nil {
			c.logger.Info("stream client context canceled, shutting down")
			return
		}

		c.logger.Info("connecting to RPC server", "url", url)
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			c.logger.Error("failed to connect to RPC server, will retry", "error", err, "delay", reconnectDelay)
			time.Sleep(reconnectDelay)
			reconnectDelay = minDuration(reconnectDelay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("connected to RPC server")
		reconnectDelay = initialReconnectDelay

		err = c.subscribeAndProcess(ctx, client)
		client.Close()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("context canceled, shutting down")
				return
			}
			c.logger.Error("subscription failed, will reconnect", "error", err, "delay", reconnectDelay)
			time.Sleep(reconnectDelay)
			reconnectDelay = minDuration(reconnectDelay*2, maxReconnectDelay)
		}
	}
}

func (c *StreamClient) subscribeAndProcess(ctx context.Context, client *ethclient.Client) error {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.processor.pool.Address},
		Topics: [][]common.Hash{{
			SwapEventSignature,
			MintEventSignature,
			BurnEventSignature,
		}},
	}

	logsCh := make(chan types.Log, logChannelBufferSize)
	sub, err := client.SubscribeFilterLogs(ctx, query, logsCh)
	if err != nil {
		return fmt.Errorf("%w: subscribe filter logs: %v", ErrTransport, err)
	}
	defer sub.Unsubscribe()

	c.logger.Info("subscribed to pool logs", "pool", c.processor.pool.Address.Hex())
	for {
		select {
		case log := <-logsCh:
			if err := c.processor.ProcessLog(log); err != nil {
				c.logger.Error("error processing log", "error", err)
			}
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			c.logger.Info("context cancelled, stopping subscription")
			return ctx.Err()
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
