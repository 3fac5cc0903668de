// Package client defines the Client contract a transport adapter
// (internal/client/grpc, internal/client/stratum) must satisfy to drive a
// miner.MinerManager: register with the upstream, stream templates into the
// coordinator, and report solved seeds back out. Grounded on spec.md §6's
// Client contract (register/listen/get_block_channel/add_devfund).
package client

import (
	"context"

	"github.com/pyrinminer/pyrinminer/internal/miner"
)

// Miner is the subset of miner.MinerManager a Client adapter drives: feed it
// templates via Submit, read solved seeds off its Solutions channel.
type Miner interface {
	Submit(seed miner.BlockSeed) error
	Pause()
	Solutions() <-chan miner.SolvedSeed
}

// Client is the upstream connection contract: a node speaking gRPC or a pool
// speaking Stratum. Exactly one adapter is active per run, chosen in
// cmd/pyrinminer by the --pyrin-address scheme.
type Client interface {
	// Register performs the one-time handshake (GetInfo/mining.subscribe)
	// before Listen is called.
	Register(ctx context.Context) error

	// Listen drives the template stream until ctx is cancelled or a
	// transport error occurs; for every template it calls m.Submit, and it
	// forwards every entry read off m.Solutions() upstream as a submission.
	// Apart from ctx's own error on cancellation, a returned error is a
	// transport failure (spec.md §7's "transient network errors"); the
	// caller's reconnect loop handles it.
	Listen(ctx context.Context, m Miner) error

	// AddDevfund enables devfund rotation for this connection, given the
	// devfund address and a cut in basis points out of 10,000. A no-op on
	// adapters that don't support it.
	AddDevfund(address string, percentBps int)
}
