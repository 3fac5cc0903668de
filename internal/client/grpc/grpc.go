// Package grpc implements internal/client.Client over a real
// google.golang.org/grpc connection to a Pyrin/Kaspa-family node, grounded
// on weisyn-go-weisyn's internal/api/grpc (the only pack repo with a grpc
// dependency) for the connection-lifecycle shape, generalized from a server
// to a client and from a service-per-RPC layout to Kaspa's single streaming
// RPC (everything multiplexed over one bidirectional MessageStream, just
// like kaspad's own p2p/rpc API).
package grpc

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pyrinminer/pyrinminer/internal/client"
	"github.com/pyrinminer/pyrinminer/internal/client/grpc/rpcpb"
	"github.com/pyrinminer/pyrinminer/internal/logging"
	"github.com/pyrinminer/pyrinminer/internal/metrics"
	"github.com/pyrinminer/pyrinminer/internal/miner"
	"github.com/pyrinminer/pyrinminer/internal/pow"
)

const messageStreamMethod = "/pyrin.rpc.RPC/MessageStream"

// minNewBlockTemplateVersion is the node version (Kaspa's own convention)
// at which a client should prefer NewBlockTemplate notifications over the
// older, noisier BlockAdded notifications, per spec.md §6.
const minNewBlockTemplateVersion = "0.11.15"

// Client dials a node's gRPC endpoint and drives the single bidirectional
// MessageStream RPC.
type Client struct {
	conn *grpc.ClientConn

	minerAddress   string
	devfundAddress string
	devfundBps     int

	// MineWhenNotSynced, when false (the default), discards a template
	// whose response reports isSynced=false rather than handing it to the
	// coordinator, per spec.md §6's --mine-when-not-synced flag.
	MineWhenNotSynced bool

	serverVersion string
}

// New dials target (host:port, no scheme) lazily; the connection is
// established on first use by grpc-go's default "wait for first RPC"
// behavior. minerAddress is the payout address sent with every
// GetBlockTemplateRequest.
func New(target, minerAddress string) (*Client, error) {
	conn, err := grpc.Dial(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc: dial %s: %w", target, err)
	}
	return &Client{conn: conn, minerAddress: minerAddress}, nil
}

// AddDevfund enables devfund rotation for subsequent GetBlockTemplate
// requests.
func (c *Client) AddDevfund(devfundAddress string, percentBps int) {
	c.devfundAddress = devfundAddress
	c.devfundBps = percentBps
}

// Register performs the GetInfo handshake, recording the node's version so
// Listen can decide which notification subscription to use.
func (c *Client) Register(ctx context.Context) error {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{StreamName: "MessageStream", ClientStreams: true, ServerStreams: true}, messageStreamMethod)
	if err != nil {
		return fmt.Errorf("grpc: open stream: %w", err)
	}
	if err := stream.SendMsg(&rpcpb.Envelope{GetInfoRequest: &rpcpb.GetInfoRequest{}}); err != nil {
		return fmt.Errorf("grpc: send GetInfoRequest: %w", err)
	}
	var reply rpcpb.Envelope
	if err := stream.RecvMsg(&reply); err != nil {
		return fmt.Errorf("grpc: recv GetInfoResponse: %w", err)
	}
	if reply.GetInfoResponse == nil {
		return fmt.Errorf("grpc: expected GetInfoResponse, got a different envelope field")
	}
	logging.For("client/grpc").Info().
		Str("serverVersion", reply.GetInfoResponse.ServerVersion).
		Bool("isSynced", reply.GetInfoResponse.IsSynced).
		Msg("registered with node")
	c.serverVersion = reply.GetInfoResponse.ServerVersion
	return stream.CloseSend()
}

// Listen opens a fresh MessageStream, subscribes to block notifications,
// and on every notification issues GetBlockTemplate, submits the result to
// m as a FullBlock BlockSeed, and forwards solved seeds back as
// SubmitBlockRequest. It returns only on a transport-level error or ctx
// cancellation, per internal/client.Client's contract.
func (c *Client) Listen(ctx context.Context, m client.Miner) error {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{StreamName: "MessageStream", ClientStreams: true, ServerStreams: true}, messageStreamMethod)
	if err != nil {
		return fmt.Errorf("grpc: open stream: %w", err)
	}
	defer stream.CloseSend()

	var have, want [3]int
	fmt.Sscanf(c.serverVersion, "%d.%d.%d", &have[0], &have[1], &have[2])
	fmt.Sscanf(minNewBlockTemplateVersion, "%d.%d.%d", &want[0], &want[1], &want[2])
	useNewBlockTemplate := have[0] > want[0] ||
		have[0] == want[0] && (have[1] > want[1] || have[1] == want[1] && have[2] >= want[2])
	if useNewBlockTemplate {
		err = stream.SendMsg(&rpcpb.Envelope{NotifyNewBlockTemplateRequest: &rpcpb.NotifyNewBlockTemplateRequest{}})
	} else {
		err = stream.SendMsg(&rpcpb.Envelope{NotifyBlockAddedRequest: &rpcpb.NotifyBlockAddedRequest{}})
	}
	if err != nil {
		return fmt.Errorf("grpc: send notify subscription: %w", err)
	}

	rotator := client.NewRotator(c.minerAddress, c.devfundAddress, c.devfundBps)

	submitErr := make(chan error, 1)
	go c.forwardSolutions(ctx, stream, m.Solutions(), submitErr)

	for {
		var env rpcpb.Envelope
		if err := stream.RecvMsg(&env); err != nil {
			select {
			case e := <-submitErr:
				return e
			default:
			}
			if err == io.EOF {
				return fmt.Errorf("grpc: node closed stream")
			}
			return fmt.Errorf("grpc: recv: %w", err)
		}

		switch {
		case env.BlockAddedNotification != nil, env.NewBlockTemplateNotification != nil:
			req := &rpcpb.GetBlockTemplateRequest{PayAddress: rotator.PayAddress()}
			if err := stream.SendMsg(&rpcpb.Envelope{GetBlockTemplateRequest: req}); err != nil {
				return fmt.Errorf("grpc: request block template: %w", err)
			}
		case env.GetBlockTemplateResponse != nil:
			if !env.GetBlockTemplateResponse.IsSynced && !c.MineWhenNotSynced {
				logging.For("client/grpc").Debug().Msg("discarding template from a not-yet-synced node")
				continue
			}
			header, err := templateToHeader(env.GetBlockTemplateResponse.Template)
			if err != nil {
				logging.For("client/grpc").Warn().Err(err).Msg("discarding malformed block template")
				continue
			}
			if err := m.Submit(miner.BlockSeed{FullBlock: &miner.FullBlockSeed{Header: header}}); err != nil {
				logging.For("client/grpc").Warn().Err(err).Msg("failed to submit template to coordinator")
			}
		case env.SubmitBlockResponse != nil:
			if env.SubmitBlockResponse.RejectReason != "" {
				logging.For("client/grpc").Warn().Str("reason", env.SubmitBlockResponse.RejectReason).Msg("block submission rejected")
				if metrics.Current != nil {
					metrics.Current.RejectedTotal.Inc()
				}
			} else if metrics.Current != nil {
				metrics.Current.SolutionsTotal.Inc()
			}
		}

		select {
		case e := <-submitErr:
			return e
		default:
		}
	}
}

// forwardSolutions drains solved seeds off solutions and submits them on
// stream, running on its own goroutine so a slow or stuck upstream doesn't
// block Listen's notification loop.
func (c *Client) forwardSolutions(ctx context.Context, stream grpc.ClientStream, solutions <-chan miner.SolvedSeed, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case solved, ok := <-solutions:
			if !ok {
				return
			}
			if solved.Seed.FullBlock == nil {
				continue // a grpc-driven coordinator only ever emits FullBlock seeds
			}
			header := solved.Seed.FullBlock.WithNonce(solved.Nonce)
			req := headerToSubmitRequest(header)
			if err := stream.SendMsg(&rpcpb.Envelope{SubmitBlockRequest: req}); err != nil {
				select {
				case errCh <- fmt.Errorf("grpc: submit block: %w", err):
				default:
				}
				return
			}
		}
	}
}

func templateToHeader(t *rpcpb.BlockTemplate) (*pow.BlockHeader, error) {
	if t == nil {
		return nil, fmt.Errorf("nil template")
	}
	h := &pow.BlockHeader{
		Version:   t.Version,
		Timestamp: uint64(t.Timestamp),
		Bits:      t.Bits,
		Nonce:     t.Nonce,
		DAAScore:  t.DAAScore,
		BlueScore: t.BlueScore,
	}
	var err error
	if h.HashMerkleRoot, err = hexToHash(t.HashMerkleRoot); err != nil {
		return nil, err
	}
	if h.AcceptedIDMerkleRoot, err = hexToHash(t.AcceptedIDMerkleRoot); err != nil {
		return nil, err
	}
	if h.UTXOCommitment, err = hexToHash(t.UTXOCommitment); err != nil {
		return nil, err
	}
	if h.PruningPoint, err = hexToHash(t.PruningPoint); err != nil {
		return nil, err
	}
	h.BlueWork = new(big.Int)
	if t.BlueWork != "" {
		raw, err := hex.DecodeString(t.BlueWork)
		if err != nil {
			return nil, fmt.Errorf("blueWork: %w", err)
		}
		h.BlueWork.SetBytes(raw)
	}
	h.Parents = make([]pow.ParentLevel, len(t.ParentLevels))
	for i, level := range t.ParentLevels {
		hashes := make([]pow.Hash256, len(level))
		for j, hs := range level {
			if hashes[j], err = hexToHash(hs); err != nil {
				return nil, err
			}
		}
		h.Parents[i] = pow.ParentLevel{Hashes: hashes}
	}
	return h, nil
}

func headerToSubmitRequest(h *pow.BlockHeader) *rpcpb.SubmitBlockRequest {
	levels := make([][]string, len(h.Parents))
	for i, lvl := range h.Parents {
		hashes := make([]string, len(lvl.Hashes))
		for j, hs := range lvl.Hashes {
			hashes[j] = hashToHex(hs)
		}
		levels[i] = hashes
	}
	blueWork := ""
	if h.BlueWork != nil {
		blueWork = hex.EncodeToString(h.BlueWork.Bytes())
	}
	return &rpcpb.SubmitBlockRequest{Template: &rpcpb.BlockTemplate{
		Version:              h.Version,
		ParentLevels:         levels,
		HashMerkleRoot:       hashToHex(h.HashMerkleRoot),
		AcceptedIDMerkleRoot: hashToHex(h.AcceptedIDMerkleRoot),
		UTXOCommitment:       hashToHex(h.UTXOCommitment),
		Timestamp:            int64(h.Timestamp),
		Bits:                 h.Bits,
		Nonce:                h.Nonce,
		DAAScore:             h.DAAScore,
		BlueScore:            h.BlueScore,
		BlueWork:             blueWork,
		PruningPoint:         hashToHex(h.PruningPoint),
	}}
}

func hexToHash(s string) (pow.Hash256, error) {
	var h pow.Hash256
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hex hash %q: %w", s, err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("hash %q has length %d, want %d", s, len(raw), len(h))
	}
	copy(h[:], raw)
	return h, nil
}

func hashToHex(h pow.Hash256) string {
	return hex.EncodeToString(h[:])
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
