// Package stratum implements internal/client.Client over a newline-delimited
// JSON-RPC 2.0 connection to a mining pool, grounded on teacher
// internal/rpc/types.go's Request/Response/RPCError shape and the
// mining.subscribe/authorize/submit vocabulary of the teacher's (now
// removed) pool server, reworked from the pool's server side to the miner's
// client side: this package dials out and drives the handshake, rather than
// accepting connections and running it.
package stratum

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pyrinminer/pyrinminer/internal/client"
	"github.com/pyrinminer/pyrinminer/internal/logging"
	"github.com/pyrinminer/pyrinminer/internal/metrics"
	"github.com/pyrinminer/pyrinminer/internal/miner"
	"github.com/pyrinminer/pyrinminer/internal/pow"
)

// Error codes from spec.md §6.
const (
	ErrCodeUnknown          = 20
	ErrCodeJobNotFound      = 21
	ErrCodeDuplicateShare   = 22
	ErrCodeLowDifficulty    = 23
	ErrCodeUnauthorized     = 24
	ErrCodeNotSubscribed    = 25
)

// Error is a typed Stratum protocol error (spec.md §6's codes 20-25).
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("stratum: error %d: %s", e.Code, e.Message)
}

// request is teacher internal/rpc/types.go's Request shape, reused as-is:
// this chain's Stratum dialect is JSON-RPC 2.0 like the teacher's own HTTP
// RPC, just carried over a raw TCP connection instead of HTTP.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"` // set when the server sends a notification, not a reply
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client dials a Stratum pool and speaks its line-delimited JSON-RPC
// dialect. A single goroutine (readPump) owns the socket's *bufio.Reader;
// everything else — call()'s synchronous replies and Listen's asynchronous
// notifications — is handed that data over channels rather than reading
// the connection directly, since bufio.Reader isn't safe for concurrent use.
type Client struct {
	addr string
	user string
	pass string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID int64

	extranonce string // may remain empty; tolerated per spec.md §6
	jobs       map[string]*PartialJob

	rotator *client.Rotator

	pendingMu sync.Mutex
	pending   map[int64]chan callResult

	notifications chan []byte   // notification lines, drained by Listen
	stopped       chan struct{} // closed by readPump when it exits

	readErrMu sync.Mutex
	readErr   error
}

// callResult is what readPump delivers to a call()'s waiting goroutine:
// either a parsed reply, or err set if the connection died first.
type callResult struct {
	resp response
	err  error
}

// PartialJob is a pool-issued job, the client-side mirror of
// miner.PartialBlockSeed before it's wrapped into a BlockSeed.
type PartialJob struct {
	JobID      string
	HeaderHash pow.Hash256
	Timestamp  uint64
	Bits       uint32
	Target     pow.Uint256
}

// New builds a Client that will dial addr ("host:port") on Register.
func New(addr, user, pass string) *Client {
	return &Client{
		addr:          addr,
		user:          user,
		pass:          pass,
		jobs:          make(map[string]*PartialJob),
		pending:       make(map[int64]chan callResult),
		notifications: make(chan []byte, 64),
	}
}

// AddDevfund records a devfund Rotator for this connection. A Stratum pool
// (not this client) decides the payout address for shares it accepts, and
// nothing in this adapter reads the Rotator: every share is submitted under
// the user given to New.
func (c *Client) AddDevfund(devfundAddress string, percentBps int) {
	c.rotator = client.NewRotator(c.user, devfundAddress, percentBps)
}

// Register dials the pool, starts the single read pump, and performs
// mining.subscribe + mining.authorize.
func (c *Client) Register(ctx context.Context) error {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("stratum: dial %s: %w", c.addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.stopped = make(chan struct{})
	go c.readPump()

	if _, err := c.call("mining.subscribe", []interface{}{"pyrinminer/1.0"}); err != nil {
		return fmt.Errorf("stratum: subscribe: %w", err)
	}
	if _, err := c.call("mining.authorize", []interface{}{c.user, c.pass}); err != nil {
		return fmt.Errorf("stratum: authorize: %w", err)
	}
	return nil
}

// readPump is the connection's only reader. It dispatches every line to
// either a waiting call() (by JSON-RPC id) or the notifications channel,
// and on a read error unblocks every pending call and Listen's loop.
func (c *Client) readPump() {
	var finalErr error
	for {
		line, err := c.reader.ReadBytes('\n')
		if len(line) > 0 {
			c.dispatchLine(line)
		}
		if err != nil {
			finalErr = fmt.Errorf("stratum: read: %w", err)
			break
		}
	}

	c.readErrMu.Lock()
	c.readErr = finalErr
	c.readErrMu.Unlock()

	c.pendingMu.Lock()
	for id, ch := range c.pending {
		ch <- callResult{err: finalErr}
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	close(c.stopped)
}

// dispatchLine routes one line from the pool: a reply (no method set) goes
// to the matching pending call by id, a notification goes to Listen.
func (c *Client) dispatchLine(line []byte) {
	var msg response
	if err := json.Unmarshal(line, &msg); err != nil {
		logging.For("client/stratum").Warn().Err(err).Msg("discarding malformed stratum line")
		return
	}

	if msg.Method == "" {
		id, ok := normalizeID(msg.ID)
		if !ok {
			logging.For("client/stratum").Warn().Msg("discarding reply with no usable id")
			return
		}
		c.pendingMu.Lock()
		ch, found := c.pending[id]
		if found {
			delete(c.pending, id)
		}
		c.pendingMu.Unlock()
		if found {
			ch <- callResult{resp: msg}
		}
		return
	}

	select {
	case c.notifications <- line:
	default:
		logging.For("client/stratum").Warn().Str("method", msg.Method).Msg("dropping notification, buffer full")
	}
}

// normalizeID converts a JSON-RPC id (decoded as float64 or string) to the
// int64 key call() registered it under.
func normalizeID(id interface{}) (int64, bool) {
	switch v := id.(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Listen drains notify/set_difficulty/set_extranonce notifications off the
// shared read pump, submits parsed jobs to m, and forwards m's solved seeds
// as mining.submit calls. It returns on the first read/write error or ctx
// cancellation.
func (c *Client) Listen(ctx context.Context, m client.Miner) error {
	errCh := make(chan error, 1)
	go c.forwardSolutions(ctx, m.Solutions(), errCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-c.stopped:
			c.readErrMu.Lock()
			err := c.readErr
			c.readErrMu.Unlock()
			if err == nil {
				err = fmt.Errorf("stratum: connection closed")
			}
			return err
		case line := <-c.notifications:
			if err := c.handleLine(line, m); err != nil {
				logging.For("client/stratum").Warn().Err(err).Msg("discarding malformed stratum message")
			}
		}
	}
}

func (c *Client) handleLine(line []byte, m client.Miner) error {
	var msg response
	if err := json.Unmarshal(line, &msg); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	switch msg.Method {
	case "mining.notify":
		job, err := parseNotify(msg.Params)
		if err != nil {
			return fmt.Errorf("mining.notify: %w", err)
		}
		c.mu.Lock()
		c.jobs[job.JobID] = job
		c.mu.Unlock()
		seed := miner.BlockSeed{PartialBlock: &miner.PartialBlockSeed{
			JobID:      job.JobID,
			HeaderHash: job.HeaderHash,
			Timestamp:  job.Timestamp,
			Bits:       job.Bits,
			Target:     job.Target,
		}}
		return m.Submit(seed)
	case "mining.set_extranonce":
		var params []string
		if err := json.Unmarshal(msg.Params, &params); err != nil || len(params) == 0 {
			return fmt.Errorf("mining.set_extranonce: malformed params")
		}
		c.mu.Lock()
		c.extranonce = params[0]
		c.mu.Unlock()
		return nil
	case "mining.set_difficulty":
		return nil // difficulty is carried in mining.notify's bits field for this chain
	default:
		return nil
	}
}

// parseNotify accepts both notify shapes spec.md §6 requires: a short
// positional array [jobID, headerHashHex, timestamp, bits] or a long
// named-field object.
func parseNotify(raw json.RawMessage) (*PartialJob, error) {
	var positional []interface{}
	if err := json.Unmarshal(raw, &positional); err == nil && len(positional) >= 4 {
		jobID, _ := positional[0].(string)
		headerHashHex, _ := positional[1].(string)
		timestamp, _ := positional[2].(float64)
		bitsHex, _ := positional[3].(string)
		return buildPartialJob(jobID, headerHashHex, uint64(timestamp), bitsHex)
	}

	var named struct {
		JobID      string `json:"jobId"`
		HeaderHash string `json:"headerHash"`
		Timestamp  uint64 `json:"timestamp"`
		Bits       string `json:"bits"`
	}
	if err := json.Unmarshal(raw, &named); err != nil {
		return nil, fmt.Errorf("unrecognized mining.notify shape: %w", err)
	}
	return buildPartialJob(named.JobID, named.HeaderHash, named.Timestamp, named.Bits)
}

func buildPartialJob(jobID, headerHashHex string, timestamp uint64, bitsHex string) (*PartialJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("missing jobId")
	}
	headerHash, err := parseHashHex(headerHashHex)
	if err != nil {
		return nil, err
	}
	bits64, err := strconv.ParseUint(bitsHex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid bits %q: %w", bitsHex, err)
	}
	bits := uint32(bits64)
	return &PartialJob{
		JobID:      jobID,
		HeaderHash: headerHash,
		Timestamp:  timestamp,
		Bits:       bits,
		Target:     pow.CompactToTarget(bits),
	}, nil
}

func parseHashHex(s string) (pow.Hash256, error) {
	var h pow.Hash256
	if len(s) != len(h)*2 {
		return h, fmt.Errorf("hash %q has wrong length", s)
	}
	for i := range h {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return h, fmt.Errorf("invalid hex in hash %q: %w", s, err)
		}
		h[i] = byte(v)
	}
	return h, nil
}

// forwardSolutions submits solved partial-block seeds as mining.submit
// calls. It always sends the long (named-field) submit shape, an object with
// jobId, nonce and extranonce members; the short (positional array) submit
// shape is never sent.
func (c *Client) forwardSolutions(ctx context.Context, solutions <-chan miner.SolvedSeed, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case solved, ok := <-solutions:
			if !ok {
				return
			}
			if solved.Seed.PartialBlock == nil {
				continue // a stratum-driven coordinator only ever emits PartialBlock seeds
			}
			params := map[string]interface{}{
				"jobId":      solved.Seed.PartialBlock.JobID,
				"nonce":      strconv.FormatUint(solved.Nonce, 16),
				"extranonce": c.currentExtranonce(),
			}
			if _, err := c.call("mining.submit", params); err != nil {
				if stratumErr, ok := err.(*Error); ok {
					logging.For("client/stratum").Warn().Int("code", stratumErr.Code).Msg("share rejected")
					if metrics.Current != nil {
						metrics.Current.RejectedTotal.Inc()
					}
					continue
				}
				select {
				case errCh <- fmt.Errorf("stratum: submit: %w", err):
				default:
				}
				return
			}
			if metrics.Current != nil {
				metrics.Current.SolutionsTotal.Inc()
			}
		}
	}
}

func (c *Client) currentExtranonce() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extranonce
}

// call sends a JSON-RPC request and blocks (with a fixed timeout) for its
// matching reply, delivered by readPump over a per-call channel rather than
// read directly here, returning a typed *Error for a server-reported
// failure.
func (c *Client) call(method string, params interface{}) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	req := request{JSONRPC: "2.0", ID: id, Method: method, Params: rawParams}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ch := make(chan callResult, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.mu.Lock()
	_, err = c.conn.Write(append(line, '\n'))
	c.mu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, fmt.Errorf("write: %w", err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.resp.Error != nil {
			return nil, &Error{Code: res.resp.Error.Code, Message: res.resp.Error.Message}
		}
		return res.resp.Result, nil
	case <-time.After(10 * time.Second):
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, fmt.Errorf("stratum: %s: timed out waiting for reply", method)
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
