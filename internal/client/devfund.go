package client

import (
	"sync/atomic"

	"github.com/pyrinminer/pyrinminer/internal/address"
)

// Rotator decides, once per GetBlockTemplate request, whether the upstream
// payout address should be substituted with the devfund address. Grounded
// on spec.md §6's devfund rotation contract and testable property F: with
// devfundPercentBps out of 10,000, exactly that many of every 10,000
// consecutive requests target the devfund address.
type Rotator struct {
	minerAddress   string
	devfundAddress string
	percentBps     int
	enabled        bool

	counter uint64 // atomic, incremented per Next() call
}

// NewRotator builds a Rotator for minerAddress/devfundAddress. It disables
// itself permanently if devfundAddress is empty, percentBps is zero, or the
// two addresses are on different networks (paying a devfund address on the
// wrong network would burn the reward).
func NewRotator(minerAddress, devfundAddress string, percentBps int) *Rotator {
	enabled := devfundAddress != "" && percentBps > 0 && address.SameNetwork(minerAddress, devfundAddress)
	return &Rotator{
		minerAddress:   minerAddress,
		devfundAddress: devfundAddress,
		percentBps:     percentBps,
		enabled:        enabled,
	}
}

// Enabled reports whether this Rotator will ever substitute the devfund
// address.
func (r *Rotator) Enabled() bool {
	return r != nil && r.enabled
}

// PayAddress returns the address the next GetBlockTemplate request should
// use: the devfund address for percentBps out of every 10,000 consecutive
// calls, the miner's own address otherwise.
func (r *Rotator) PayAddress() string {
	if r == nil || !r.enabled {
		if r == nil {
			return ""
		}
		return r.minerAddress
	}
	n := atomic.AddUint64(&r.counter, 1) - 1
	if int(n%10000) < r.percentBps {
		return r.devfundAddress
	}
	return r.minerAddress
}
