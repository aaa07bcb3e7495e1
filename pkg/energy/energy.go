// Package energy implements the level-entry energy gate: a capped pool
// spent to enter levels and refilled by elapsed-time regeneration.
//
// The gate has no timer of its own. Callers pass the current time to
// Regenerate whenever they want the pool caught up; the cadence of those
// calls belongs to the surrounding application.
package energy

import (
	"errors"
	"time"
)

// Wallet is one player's energy pool. Not safe for concurrent use; it is
// owned by the single flow that loaded it.
type Wallet struct {
	max           int
	current       int
	costPerLevel  int
	regenInterval time.Duration
	lastTick      time.Time
}

// ErrInvalidArgument indicates bad wallet parameters.
var ErrInvalidArgument = errors.New("energy: invalid argument")

// NewWallet creates a full wallet. regenInterval is the time to regenerate
// one point.
func NewWallet(max, costPerLevel int, regenInterval time.Duration, now time.Time) (*Wallet, error) {
	if max <= 0 || costPerLevel <= 0 || regenInterval <= 0 {
		return nil, ErrInvalidArgument
	}
	return &Wallet{
		max:           max,
		current:       max,
		costPerLevel:  costPerLevel,
		regenInterval: regenInterval,
		lastTick:      now,
	}, nil
}

// Current returns the points available.
func (w *Wallet) Current() int { return w.current }

// Max returns the pool cap.
func (w *Wallet) Max() int { return w.max }

// CostPerLevel returns the points one level entry costs.
func (w *Wallet) CostPerLevel() int { return w.costPerLevel }

// CanEnterLevel reports whether a level entry is affordable.
func (w *Wallet) CanEnterLevel() bool { return w.current >= w.costPerLevel }

// SpendLevel deducts one level entry. Returns false, without deducting,
// when the pool is short; running out of energy is a normal outcome, not
// an error.
func (w *Wallet) SpendLevel() bool {
	return w.Spend(w.costPerLevel)
}

// Spend deducts points if available. Callers regenerate first, so the
// wallet's regeneration anchor is already current when the pool leaves
// full.
func (w *Wallet) Spend(points int) bool {
	if points <= 0 || w.current < points {
		return false
	}
	w.current -= points
	return true
}

// Regenerate catches the pool up to now, crediting one point per full
// interval elapsed since the last credit. The remainder carries over via
// lastTick. Returns the points added. A full pool does not accumulate
// credit.
func (w *Wallet) Regenerate(now time.Time) int {
	if w.current >= w.max {
		w.lastTick = now
		return 0
	}
	elapsed := now.Sub(w.lastTick)
	if elapsed < w.regenInterval {
		return 0
	}

	points := int(elapsed / w.regenInterval)
	if w.current+points > w.max {
		points = w.max - w.current
		w.current = w.max
		w.lastTick = now
	} else {
		w.current += points
		w.lastTick = w.lastTick.Add(time.Duration(points) * w.regenInterval)
	}
	return points
}

// Snapshot is the persistence shape of a wallet.
type Snapshot struct {
	Current  int       `json:"current"`
	LastTick time.Time `json:"last_tick"`
}

// Snapshot captures the pool for persistence.
func (w *Wallet) Snapshot() Snapshot {
	return Snapshot{Current: w.current, LastTick: w.lastTick}
}

// Restore applies a saved snapshot, clamping into [0, max].
func (w *Wallet) Restore(s Snapshot) {
	w.current = s.Current
	if w.current > w.max {
		w.current = w.max
	}
	if w.current < 0 {
		w.current = 0
	}
	w.lastTick = s.LastTick
}
