// Package feed turns a polled newest-first roll page into an incremental
// stream of updates, for consumers that want to display live activity
// without re-rendering the whole page each poll.
package feed

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dicetray/dicetray/internal/model"
)

// State is where the assembler currently is in its poll cycle
type State int32

const (
	// StateIdle means the assembler is waiting for the next tick
	StateIdle State = iota
	// StatePolling means a fetch is in progress
	StatePolling
	// StateReconciling means a fetched page is being diffed and emitted
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}

// UpdateKind discriminates assembler updates
type UpdateKind string

const (
	// UpdateAppend carries one new roll to append to the display
	UpdateAppend UpdateKind = "append"
	// UpdateReplace carries a whole page that should replace the display
	UpdateReplace UpdateKind = "replace"
)

// Update is one instruction to the consumer. Append sets Roll; Replace sets
// Rolls (newest first, as fetched).
type Update struct {
	Kind  UpdateKind
	Roll  *model.DieRoll
	Rolls []model.DieRoll
}

// FetchFunc fetches the current roll page, newest first
type FetchFunc func(ctx context.Context) ([]model.DieRoll, error)

// Config holds assembler tuning
type Config struct {
	// PollInterval is how often to fetch; default 2s
	PollInterval time.Duration
	// Stagger is the pause between consecutive appends from one
	// reconcile, so a burst of rolls arrives readably; default 250ms,
	// negative to disable
	Stagger time.Duration
}

// DefaultConfig returns default assembler tuning
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		Stagger:      250 * time.Millisecond,
	}
}

// Assembler polls a roll page and reconciles it against what it last saw.
// New rolls above the last-known one are appended one at a time; if the
// last-known roll has fallen off the page the whole page is replaced.
// Runs until its context is cancelled.
type Assembler struct {
	fetch  FetchFunc
	cfg    Config
	logger *slog.Logger

	state    atomic.Int32
	inFlight atomic.Bool

	// lastSeen is the id of the newest roll already emitted; empty until
	// the first successful poll
	lastSeen model.DieRollID
}

// New creates a new Assembler. Zero config fields take defaults.
func New(fetch FetchFunc, cfg Config, logger *slog.Logger) *Assembler {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Stagger == 0 {
		cfg.Stagger = def.Stagger
	} else if cfg.Stagger < 0 {
		cfg.Stagger = 0
	}
	return &Assembler{
		fetch:  fetch,
		cfg:    cfg,
		logger: logger,
	}
}

// State returns the assembler's current state
func (a *Assembler) State() State {
	return State(a.state.Load())
}

// Run polls until ctx is cancelled, sending updates to out. A tick that
// arrives while a previous poll is still fetching or reconciling is skipped
// rather than queued, so a slow server never builds a backlog.
func (a *Assembler) Run(ctx context.Context, out chan<- Update) error {
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	a.tryPoll(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.tryPoll(ctx, out)
		}
	}
}

// tryPoll starts a poll unless one is already in flight
func (a *Assembler) tryPoll(ctx context.Context, out chan<- Update) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer a.inFlight.Store(false)
		a.poll(ctx, out)
	}()
}

// poll runs one fetch-and-reconcile cycle
func (a *Assembler) poll(ctx context.Context, out chan<- Update) {
	a.state.Store(int32(StatePolling))
	defer a.state.Store(int32(StateIdle))

	page, err := a.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.WarnContext(ctx, "feed poll failed", "error", err)
		}
		return
	}

	a.state.Store(int32(StateReconciling))
	a.reconcile(ctx, page, out)
}

// reconcile diffs a fetched page against the last emitted roll and sends the
// appropriate updates
func (a *Assembler) reconcile(ctx context.Context, page []model.DieRoll, out chan<- Update) {
	if len(page) == 0 {
		return
	}

	anchor := a.anchorIndex(page)
	if anchor < 0 {
		// First page, or the anchor fell off the window; start over
		if a.send(ctx, out, Update{Kind: UpdateReplace, Rolls: page}) {
			a.lastSeen = page[0].ID
		}
		return
	}

	// Rows above the anchor are new; emit oldest first with a pause
	// between each so a burst reads as individual rolls
	for i := anchor - 1; i >= 0; i-- {
		roll := page[i]
		if !a.send(ctx, out, Update{Kind: UpdateAppend, Roll: &roll}) {
			return
		}
		a.lastSeen = roll.ID
		if i > 0 && a.cfg.Stagger > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.cfg.Stagger):
			}
		}
	}
}

// anchorIndex locates the last emitted roll in the page, -1 if absent
func (a *Assembler) anchorIndex(page []model.DieRoll) int {
	if a.lastSeen == "" {
		return -1
	}
	for i, roll := range page {
		if roll.ID == a.lastSeen {
			return i
		}
	}
	return -1
}

// send delivers an update unless the context is done first
func (a *Assembler) send(ctx context.Context, out chan<- Update, update Update) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- update:
		return true
	}
}
