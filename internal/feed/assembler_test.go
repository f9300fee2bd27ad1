package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dicetray/dicetray/internal/model"
	"github.com/dicetray/dicetray/internal/testutil"
)

type AssemblerSuite struct {
	suite.Suite
	ctx context.Context
}

func TestAssemblerSuite(t *testing.T) {
	suite.Run(t, new(AssemblerSuite))
}

func (s *AssemblerSuite) SetupTest() {
	s.ctx = context.Background()
}

func roll(id string) model.DieRoll {
	return model.DieRoll{ID: model.DieRollID(id), Dice: []model.Die{{Die: model.D6, Value: 4}}}
}

// newAssembler builds an assembler with no stagger for deterministic tests
func (s *AssemblerSuite) newAssembler(fetch FetchFunc) *Assembler {
	return New(fetch, Config{PollInterval: time.Hour, Stagger: -1}, testutil.NopLogger())
}

// drain collects the updates a single poll produces
func (s *AssemblerSuite) drain(a *Assembler, expected int) []Update {
	out := make(chan Update, 16)
	a.poll(s.ctx, out)
	close(out)

	var updates []Update
	for u := range out {
		updates = append(updates, u)
	}
	s.Require().Len(updates, expected)
	return updates
}

func (s *AssemblerSuite) TestFirstPollReplacesWholesale() {
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		return []model.DieRoll{roll("r3"), roll("r2"), roll("r1")}, nil
	})

	updates := s.drain(a, 1)
	s.Equal(UpdateReplace, updates[0].Kind)
	s.Len(updates[0].Rolls, 3)
	s.Equal(model.DieRollID("r3"), a.lastSeen)
}

func (s *AssemblerSuite) TestNewRowsAppendOldestFirst() {
	pages := [][]model.DieRoll{
		{roll("r1")},
		{roll("r3"), roll("r2"), roll("r1")},
	}
	call := 0
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		page := pages[call]
		call++
		return page, nil
	})

	s.drain(a, 1) // initial replace

	updates := s.drain(a, 2)
	s.Equal(UpdateAppend, updates[0].Kind)
	s.Equal(model.DieRollID("r2"), updates[0].Roll.ID)
	s.Equal(UpdateAppend, updates[1].Kind)
	s.Equal(model.DieRollID("r3"), updates[1].Roll.ID)
	s.Equal(model.DieRollID("r3"), a.lastSeen)
}

func (s *AssemblerSuite) TestUnchangedPageEmitsNothing() {
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		return []model.DieRoll{roll("r1")}, nil
	})

	s.drain(a, 1)
	s.drain(a, 0)
}

func (s *AssemblerSuite) TestAnchorFallingOffPageReplacesWholesale() {
	pages := [][]model.DieRoll{
		{roll("r1")},
		{roll("r9"), roll("r8"), roll("r7")},
	}
	call := 0
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		page := pages[call]
		call++
		return page, nil
	})

	s.drain(a, 1)

	updates := s.drain(a, 1)
	s.Equal(UpdateReplace, updates[0].Kind)
	s.Len(updates[0].Rolls, 3)
	s.Equal(model.DieRollID("r9"), a.lastSeen)
}

func (s *AssemblerSuite) TestEmptyPageEmitsNothing() {
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		return nil, nil
	})
	s.drain(a, 0)
}

func (s *AssemblerSuite) TestFetchErrorLeavesStateIntact() {
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		return nil, errors.New("boom")
	})

	s.drain(a, 0)
	s.Equal(StateIdle, a.State())
	s.Equal(model.DieRollID(""), a.lastSeen)
}

func (s *AssemblerSuite) TestTickSkippedWhileInFlight() {
	release := make(chan struct{})
	var calls sync.WaitGroup
	calls.Add(1)
	a := s.newAssembler(func(ctx context.Context) ([]model.DieRoll, error) {
		calls.Done()
		<-release
		return nil, nil
	})

	out := make(chan Update, 16)
	a.tryPoll(s.ctx, out)
	calls.Wait() // first poll is now blocked inside fetch

	// Further ticks must not start a second fetch
	a.tryPoll(s.ctx, out)
	a.tryPoll(s.ctx, out)
	s.True(a.inFlight.Load())

	close(release)
	s.Eventually(func() bool { return !a.inFlight.Load() }, time.Second, 5*time.Millisecond)
}

func (s *AssemblerSuite) TestRunStopsOnCancel() {
	a := New(func(ctx context.Context) ([]model.DieRoll, error) {
		return nil, nil
	}, Config{PollInterval: 5 * time.Millisecond, Stagger: -1}, testutil.NopLogger())

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	out := make(chan Update, 16)
	go func() { done <- a.Run(ctx, out) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("Run did not stop on cancel")
	}
}

func (s *AssemblerSuite) TestStaggerPausesBetweenAppends() {
	pages := [][]model.DieRoll{
		{roll("r1")},
		{roll("r4"), roll("r3"), roll("r2"), roll("r1")},
	}
	call := 0
	a := New(func(ctx context.Context) ([]model.DieRoll, error) {
		page := pages[call]
		call++
		return page, nil
	}, Config{PollInterval: time.Hour, Stagger: 10 * time.Millisecond}, testutil.NopLogger())

	out := make(chan Update, 16)
	a.poll(s.ctx, out)

	start := time.Now()
	a.poll(s.ctx, out)
	elapsed := time.Since(start)

	// Three appends, two pauses between them
	s.GreaterOrEqual(elapsed, 20*time.Millisecond)
	s.Len(out, 4)
}
