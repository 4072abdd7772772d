// Package likes holds the client-side optimistic like toggle.
//
// A Coordinator owns the like state of one submission as displayed by one
// view. Toggle flips the state immediately and commits in the background; a
// failed commit restores the exact state from before the toggle. At most one
// commit is in flight per Coordinator, and results arriving after Destroy are
// dropped.
package likes

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrMutationRejected wraps every failed commit surfaced in an Outcome
var ErrMutationRejected = errors.New("like mutation rejected")

// CommitResult is the server's answer to a toggle
type CommitResult struct {
	Success bool
	Liked   bool
	Count   int
	Error   string
}

// Committer persists a toggle. currentlyLiked is the state before the toggle.
type Committer func(ctx context.Context, submissionID string, currentlyLiked bool) (CommitResult, error)

// State is a snapshot of a coordinator
type State struct {
	Liked   bool
	Count   int
	Pending bool
}

// Outcome is delivered once per accepted toggle
type Outcome struct {
	SubmissionID string
	State        State
	Err          error
	// Discarded is set when the coordinator was destroyed before the commit returned
	Discarded bool
}

type Coordinator struct {
	submissionID string
	commit       Committer

	mu      sync.Mutex
	liked   bool
	count   int
	pending bool
	alive   bool
}

// New creates a coordinator from server-provided state
func New(submissionID string, liked bool, count int, commit Committer) *Coordinator {
	return &Coordinator{
		submissionID: submissionID,
		commit:       commit,
		liked:        liked,
		count:        count,
		alive:        true,
	}
}

func (c *Coordinator) SubmissionID() string { return c.submissionID }

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Liked: c.liked, Count: c.count, Pending: c.pending}
}

// Toggle applies the optimistic flip and starts the commit. It returns false
// without touching state while a commit is pending or after Destroy. The
// returned channel receives exactly one Outcome and is then closed.
func (c *Coordinator) Toggle(ctx context.Context) (<-chan Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive || c.pending {
		return nil, false
	}

	prevLiked, prevCount := c.liked, c.count
	c.liked = !prevLiked
	if c.liked {
		c.count = prevCount + 1
	} else {
		c.count = prevCount - 1
	}
	c.pending = true

	out := make(chan Outcome, 1)
	go c.run(ctx, prevLiked, prevCount, out)
	return out, true
}

func (c *Coordinator) run(ctx context.Context, prevLiked bool, prevCount int, out chan<- Outcome) {
	defer close(out)

	err := c.callCommit(ctx, prevLiked)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive {
		out <- Outcome{SubmissionID: c.submissionID, Discarded: true}
		return
	}

	c.pending = false
	outcome := Outcome{SubmissionID: c.submissionID}
	if err != nil {
		c.liked, c.count = prevLiked, prevCount
		outcome.Err = fmt.Errorf("%w: %v", ErrMutationRejected, err)
	}
	outcome.State = State{Liked: c.liked, Count: c.count}
	out <- outcome
}

func (c *Coordinator) callCommit(ctx context.Context, prevLiked bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("commit panicked: %v", r)
		}
	}()

	res, err := c.commit(ctx, c.submissionID, prevLiked)
	if err != nil {
		return err
	}
	if !res.Success {
		if res.Error != "" {
			return errors.New(res.Error)
		}
		return errors.New("server reported failure")
	}
	return nil
}

// Destroy marks the coordinator dead. Pending commits still finish but their
// results no longer change state.
func (c *Coordinator) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
}

func (c *Coordinator) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}
