package likes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedCommitter blocks every commit until release is called
type gatedCommitter struct {
	mu      sync.Mutex
	calls   []bool
	gate    chan struct{}
	result  CommitResult
	err     error
	started chan struct{}
}

func newGated(result CommitResult, err error) *gatedCommitter {
	return &gatedCommitter{
		gate:    make(chan struct{}),
		result:  result,
		err:     err,
		started: make(chan struct{}, 8),
	}
}

func (g *gatedCommitter) commit(ctx context.Context, _ string, currentlyLiked bool) (CommitResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, currentlyLiked)
	g.mu.Unlock()
	g.started <- struct{}{}
	select {
	case <-g.gate:
	case <-ctx.Done():
		return CommitResult{}, ctx.Err()
	}
	return g.result, g.err
}

func (g *gatedCommitter) release() { close(g.gate) }

func wait(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o, ok := <-ch:
		require.True(t, ok, "outcome channel closed without a value")
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

func TestToggleIsOptimistic(t *testing.T) {
	g := newGated(CommitResult{Success: true}, nil)
	c := New("s1", false, 3, g.commit)

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)

	assert.Equal(t, State{Liked: true, Count: 4, Pending: true}, c.State())

	g.release()
	o := wait(t, ch)
	assert.NoError(t, o.Err)
	assert.Equal(t, State{Liked: true, Count: 4}, o.State)
	assert.Equal(t, State{Liked: true, Count: 4}, c.State())
	assert.Equal(t, []bool{false}, g.calls, "committer receives the pre-toggle state")
}

// A stale liked=true with a zero count still moves by exactly one.
func TestUnlikeAdjustsCountByOne(t *testing.T) {
	g := newGated(CommitResult{Success: true}, nil)
	c := New("s1", true, 0, g.commit)

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)
	assert.Equal(t, State{Liked: false, Count: -1, Pending: true}, c.State())

	g.release()
	o := wait(t, ch)
	require.NoError(t, o.Err)
	assert.Equal(t, State{Liked: false, Count: -1}, o.State)
}

func TestFailedCommitRollsBack(t *testing.T) {
	g := newGated(CommitResult{}, errors.New("network down"))
	c := New("s1", false, 3, g.commit)

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)
	g.release()

	o := wait(t, ch)
	assert.ErrorIs(t, o.Err, ErrMutationRejected)
	assert.Contains(t, o.Err.Error(), "network down")
	assert.Equal(t, State{Liked: false, Count: 3}, c.State())
}

func TestApplicationFailureRollsBack(t *testing.T) {
	g := newGated(CommitResult{Success: false, Error: "only approved submissions can be liked"}, nil)
	c := New("s1", true, 7, g.commit)

	ch, _ := c.Toggle(context.Background())
	assert.Equal(t, State{Liked: false, Count: 6, Pending: true}, c.State())
	g.release()

	o := wait(t, ch)
	assert.ErrorIs(t, o.Err, ErrMutationRejected)
	assert.Equal(t, State{Liked: true, Count: 7}, c.State())
}

func TestToggleWhilePendingIsRejected(t *testing.T) {
	g := newGated(CommitResult{Success: true}, nil)
	c := New("s1", false, 3, g.commit)

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)
	<-g.started

	second, ok := c.Toggle(context.Background())
	assert.False(t, ok)
	assert.Nil(t, second)
	assert.Equal(t, State{Liked: true, Count: 4, Pending: true}, c.State())

	g.release()
	wait(t, ch)
	assert.Len(t, g.calls, 1)
}

func TestDestroyMidCommitDiscardsResult(t *testing.T) {
	g := newGated(CommitResult{}, errors.New("would roll back"))
	c := New("s1", false, 3, g.commit)

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)
	<-g.started

	c.Destroy()
	before := c.State()
	g.release()

	o := wait(t, ch)
	assert.True(t, o.Discarded)
	assert.NoError(t, o.Err)
	assert.Equal(t, before, c.State(), "late result must not mutate a destroyed instance")

	_, ok = c.Toggle(context.Background())
	assert.False(t, ok)
	assert.False(t, c.Alive())
}

func TestPanickingCommitterRollsBack(t *testing.T) {
	c := New("s1", false, 0, func(context.Context, string, bool) (CommitResult, error) {
		panic("boom")
	})

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)

	o := wait(t, ch)
	assert.ErrorIs(t, o.Err, ErrMutationRejected)
	assert.Equal(t, State{Liked: false, Count: 0}, c.State())
}

func TestCancelledContextRollsBack(t *testing.T) {
	g := newGated(CommitResult{Success: true}, nil)
	c := New("s1", false, 1, g.commit)

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := c.Toggle(ctx)
	<-g.started
	cancel()

	o := wait(t, ch)
	assert.ErrorIs(t, o.Err, ErrMutationRejected)
	assert.Equal(t, State{Liked: false, Count: 1}, c.State())
}

func TestConcurrentTogglesAcceptOne(t *testing.T) {
	g := newGated(CommitResult{Success: true}, nil)
	c := New("s1", false, 10, g.commit)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []<-chan Outcome
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ch, ok := c.Toggle(context.Background()); ok {
				mu.Lock()
				accepted = append(accepted, ch)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, accepted, 1)
	assert.Equal(t, 11, c.State().Count)

	g.release()
	wait(t, accepted[0])
	assert.Equal(t, State{Liked: true, Count: 11}, c.State())
}

func TestSequentialTogglesAfterCompletion(t *testing.T) {
	var calls []bool
	c := New("s1", false, 2, func(_ context.Context, _ string, liked bool) (CommitResult, error) {
		calls = append(calls, liked)
		return CommitResult{Success: true}, nil
	})

	ch, ok := c.Toggle(context.Background())
	require.True(t, ok)
	wait(t, ch)

	ch, ok = c.Toggle(context.Background())
	require.True(t, ok)
	wait(t, ch)

	assert.Equal(t, State{Liked: false, Count: 2}, c.State())
	assert.Equal(t, []bool{false, true}, calls)
}
