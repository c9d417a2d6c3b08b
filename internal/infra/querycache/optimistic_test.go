package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateAppliesBeforeCallCompletes(t *testing.T) {
	c := newTestCache(time.Minute)
	c.Put("stock", 3)

	observed := make(chan any, 1)
	err := Mutate(context.Background(), c, Mutation[int]{
		Key:   "stock",
		Apply: func(prev int) int { return prev - 1 },
		Call: func(ctx context.Context) error {
			v, _ := c.Peek("stock")
			observed <- v

			return nil
		},
		Commit: KeepOnSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, <-observed, "readers must see the optimistic value while the call is in flight")
}

func TestMutateRollsBackSnapshotOnFailure(t *testing.T) {
	c := newTestCache(time.Minute)
	c.Put("cart", []string{"a", "b"})

	err := Mutate(context.Background(), c, Mutation[[]string]{
		Key:   "cart",
		Apply: func(prev []string) []string { return append(append([]string{}, prev...), "c") },
		Call: func(ctx context.Context) error {
			return errors.New("backend rejected")
		},
	})
	require.Error(t, err)

	v, ok := c.Peek("cart")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v, "failure must restore the snapshot verbatim")
}

func TestMutateRollbackDeletesEntryThatDidNotExist(t *testing.T) {
	c := newTestCache(time.Minute)

	err := Mutate(context.Background(), c, Mutation[int]{
		Key:   "fresh",
		Apply: func(prev int) int { return prev + 1 },
		Call: func(ctx context.Context) error {
			return errors.New("nope")
		},
	})
	require.Error(t, err)

	_, ok := c.Peek("fresh")
	assert.False(t, ok, "rollback of a first write must remove the entry entirely")
}

func TestMutateInvalidatesOnSuccess(t *testing.T) {
	c := newTestCache(time.Minute)
	c.Put("books", "old")
	c.Put("loans", "old")

	err := Mutate(context.Background(), c, Mutation[string]{
		Key:            "books",
		Apply:          func(prev string) string { return "optimistic" },
		Call:           func(ctx context.Context) error { return nil },
		Commit:         InvalidateOnSuccess,
		AlsoInvalidate: []string{"loans"},
	})
	require.NoError(t, err)

	_, fresh := c.fresh("books")
	assert.False(t, fresh)
	_, fresh = c.fresh("loans")
	assert.False(t, fresh)

	// The optimistic value is still peekable until the refetch lands.
	v, ok := c.Peek("books")
	require.True(t, ok)
	assert.Equal(t, "optimistic", v)
}

func TestMutateKeepsValueOnSuccess(t *testing.T) {
	c := newTestCache(time.Minute)
	c.Put("cart", 1)

	err := Mutate(context.Background(), c, Mutation[int]{
		Key:    "cart",
		Apply:  func(prev int) int { return prev + 1 },
		Call:   func(ctx context.Context) error { return nil },
		Commit: KeepOnSuccess,
	})
	require.NoError(t, err)

	v, fresh := c.fresh("cart")
	require.True(t, fresh)
	assert.Equal(t, 2, v)
}

func TestMutateReconcilesInInitiationOrder(t *testing.T) {
	c := newTestCache(time.Minute)
	c.Put("k", 0)

	firstApplied := make(chan struct{})
	firstMayFinish := make(chan struct{})
	firstDone := make(chan struct{})
	secondDone := make(chan struct{})

	go func() {
		defer close(firstDone)
		err := Mutate(context.Background(), c, Mutation[int]{
			Key: "k",
			Apply: func(prev int) int {
				close(firstApplied)

				return prev + 1
			},
			Call: func(ctx context.Context) error {
				// Hold the first call open so the second one finishes its
				// network call before the first does.
				<-firstMayFinish

				return nil
			},
			Commit: KeepOnSuccess,
		})
		assert.NoError(t, err)
	}()

	<-firstApplied

	go func() {
		defer close(secondDone)
		err := Mutate(context.Background(), c, Mutation[int]{
			Key:    "k",
			Apply:  func(prev int) int { return prev + 10 },
			Call:   func(ctx context.Context) error { return nil },
			Commit: KeepOnSuccess,
		})
		assert.NoError(t, err)
	}()

	// The second mutation's call has completed, but it must not reconcile
	// while the first one is still in flight.
	select {
	case <-secondDone:
		t.Fatal("second mutation reconciled before the first settled")
	case <-time.After(50 * time.Millisecond):
	}

	close(firstMayFinish)
	<-firstDone
	<-secondDone

	v, ok := c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 11, v)
}
