package refgen

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memChecker is a mutex-protected set standing in for persistent storage.
type memChecker struct {
	mu    sync.Mutex
	codes map[string]bool
}

func newMemChecker() *memChecker {
	return &memChecker{codes: make(map[string]bool)}
}

func (c *memChecker) Exists(_ context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[code], nil
}

func (c *memChecker) add(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[code] = true
}

type alwaysTaken struct{}

func (alwaysTaken) Exists(context.Context, string) (bool, error) { return true, nil }

type failingChecker struct{}

func (failingChecker) Exists(context.Context, string) (bool, error) {
	return false, errors.New("storage down")
}

func TestGenerate_Lengths(t *testing.T) {
	g := New(MovementReference, newMemChecker())
	code, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 10)

	g = New(SingleUseToken, newMemChecker())
	code, err = g.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 12)
}

func TestGenerate_Charset(t *testing.T) {
	g := New(MovementReference, newMemChecker())
	for i := 0; i < 50; i++ {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(charset, r), "unexpected rune %q in %q", r, code)
		}
	}
}

func TestGenerate_ExhaustsAttempts(t *testing.T) {
	g := New(MovementReference, alwaysTaken{})
	_, err := g.Generate(context.Background())
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
}

func TestGenerate_CheckerErrorPropagates(t *testing.T) {
	g := New(MovementReference, failingChecker{})
	_, err := g.Generate(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAttemptsExhausted)
}

// Races N generations against a shared pool and requires N distinct codes.
func TestGenerate_ConcurrentUniqueness(t *testing.T) {
	const n = 200
	checker := newMemChecker()
	g := New(MovementReference, checker)

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			code, err := g.Generate(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			// Persist immediately, as the orchestrator would.
			checker.add(code)
			mu.Lock()
			seen[code] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "expected %d distinct references", n)
}
