// Package refgen produces unique, collision-checked reference codes for
// movements and single-use tokens.
package refgen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// A collision is already astronomically unlikely at these lengths; the bound
// exists so a broken existence check cannot spin forever.
const maxAttempts = 20

// ErrAttemptsExhausted is returned when no free code was found within the
// attempt bound.
var ErrAttemptsExhausted = errors.New("refgen: attempts exhausted without a unique code")

// Kind selects the reference namespace and code length.
type Kind int

const (
	// MovementReference is the 10-character internal reference assigned to
	// transfers and payments.
	MovementReference Kind = iota
	// SingleUseToken is the 12-character code used for one-shot operations
	// such as cardless withdrawals.
	SingleUseToken
)

func (k Kind) length() int {
	if k == SingleUseToken {
		return 12
	}
	return 10
}

// Checker reports whether a candidate code is already present in persistent
// storage for the generator's namespace.
type Checker interface {
	Exists(ctx context.Context, code string) (bool, error)
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context, code string) (bool, error)

func (f CheckerFunc) Exists(ctx context.Context, code string) (bool, error) {
	return f(ctx, code)
}

// Generator draws random codes and retries until the checker reports the
// candidate free. Generation has no side effects; the caller must persist the
// chosen code atomically with its owning record (a unique constraint), since
// the check-then-write window cannot be closed here.
type Generator struct {
	kind    Kind
	checker Checker
}

func New(kind Kind, checker Checker) *Generator {
	return &Generator{kind: kind, checker: checker}
}

// Generate returns a code not currently present per the checker, or
// ErrAttemptsExhausted after the attempt bound.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := draw(g.kind.length())
		if err != nil {
			return "", fmt.Errorf("refgen: drawing candidate: %w", err)
		}
		taken, err := g.checker.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("refgen: existence check: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrAttemptsExhausted
}

func draw(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}
