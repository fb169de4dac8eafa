package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardChain(t *testing.T) {
	chain := []string{Pending, Confirmed, Preparing, Ready, Shipped, Completed}
	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanTransition(chain[i], chain[i+1]),
			"%s -> %s should be allowed", chain[i], chain[i+1])
	}
}

func TestNoBackwardOrSkippingTransitions(t *testing.T) {
	chain := []string{Pending, Confirmed, Preparing, Ready, Shipped, Completed}
	for i, from := range chain {
		for j, to := range chain {
			if j == i+1 {
				continue
			}
			assert.False(t, CanTransition(from, to),
				"%s -> %s should be rejected", from, to)
		}
	}
}

func TestCancelOnlyFromPending(t *testing.T) {
	assert.True(t, CanTransition(Pending, Cancelled))

	for _, from := range []string{Confirmed, Preparing, Ready, Shipped, Completed, Cancelled} {
		assert.False(t, CanTransition(from, Cancelled),
			"cancel from %s should be rejected", from)
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	assert.True(t, IsTerminal(Completed))
	assert.True(t, IsTerminal(Cancelled))
	assert.Empty(t, Next(Completed))
	assert.Empty(t, Next(Cancelled))
}

func TestIsValid(t *testing.T) {
	for _, s := range []string{Pending, Confirmed, Preparing, Ready, Shipped, Completed, Cancelled} {
		assert.True(t, IsValid(s))
	}
	assert.False(t, IsValid("delivered"))
	assert.False(t, IsValid(""))
}

func TestIsValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent} {
		assert.True(t, IsValidPriority(p))
	}
	assert.False(t, IsValidPriority("critical"))
}

func TestUnknownStatusCannotTransition(t *testing.T) {
	assert.False(t, CanTransition("delivered", Completed))
	assert.False(t, CanTransition("", Pending))
}
