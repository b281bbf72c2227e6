package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_DueReturnsOnlyElapsedActionsInOrder(t *testing.T) {
	s := NewScheduler()
	s.Schedule("a1", "b1", 0.2)
	s.Schedule("a2", "b2", 0.5)

	assert.Empty(t, s.Due(0.1))

	fired := s.Due(0.3)
	if assert.Len(t, fired, 1) {
		assert.Equal(t, "a1", fired[0].AttackerID)
		assert.Equal(t, "b1", fired[0].TargetID)
	}

	assert.Empty(t, s.Due(0.3), "already-fired actions must not fire again")

	fired = s.Due(0.6)
	if assert.Len(t, fired, 1) {
		assert.Equal(t, "a2", fired[0].AttackerID)
	}
}
