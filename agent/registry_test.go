package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	planner, err := r.Add(newTestAgent("planner", nil))
	require.NoError(t, err)
	coder, err := r.Add(newTestAgent("coder", nil))
	require.NoError(t, err)
	reviewer, err := r.Add(newTestAgent("reviewer", nil))
	require.NoError(t, err)

	_, err = r.Add(newTestAgent("coder", nil))
	assert.ErrorIs(t, err, ErrDuplicateID)

	assert.Equal(t, 3, r.Len())
	idx, ok := r.Lookup("coder")
	require.True(t, ok)
	assert.Equal(t, coder, idx)

	a, ok := r.Get(reviewer)
	require.True(t, ok)
	assert.Equal(t, "reviewer", a.ID())
	_, ok = r.Get(7)
	assert.False(t, ok)

	require.NoError(t, r.AddDependency(coder, planner))
	require.NoError(t, r.AddDependency(reviewer, coder))
	require.NoError(t, r.AddDependency(reviewer, coder))
	assert.Equal(t, []int{coder}, r.Dependencies(reviewer))

	assert.ErrorIs(t, r.AddDependency(planner, reviewer), ErrDependency)
	assert.ErrorIs(t, r.AddDependency(coder, coder), ErrDependency)
	assert.ErrorIs(t, r.AddDependency(coder, 42), ErrUnknownAgent)
	assert.Empty(t, r.Dependencies(planner))
}
