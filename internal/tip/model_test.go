package tip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosedEnumerations(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		assert.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("taxi")
	assert.Error(t, err)
	_, err = ParseCategory("AUTO")
	assert.Error(t, err)

	var st Status
	assert.NoError(t, st.Scan("approved"))
	assert.Equal(t, StatusApproved, st)
	assert.Error(t, st.Scan("archived"))
	assert.Error(t, st.Scan(42))

	_, err = Status("archived").Value()
	assert.Error(t, err)

	var c Category
	assert.NoError(t, c.Scan([]byte("metro")))
	assert.Equal(t, CategoryMetro, c)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusApproved))
	assert.True(t, StatusPending.CanTransition(StatusRejected))
	assert.False(t, StatusPending.CanTransition(StatusPending))
	assert.False(t, StatusApproved.CanTransition(StatusRejected))
	assert.False(t, StatusApproved.CanTransition(StatusApproved))
	assert.False(t, StatusRejected.CanTransition(StatusApproved))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, int8(1), DirectionUp.weight())
	assert.Equal(t, int8(-1), DirectionDown.weight())
	assert.Equal(t, int8(0), DirectionClear.weight())
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}
