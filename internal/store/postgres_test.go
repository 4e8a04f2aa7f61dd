package store

import (
	"testing"

	"areasense/internal/area"
	"areasense/internal/tip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTipReferenceError(t *testing.T) {
	assert.ErrorIs(t, tipReferenceError(false), area.ErrNotFound)

	var verr *tip.ValidationError
	require.ErrorAs(t, tipReferenceError(true), &verr)
	assert.Equal(t, "author_id", verr.Field)
}
