package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindFatal, KindOf(errors.New("plain")))
	assert.Equal(t, KindConnection, KindOf(NewError(KindConnection, "net down")))
}

func TestKindOfOutermostWins(t *testing.T) {
	inner := NewError(KindDataExtraction, "bad markup")
	outer := WrapError(KindConnection, "while loading", inner)

	assert.Equal(t, KindConnection, KindOf(outer))
	assert.True(t, errors.Is(outer, inner))
	assert.ErrorContains(t, outer, "bad markup")
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("selecting provider: %w", NewError(KindTargetSelection, "not found"))

	assert.True(t, IsKind(err, KindTargetSelection))
	assert.False(t, IsKind(err, KindConnection))
	assert.False(t, IsKind(nil, KindConnection))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := WrapError(KindConnection, "failed to load page", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load page: dial tcp: refused", err.Error())
}
