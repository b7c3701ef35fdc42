package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_OnlyRequestUser(t *testing.T) {
	s := NewState("a todo app")
	assert.Equal(t, []Field{FieldRequestUser}, s.Fields())
	assert.Equal(t, "a todo app", s.Value(FieldRequestUser))
	assert.False(t, s.Has(FieldRequirements))
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	s := NewState("x")
	next, err := Merge(s, Update{FieldRequirements: "reqs"})
	require.NoError(t, err)

	assert.False(t, s.Has(FieldRequirements))
	assert.Equal(t, "reqs", next.Value(FieldRequirements))
	assert.Equal(t, "x", next.Value(FieldRequestUser))
}

func TestMerge_SiblingsDisjoint(t *testing.T) {
	s := NewState("x")
	next, err := Merge(s,
		Update{FieldOutputUIDesigner: "ui"},
		Update{FieldOutputUXWriter: "ux"},
	)
	require.NoError(t, err)
	assert.Equal(t, "ui", next.Value(FieldOutputUIDesigner))
	assert.Equal(t, "ux", next.Value(FieldOutputUXWriter))
}

func TestMerge_SiblingConflict(t *testing.T) {
	_, err := Merge(NewState("x"),
		Update{FieldOutputCSS: "a"},
		Update{FieldOutputCSS: "b"},
	)
	var conflict *ConflictingWriteError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, FieldOutputCSS, conflict.Field)
}

func TestMerge_OverwritesEarlierValue(t *testing.T) {
	s, err := Merge(NewState("x"), Update{FieldInstructionsHTML: "plan"})
	require.NoError(t, err)

	s, err = Merge(s, Update{FieldInstructionsHTML: "integrated"})
	require.NoError(t, err)
	assert.Equal(t, "integrated", s.Value(FieldInstructionsHTML))
}

func TestMerge_NeverClearsUntouchedFields(t *testing.T) {
	s, err := Merge(NewState("x"), Update{FieldRequirements: "r", FieldOutputHTML: "<p>"})
	require.NoError(t, err)

	s, err = Merge(s, Update{FieldOutputCSS: "p{}"})
	require.NoError(t, err)
	assert.Equal(t, "r", s.Value(FieldRequirements))
	assert.Equal(t, "<p>", s.Value(FieldOutputHTML))
}

func TestMerge_RejectsRequestUserAndUnknownFields(t *testing.T) {
	_, err := Merge(NewState("x"), Update{FieldRequestUser: "y"})
	assert.ErrorContains(t, err, "read-only")

	_, err = Merge(NewState("x"), Update{Field("bogus"): "y"})
	assert.ErrorContains(t, err, "unknown state field")
}

func TestMerge_EmptyBatch(t *testing.T) {
	s := NewState("x")
	next, err := Merge(s)
	require.NoError(t, err)
	assert.Equal(t, s.Map(), next.Map())
}

func TestState_Project(t *testing.T) {
	s, err := Merge(NewState("x"), Update{FieldRequirements: "r", FieldOutputHTML: "h"})
	require.NoError(t, err)

	p := s.Project(FieldRequirements, FieldOutputJS)
	assert.Equal(t, []Field{FieldRequirements}, p.Fields())
}

func TestAllFields(t *testing.T) {
	fields := AllFields()
	assert.Len(t, fields, 12)
	for _, f := range fields {
		assert.True(t, f.Valid())
	}
	assert.False(t, Field("outputTS").Valid())
}
