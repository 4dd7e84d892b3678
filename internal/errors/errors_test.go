package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSetsMetadata(t *testing.T) {
	t.Parallel()

	err := Newf("dbh must be positive, got %v", -2.0).
		Component("estimate").
		Category(CategoryValidation).
		Context("dbh", -2.0).
		Build()

	assert.Equal(t, "estimate", err.Component)
	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, "dbh must be positive, got -2", err.Error())
	require.NotNil(t, err.GetContext())
	assert.Equal(t, -2.0, err.GetContext()["dbh"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := New(NewStd("boom")).Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.NotEmpty(t, err.Component)
}

func TestUnwrapPreservesCause(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("missing row")
	err := New(fmt.Errorf("loading table: %w", sentinel)).
		Category(CategoryReferenceData).
		Build()

	assert.True(t, Is(err, sentinel))
	assert.True(t, IsCategory(err, CategoryReferenceData))
	assert.False(t, IsCategory(err, CategoryValidation))
}

type testCategorized struct{ msg string }

func (e *testCategorized) Error() string                { return e.msg }
func (e *testCategorized) ErrorCategory() ErrorCategory { return CategorySpeciesResolution }

func TestBuildPreservesCauseCategory(t *testing.T) {
	t.Parallel()

	cause := &testCategorized{msg: "unresolved species"}
	err := New(fmt.Errorf("batch failed: %w", cause)).Build()
	assert.Equal(t, CategorySpeciesResolution, err.Category)
	assert.True(t, IsCategory(err, CategorySpeciesResolution))
}

func TestInvalidPriorityFallsBack(t *testing.T) {
	t.Parallel()

	err := New(NewStd("x")).Priority("urgent!!").Build()
	assert.Equal(t, PriorityMedium, err.Priority)
}
