package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseEmpty(t *testing.T) {
	assert.Nil(t, Choose(nil))
	assert.Nil(t, Choose([]Supplier{}))
}

func TestChooseSkipsInactive(t *testing.T) {
	chosen := Choose([]Supplier{
		{ID: 1, Active: false, Priority: 100},
		{ID: 2, Active: true, Priority: 1},
	})
	require.NotNil(t, chosen)
	assert.Equal(t, int64(2), int64(chosen.ID))
}

func TestChooseAllInactive(t *testing.T) {
	assert.Nil(t, Choose([]Supplier{
		{ID: 1, Active: false},
		{ID: 2, Active: false},
	}))
}

func TestChooseHighestPriorityWins(t *testing.T) {
	chosen := Choose([]Supplier{
		{ID: 1, Active: true, Priority: 5},
		{ID: 2, Active: true, Priority: 9},
		{ID: 3, Active: true, Priority: 7},
	})
	require.NotNil(t, chosen)
	assert.Equal(t, int64(2), int64(chosen.ID))
}

func TestChooseTieBrokenByLowestID(t *testing.T) {
	suppliers := []Supplier{
		{ID: 9, Active: true, Priority: 5},
		{ID: 3, Active: true, Priority: 5},
		{ID: 7, Active: true, Priority: 5},
	}

	// Same answer regardless of input order.
	for i := 0; i < len(suppliers); i++ {
		rotated := append(suppliers[i:], suppliers[:i]...)
		chosen := Choose(rotated)
		require.NotNil(t, chosen)
		assert.Equal(t, int64(3), int64(chosen.ID))
	}
}

func TestChooseDoesNotMutateInput(t *testing.T) {
	suppliers := []Supplier{
		{ID: 2, Active: true, Priority: 1},
		{ID: 1, Active: true, Priority: 9},
	}
	Choose(suppliers)
	assert.Equal(t, int64(2), int64(suppliers[0].ID))
	assert.Equal(t, int64(1), int64(suppliers[1].ID))
}
