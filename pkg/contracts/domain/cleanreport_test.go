package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReport_DroppedAndBalanced(t *testing.T) {
	report := CleanReport{
		InputRows:        10,
		Kept:             4,
		MissingCustomer:  2,
		Cancellations:    1,
		NonPositiveQty:   1,
		NonPositivePrice: 1,
		DuplicateRows:    1,
	}

	assert.Equal(t, 6, report.Dropped())
	assert.True(t, report.Balanced())

	report.Kept = 5
	assert.False(t, report.Balanced())
}

func TestCleanReport_Add(t *testing.T) {
	a := CleanReport{InputRows: 5, Kept: 3, MissingCustomer: 1, MalformedRows: 1}
	b := CleanReport{InputRows: 3, Kept: 2, Cancellations: 1}

	a.Add(b)

	assert.Equal(t, 8, a.InputRows)
	assert.Equal(t, 5, a.Kept)
	assert.Equal(t, 1, a.MissingCustomer)
	assert.Equal(t, 1, a.Cancellations)
	assert.Equal(t, 1, a.MalformedRows)
	assert.True(t, a.Balanced())
}

func TestCleanReport_ZeroValueBalances(t *testing.T) {
	assert.True(t, CleanReport{}.Balanced())
	assert.Zero(t, CleanReport{}.Dropped())
}
