package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryDays(t *testing.T) {
	tests := []struct {
		name     string
		category string
		expected int
	}{
		{name: "dairy keeps a week", category: CategoryDairy, expected: 7},
		{name: "meat keeps five days", category: CategoryMeat, expected: 5},
		{name: "vegetables keep ten days", category: CategoryVegetable, expected: 10},
		{name: "fruit keeps a week", category: CategoryFruit, expected: 7},
		{name: "grains keep two weeks", category: CategoryGrain, expected: 14},
		{name: "seasonings keep a year", category: CategorySeasoning, expected: 365},
		{name: "frozen falls back to default", category: CategoryFrozen, expected: 7},
		{name: "unknown category falls back to default", category: "무지개", expected: 7},
		{name: "empty category falls back to default", category: "", expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpiryDays(tt.category))
		})
	}
}

func TestDefaultExpiryDate(t *testing.T) {
	now := time.Date(2025, 8, 29, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-09-05", DefaultExpiryDate(CategoryDairy, now))
	assert.Equal(t, "2025-09-03", DefaultExpiryDate(CategoryMeat, now))
	assert.Equal(t, "2026-08-29", DefaultExpiryDate(CategorySeasoning, now))
	assert.Equal(t, "2025-09-05", DefaultExpiryDate("모름", now), "unknown category gets the default shelf life")
}
