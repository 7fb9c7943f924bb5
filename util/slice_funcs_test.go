package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	xs := []string{"a", "b", "c"}

	assert.True(t, Contains(xs, "b"))
	assert.False(t, Contains(xs, "d"))
	assert.False(t, Contains(nil, 1))
}

func TestMap(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(x int) int { return 2 * x })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	assert.Empty(t, Map(nil, func(x int) int { return x }))
}

func TestFilter(t *testing.T) {
	odd := Filter([]int{1, 2, 3, 4, 5}, func(x int) bool { return x%2 == 1 })
	assert.Equal(t, []int{1, 3, 5}, odd)

	assert.Nil(t, Filter([]int{2, 4}, func(x int) bool { return x%2 == 1 }))
}
