package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcat2(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"a": 1}
	b := map[string]int{"b": 2, "c": 3}

	all := maps.Collect(Concat2(maps.All(a), maps.All(b)))
	assert.Equal(map[string]int{"a": 1, "b": 2, "c": 3}, all)

	count := 0
	for range Concat2(maps.All(a), maps.All(b)) {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestSorted2(t *testing.T) {
	assert := assert.New(t)

	var keys []string
	var values []int
	for key, value := range Sorted2(Concat2(
		maps.All(map[string]int{"z": 1, "m": 2}),
		maps.All(map[string]int{"a": 3, "m": 4}),
	)) {
		keys = append(keys, key)
		values = append(values, value)
	}

	assert.Equal([]string{"a", "m", "z"}, keys)
	assert.Equal([]int{3, 4, 1}, values)
}
