package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSetDropsDuplicatesAndEmpties(t *testing.T) {
	s := NewSet([]string{"laser", "", "vacuum", "laser", "Laser"})
	assert.Equal(t, []string{"laser", "vacuum", "Laser"}, s.Items())
	assert.Equal(t, 3, s.Len())
}

func TestSetMatchIsCaseInsensitive(t *testing.T) {
	s := NewSet([]string{"Laser", "laser_timing", "vacuum"})
	assert.Equal(t, []string{"Laser", "laser_timing"}, s.Match("LAS"))
	assert.Equal(t, []string{"vacuum"}, s.Match("vac"))
	assert.Empty(t, s.Match("xyz"))
	assert.Len(t, s.Match(""), 3)
}

func TestNilSetIsEmpty(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Items())
	assert.Nil(t, s.Match("a"))
}

func TestSetItemsReturnsCopy(t *testing.T) {
	s := NewSet([]string{"a", "b"})
	items := s.Items()
	items[0] = "z"
	assert.Equal(t, []string{"a", "b"}, s.Items())
}
