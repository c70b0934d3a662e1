package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_Has(t *testing.T) {
	s := New("web1", "web2")

	assert.True(t, s.Has("web1"))
	assert.False(t, s.Has("web3"))

	s.Remove("web1")
	assert.False(t, s.Has("web1"))
	assert.ElementsMatch(t, []string{"web2"}, s.Values())
}

func TestOrdered_Add(t *testing.T) {
	s := NewOrdered("b", "a", "b")

	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, []string{"b", "a", "c"}, s.Values())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has("c"))
}

func TestOrdered_ValuesIsCopy(t *testing.T) {
	s := NewOrdered(1, 2)

	values := s.Values()
	values[0] = 42

	assert.Equal(t, []int{1, 2}, s.Values())
}
