package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_AddHasDelete(t *testing.T) {
	s := New("a", "b")
	require.True(t, s.Has("a"))
	s.Add("c")
	require.True(t, s.Has("c"))
	s.Delete("a")
	require.False(t, s.Has("a"))
}

func TestClone_Independent(t *testing.T) {
	s := New("a")
	c := s.Clone()
	c.Add("b")
	require.False(t, s.Has("b"))
	require.True(t, c.Has("a"))
}
