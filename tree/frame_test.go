package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/vtree/section"
)

func TestFrameStack_PushPop(t *testing.T) {
	var s frameStack
	require.Nil(t, s.top())
	require.Equal(t, 0, s.depth())

	f := s.push(kindArray, 3, 10)
	require.Equal(t, 1, s.depth())
	require.Same(t, f, s.top())
	require.Equal(t, kindArray, f.kind)
	require.Equal(t, 3, f.remaining())
	require.Equal(t, int64(10), f.start)

	d := s.push(kindDict, 1, 20)
	require.Equal(t, 2, s.depth())
	require.Same(t, d, s.top())

	s.pop()
	require.Equal(t, 1, s.depth())
	require.Equal(t, kindArray, s.top().kind)

	s.pop()
	require.Nil(t, s.top())
}

func TestFrameStack_ReusesKeySlice(t *testing.T) {
	var s frameStack

	f := s.push(kindDict, 2, 0)
	f.keys = append(f.keys, section.KeyIndexEntry{Digest: 1, Offset: 2}, section.KeyIndexEntry{Digest: 3, Offset: 4})
	f.written = 2
	f.keyPending = true
	s.pop()

	g := s.push(kindDict, 1, 50)
	require.Empty(t, g.keys)
	require.GreaterOrEqual(t, cap(g.keys), 2)
	require.Equal(t, 0, g.written)
	require.False(t, g.keyPending)
	require.Equal(t, int64(50), g.start)
}

func TestFrame_Remaining(t *testing.T) {
	f := frame{kind: kindArray, expected: 2}
	require.Equal(t, 2, f.remaining())

	f.written = 2
	require.Equal(t, 0, f.remaining())
}

func TestContainerKind_String(t *testing.T) {
	require.Equal(t, "array", kindArray.String())
	require.Equal(t, "dict", kindDict.String())
}
