package growable_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/willabides/yamlstream/internal/growable"
	"github.com/willabides/yamlstream/internal/yamlh"
)

func TestStack(t *testing.T) {
	var s growable.Stack[int]
	require.True(t, s.Empty())
	require.Nil(t, s.Top())
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Push(i))
	}
	require.Equal(t, 100, s.Len())
	require.GreaterOrEqual(t, s.Cap(), 100)
	require.Equal(t, 99, *s.Top())
	require.Equal(t, 10, *s.At(10))
	require.Equal(t, 99, s.Pop())
	require.Equal(t, 98, s.Pop())
	s.Truncate(3)
	require.Equal(t, []int{0, 1, 2}, s.Items())
}

func TestStackLimit(t *testing.T) {
	s := growable.NewStack[string](20)
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Push("x"))
	}
	err := s.Push("y")
	require.Error(t, err)
	require.Equal(t, yamlh.MEMORY_ERROR, yamlh.ErrorKind(err))
	// The failed push leaves the stack as it was.
	require.Equal(t, 20, s.Len())
	require.Equal(t, "x", *s.Top())
}

func TestQueue(t *testing.T) {
	var q growable.Queue[int]
	require.True(t, q.Empty())
	require.Nil(t, q.Head())
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	require.Equal(t, 0, q.Dequeue())
	require.Equal(t, 1, q.Dequeue())
	require.NoError(t, q.Insert(1, 100))
	var got []int
	for !q.Empty() {
		got = append(got, q.Dequeue())
	}
	require.Equal(t, []int{2, 100, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueueReusesFront(t *testing.T) {
	q := growable.NewQueue[int](16)
	for i := 0; i < 16; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	require.Error(t, q.Enqueue(16))
	require.Equal(t, 0, q.Dequeue())
	require.NoError(t, q.Enqueue(16))
	require.Equal(t, 16, q.Len())
	require.Equal(t, 1, *q.Head())
	require.Equal(t, 16, *q.At(15))
}

func TestBytes(t *testing.T) {
	b := growable.NewBytes(4, 0)
	_, err := b.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, b.WriteByte(' '))
	other := growable.NewBytes(0, 0)
	_, err = other.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, b.Join(other))
	require.Equal(t, "hello world", string(b.Bytes()))
	require.Equal(t, 0, other.Len())
	b.Reset()
	require.Equal(t, 0, b.Len())
	require.Positive(t, b.Available())
}

func TestBytesLimit(t *testing.T) {
	b := growable.NewBytes(4, 8)
	_, err := b.WriteString("12345678")
	require.NoError(t, err)
	_, err = b.WriteString("9")
	require.Equal(t, yamlh.MEMORY_ERROR, yamlh.ErrorKind(err))
	require.Equal(t, "12345678", string(b.Bytes()))
}
