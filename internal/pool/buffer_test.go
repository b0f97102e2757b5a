package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBuffer_Basics(t *testing.T) {
	bb := NewByteBuffer(16)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 16, bb.Cap())

	n, err := bb.Write([]byte("gmm"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("gmm"), bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 16, bb.Cap())
}

func TestByteBuffer_SliceAndSetLength(t *testing.T) {
	bb := NewByteBuffer(8)

	s := bb.Slice(0, 4)
	copy(s, []byte{1, 2, 3, 4})
	bb.SetLength(4)
	require.Equal(t, []byte{1, 2, 3, 4}, bb.Bytes())

	require.Panics(t, func() { bb.Slice(0, 9) })
	require.Panics(t, func() { bb.Slice(3, 2) })
	require.Panics(t, func() { bb.SetLength(-1) })
	require.Panics(t, func() { bb.SetLength(9) })
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(10)
		require.Equal(t, PayloadBufferDefaultSize, bb.Cap())
	})

	t.Run("large request wins", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(PayloadBufferDefaultSize * 2)
		require.Equal(t, PayloadBufferDefaultSize*2, bb.Cap())
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := smallBufferGrowthCeilingSize * 2
		bb := NewByteBuffer(size)
		bb.SetLength(size)
		bb.Grow(1)
		require.Equal(t, size+size/4, bb.Cap())
		require.Equal(t, size, bb.Len())
	})

	t.Run("sufficient capacity is kept", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.Grow(64)
		require.Equal(t, 64, bb.Cap())
	})
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	_, _ = bb.Write([]byte{9, 9})

	bb.ExtendOrGrow(8)
	require.Equal(t, 10, bb.Len())
	require.Equal(t, []byte{9, 9}, bb.Bytes()[:2])
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 64)

	bb := p.Get()
	require.Equal(t, 0, bb.Len())
	_, _ = bb.Write([]byte("payload"))
	p.Put(bb)
	p.Put(nil)

	again := p.Get()
	require.Equal(t, 0, again.Len())

	big := NewByteBuffer(128)
	require.NotPanics(t, func() { p.Put(big) })
}

func TestSharedPools_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			payload := GetPayloadBuffer()
			container := GetContainerBuffer()
			_, _ = payload.Write([]byte{byte(i)})
			_, _ = container.Write(payload.Bytes())
			assert.Equal(t, []byte{byte(i)}, container.Bytes())
			PutPayloadBuffer(payload)
			PutContainerBuffer(container)
		}()
	}
	wg.Wait()
}

func TestGetFloat64Slice(t *testing.T) {
	s, release := GetFloat64Slice(5)
	require.Len(t, s, 5)
	s[4] = 1.5
	release()

	small, release := GetFloat64Slice(2)
	require.Len(t, small, 2)
	release()

	large, release := GetFloat64Slice(1000)
	defer release()
	require.Len(t, large, 1000)
}
