package util

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func Test_cmemset(t *testing.T) {
	buf := make([]byte, 1024)
	CMemset(unsafe.Pointer(&buf[0]), 1, 1024)
	for i := 0; i < 1024; i++ {
		assert.Equal(t, byte(1), buf[i])
	}
	ptr := GAlloc.Alloc(1024)
	defer GAlloc.Free(ptr)
	CMemset(ptr, 1, 1024)
	for i := 0; i < 1024; i++ {
		assert.Equal(t,
			byte(1),
			*(*byte)(PointerAdd(ptr, i)))
	}
}

func Test_bitmap(t *testing.T) {
	bm := &Bitmap{}
	assert.True(t, bm.AllValid())
	assert.True(t, bm.RowIsValid(100))
	assert.Equal(t, 10, bm.CountValid(10))

	bm.SetInvalid(3)
	assert.False(t, bm.AllValid())
	assert.False(t, bm.RowIsValid(3))
	assert.True(t, bm.RowIsValid(4))
	assert.Equal(t, 9, bm.CountValid(10))

	bm.SetValid(3)
	assert.True(t, bm.RowIsValid(3))

	other := &Bitmap{}
	other.CopyFrom(bm, 16)
	other.SetInvalid(0)
	assert.True(t, bm.RowIsValid(0))
	assert.False(t, other.RowIsValid(0))
}

func Test_bitmapGrow(t *testing.T) {
	bm := &Bitmap{}
	bm.SetInvalid(5)
	assert.Len(t, bm.Bits, EntryCount(DefaultVectorSize))

	far := uint64(DefaultVectorSize + 100)
	assert.True(t, bm.RowIsValid(far))
	bm.SetValid(far)
	assert.NotPanics(t, func() { bm.SetInvalid(far) })
	assert.False(t, bm.RowIsValid(far))
	assert.False(t, bm.RowIsValid(5))
	assert.True(t, bm.RowIsValid(far-1))
	assert.True(t, bm.RowIsValid(DefaultVectorSize))
	assert.Equal(t, int(far)+1-2, bm.CountValid(int(far)+1))

	short := &Bitmap{}
	short.CopyFrom(bm, 16)
	short.SetInvalid(200)
	assert.False(t, short.RowIsValid(5))
	assert.False(t, short.RowIsValid(200))
	assert.True(t, short.RowIsValid(199))
}
