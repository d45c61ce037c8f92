package util

import (
	"unsafe"
)

func Load[T any](ptr unsafe.Pointer) T {
	return *(*T)(ptr)
}

func Store[T any](val T, ptr unsafe.Pointer) {
	*(*T)(ptr) = val
}

func ToSlice[T any](data []byte, pSize int) []T {
	if pSize == 0 || len(data) == 0 {
		return nil
	}
	slen := len(data) / pSize
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), slen)
}

func BytesSliceToPointer(data []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(data))
}

func PointerAdd(base unsafe.Pointer, offset int) unsafe.Pointer {
	return unsafe.Add(base, offset)
}

func PointerToSlice[T any](base unsafe.Pointer, len int) []T {
	return unsafe.Slice((*T)(base), len)
}

func PointerCopy(dst, src unsafe.Pointer, len int) {
	if len == 0 {
		return
	}
	dstSlice := PointerToSlice[byte](dst, len)
	srcSlice := PointerToSlice[byte](src, len)
	copy(dstSlice, srcSlice)
}
