package util

import (
	"unsafe"
)

//#include <stdio.h>
//#include <stdlib.h>
//#include <string.h>
import "C"

func CMalloc(sz int) unsafe.Pointer {
	return C.malloc(C.size_t(sz))
}

func CFree(ptr unsafe.Pointer) {
	C.free(ptr)
}

func CMemset(ptr unsafe.Pointer, val byte, sz int) {
	C.memset(ptr, C.int(val), C.size_t(sz))
}

// Allocator hands out memory that lives outside the go heap.
// Aggregate states and their owned buffers are allocated through it.
type Allocator interface {
	Alloc(sz int) unsafe.Pointer
	Free(ptr unsafe.Pointer)
}

type CAllocator struct {
}

func (alloc *CAllocator) Alloc(sz int) unsafe.Pointer {
	return CMalloc(sz)
}

func (alloc *CAllocator) Free(ptr unsafe.Pointer) {
	CFree(ptr)
}

var GAlloc Allocator = &CAllocator{}
