package common

import (
	"bytes"
	"unsafe"

	"github.com/daviszhen/olap/pkg/util"
)

// StringInlineLen is the longest value stored inside the String itself.
const StringInlineLen = 12

// String is a length plus either inline bytes or a pointer to heap bytes.
// Values longer than StringInlineLen live in memory owned by whoever
// created the String.
type String struct {
	Len    uint32
	Inline [StringInlineLen]byte
	Data   unsafe.Pointer
}

// MakeInlineString panics if data does not fit inline.
func MakeInlineString(data []byte) String {
	util.AssertFunc(len(data) <= StringInlineLen)
	ret := String{Len: uint32(len(data))}
	copy(ret.Inline[:], data)
	return ret
}

// MakeString references data without copying it when it is not inlined.
// The caller keeps data alive.
func MakeString(data []byte) String {
	if len(data) <= StringInlineLen {
		return MakeInlineString(data)
	}
	return String{
		Len:  uint32(len(data)),
		Data: util.BytesSliceToPointer(data),
	}
}

func (s *String) IsInlined() bool {
	return s.Len <= StringInlineLen
}

func (s *String) Length() int {
	return int(s.Len)
}

// DataSlice aliases the bytes of s.
func (s *String) DataSlice() []byte {
	if s.IsInlined() {
		return s.Inline[:s.Len]
	}
	return util.PointerToSlice[byte](s.Data, int(s.Len))
}

func (s *String) String() string {
	return string(s.DataSlice())
}

func (s *String) Equal(o *String) bool {
	return bytes.Equal(s.DataSlice(), o.DataSlice())
}

func (s *String) Less(o *String) bool {
	return bytes.Compare(s.DataSlice(), o.DataSlice()) < 0
}
