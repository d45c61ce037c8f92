package common

import (
	"fmt"
	"unsafe"
)

type PhyType int

const (
	NA       PhyType = 0
	BOOL     PhyType = 1
	UINT8    PhyType = 2
	INT8     PhyType = 3
	UINT16   PhyType = 4
	INT16    PhyType = 5
	UINT32   PhyType = 6
	INT32    PhyType = 7
	UINT64   PhyType = 8
	INT64    PhyType = 9
	FLOAT    PhyType = 11
	DOUBLE   PhyType = 12
	INTERVAL PhyType = 21
	LIST     PhyType = 23
	STRUCT   PhyType = 24
	ARRAY    PhyType = 102
	VARCHAR  PhyType = 200
	UINT128  PhyType = 203
	INT128   PhyType = 204
	UNKNOWN  PhyType = 205
	// BIT is the physical type of validity masks
	BIT     PhyType = 206
	POINTER PhyType = 208

	INVALID PhyType = 255
)

var pTypeToStr = map[PhyType]string{
	NA:       "NA",
	BOOL:     "BOOL",
	UINT8:    "UINT8",
	INT8:     "INT8",
	UINT16:   "UINT16",
	INT16:    "INT16",
	UINT32:   "UINT32",
	INT32:    "INT32",
	UINT64:   "UINT64",
	INT64:    "INT64",
	FLOAT:    "FLOAT",
	DOUBLE:   "DOUBLE",
	INTERVAL: "INTERVAL",
	LIST:     "LIST",
	STRUCT:   "STRUCT",
	ARRAY:    "ARRAY",
	VARCHAR:  "VARCHAR",
	UINT128:  "UINT128",
	INT128:   "INT128",
	UNKNOWN:  "UNKNOWN",
	BIT:      "BIT",
	POINTER:  "POINTER",
	INVALID:  "INVALID",
}

func (pt PhyType) String() string {
	if s, has := pTypeToStr[pt]; has {
		return s
	}
	return fmt.Sprintf("PhyType(%d)", int(pt))
}

const (
	BoolSize     = int(unsafe.Sizeof(false))
	Int8Size     = 1
	Int16Size    = 2
	Int32Size    = 4
	Int64Size    = 8
	Int128Size   = int(unsafe.Sizeof(Hugeint{}))
	Float32Size  = 4
	Float64Size  = 8
	IntervalSize = int(unsafe.Sizeof(Interval{}))
	VarcharSize  = int(unsafe.Sizeof(String{}))
	PointerSize  = int(unsafe.Sizeof(unsafe.Pointer(nil)))
	ListSize     = int(unsafe.Sizeof(ListEntry{}))
)

// Interval is months/days/micros as stored in a vector.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

type ListEntry struct {
	Offset uint64
	Length uint64
}

func (pt PhyType) Size() int {
	switch pt {
	case BIT, BOOL:
		return BoolSize
	case INT8, UINT8:
		return Int8Size
	case INT16, UINT16:
		return Int16Size
	case INT32, UINT32:
		return Int32Size
	case INT64, UINT64:
		return Int64Size
	case INT128, UINT128:
		return Int128Size
	case FLOAT:
		return Float32Size
	case DOUBLE:
		return Float64Size
	case VARCHAR:
		return VarcharSize
	case INTERVAL:
		return IntervalSize
	case LIST, ARRAY:
		return ListSize
	case POINTER:
		return PointerSize
	case STRUCT, UNKNOWN:
		return 0
	default:
		panic(fmt.Sprintf("usp phy type size %s", pt))
	}
}

// IsConstant reports whether the type has a fixed width in a row.
func (pt PhyType) IsConstant() bool {
	return pt >= BOOL && pt <= DOUBLE ||
		pt == INTERVAL ||
		pt == INT128 ||
		pt == UINT128 ||
		pt == POINTER
}

func (pt PhyType) IsVarchar() bool {
	return pt == VARCHAR
}

func (pt PhyType) IsIntegral() bool {
	switch pt {
	case INT8, INT16, INT32, INT64, INT128,
		UINT8, UINT16, UINT32, UINT64, UINT128:
		return true
	default:
		return false
	}
}
