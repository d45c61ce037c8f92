package common

import (
	"fmt"
)

type LTypeId int

const (
	LTID_INVALID   LTypeId = 0
	LTID_NULL      LTypeId = 1
	LTID_BOOLEAN   LTypeId = 10
	LTID_TINYINT   LTypeId = 11
	LTID_SMALLINT  LTypeId = 12
	LTID_INTEGER   LTypeId = 13
	LTID_BIGINT    LTypeId = 14
	LTID_FLOAT     LTypeId = 22
	LTID_DOUBLE    LTypeId = 23
	LTID_VARCHAR   LTypeId = 25
	LTID_INTERVAL  LTypeId = 27
	LTID_UTINYINT  LTypeId = 28
	LTID_USMALLINT LTypeId = 29
	LTID_UINTEGER  LTypeId = 30
	LTID_UBIGINT   LTypeId = 31
	LTID_BIT       LTypeId = 36
	LTID_UHUGEINT  LTypeId = 49
	LTID_HUGEINT   LTypeId = 50
	LTID_POINTER   LTypeId = 51
	LTID_VALIDITY  LTypeId = 53
	LTID_STRUCT    LTypeId = 100
	LTID_LIST      LTypeId = 101
	LTID_ARRAY     LTypeId = 108
)

var lTypeIdToStr = map[LTypeId]string{
	LTID_INVALID:   "INVALID",
	LTID_NULL:      "NULL",
	LTID_BOOLEAN:   "BOOLEAN",
	LTID_TINYINT:   "TINYINT",
	LTID_SMALLINT:  "SMALLINT",
	LTID_INTEGER:   "INTEGER",
	LTID_BIGINT:    "BIGINT",
	LTID_FLOAT:     "FLOAT",
	LTID_DOUBLE:    "DOUBLE",
	LTID_VARCHAR:   "VARCHAR",
	LTID_INTERVAL:  "INTERVAL",
	LTID_UTINYINT:  "UTINYINT",
	LTID_USMALLINT: "USMALLINT",
	LTID_UINTEGER:  "UINTEGER",
	LTID_UBIGINT:   "UBIGINT",
	LTID_BIT:       "BIT",
	LTID_UHUGEINT:  "UHUGEINT",
	LTID_HUGEINT:   "HUGEINT",
	LTID_POINTER:   "POINTER",
	LTID_VALIDITY:  "VALIDITY",
	LTID_STRUCT:    "STRUCT",
	LTID_LIST:      "LIST",
	LTID_ARRAY:     "ARRAY",
}

func (id LTypeId) String() string {
	if s, has := lTypeIdToStr[id]; has {
		return s
	}
	return fmt.Sprintf("LTypeId(%d)", int(id))
}

// LType is the sql visible type. PTyp is its in-memory representation.
type LType struct {
	Id   LTypeId
	PTyp PhyType
}

func MakeLType(id LTypeId) LType {
	ret := LType{Id: id}
	ret.PTyp = ret.GetInternalType()
	return ret
}

func (lt LType) GetInternalType() PhyType {
	switch lt.Id {
	case LTID_BOOLEAN:
		return BOOL
	case LTID_TINYINT:
		return INT8
	case LTID_UTINYINT:
		return UINT8
	case LTID_SMALLINT:
		return INT16
	case LTID_USMALLINT:
		return UINT16
	case LTID_INTEGER:
		return INT32
	case LTID_UINTEGER:
		return UINT32
	case LTID_BIGINT:
		return INT64
	case LTID_UBIGINT:
		return UINT64
	case LTID_HUGEINT:
		return INT128
	case LTID_UHUGEINT:
		return UINT128
	case LTID_FLOAT:
		return FLOAT
	case LTID_DOUBLE:
		return DOUBLE
	case LTID_INTERVAL:
		return INTERVAL
	case LTID_VARCHAR, LTID_BIT:
		return VARCHAR
	case LTID_POINTER:
		return POINTER
	case LTID_VALIDITY:
		return BIT
	case LTID_STRUCT:
		return STRUCT
	case LTID_LIST:
		return LIST
	case LTID_ARRAY:
		return ARRAY
	case LTID_NULL:
		return INT32
	default:
		return INVALID
	}
}

func (lt LType) String() string {
	return lt.Id.String()
}

func (lt LType) Equal(o LType) bool {
	return lt.Id == o.Id
}

func (lt LType) IsPointer() bool {
	return lt.Id == LTID_POINTER
}

func (lt LType) IsIntegral() bool {
	return lt.PTyp.IsIntegral()
}

func BooleanType() LType {
	return MakeLType(LTID_BOOLEAN)
}

func TinyintType() LType {
	return MakeLType(LTID_TINYINT)
}

func UTinyintType() LType {
	return MakeLType(LTID_UTINYINT)
}

func SmallintType() LType {
	return MakeLType(LTID_SMALLINT)
}

func USmallintType() LType {
	return MakeLType(LTID_USMALLINT)
}

func IntegerType() LType {
	return MakeLType(LTID_INTEGER)
}

func UIntegerType() LType {
	return MakeLType(LTID_UINTEGER)
}

func BigintType() LType {
	return MakeLType(LTID_BIGINT)
}

func UBigintType() LType {
	return MakeLType(LTID_UBIGINT)
}

func HugeintType() LType {
	return MakeLType(LTID_HUGEINT)
}

func UHugeintType() LType {
	return MakeLType(LTID_UHUGEINT)
}

func DoubleType() LType {
	return MakeLType(LTID_DOUBLE)
}

func VarcharType() LType {
	return MakeLType(LTID_VARCHAR)
}

func BitType() LType {
	return MakeLType(LTID_BIT)
}

func PointerType() LType {
	return MakeLType(LTID_POINTER)
}

// Integral returns the integer types in the order the bitwise
// aggregates register them.
func Integral() []LType {
	ids := []LTypeId{
		LTID_TINYINT, LTID_SMALLINT, LTID_INTEGER,
		LTID_BIGINT, LTID_HUGEINT, LTID_UTINYINT,
		LTID_USMALLINT, LTID_UINTEGER, LTID_UBIGINT,
		LTID_UHUGEINT,
	}
	ret := make([]LType, len(ids))
	for i, id := range ids {
		ret[i] = MakeLType(id)
	}
	return ret
}

func CopyLTypes(typs ...LType) []LType {
	ret := make([]LType, len(typs))
	copy(ret, typs)
	return ret
}
