package chunk

import (
	"fmt"

	"github.com/daviszhen/olap/pkg/common"
)

// Value is one boxed cell, used at the edges of the engine.
type Value struct {
	Typ      common.LType
	IsNull   bool
	Bool     bool
	I64      int64
	U64      uint64
	F64      float64
	Str      string
	Hugeint  common.Hugeint
	UHugeint common.UHugeint
}

func (val Value) String() string {
	if val.IsNull {
		return "NULL"
	}
	switch val.Typ.Id {
	case common.LTID_BOOLEAN:
		return fmt.Sprintf("%v", val.Bool)
	case common.LTID_TINYINT, common.LTID_SMALLINT,
		common.LTID_INTEGER, common.LTID_BIGINT:
		return fmt.Sprintf("%d", val.I64)
	case common.LTID_UTINYINT, common.LTID_USMALLINT,
		common.LTID_UINTEGER, common.LTID_UBIGINT:
		return fmt.Sprintf("%d", val.U64)
	case common.LTID_HUGEINT:
		return val.Hugeint.String()
	case common.LTID_UHUGEINT:
		return val.UHugeint.String()
	case common.LTID_FLOAT, common.LTID_DOUBLE:
		return fmt.Sprintf("%v", val.F64)
	case common.LTID_VARCHAR, common.LTID_BIT:
		return val.Str
	case common.LTID_POINTER:
		return fmt.Sprintf("0x%x", val.U64)
	default:
		panic("usp")
	}
}

func NullValue(typ common.LType) *Value {
	return &Value{Typ: typ, IsNull: true}
}

func IntValue(typ common.LType, v int64) *Value {
	return &Value{Typ: typ, I64: v}
}

func UintValue(typ common.LType, v uint64) *Value {
	return &Value{Typ: typ, U64: v}
}

func BitValue(bits string) *Value {
	return &Value{Typ: common.BitType(), Str: bits}
}
