package chunk

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

type Vector struct {
	_PhyFormat PhyFormat
	_Typ       common.LType
	Data       []byte
	Mask       *util.Bitmap
	Buf        *VecBuffer
	Aux        *VecBuffer
}

func NewVector(lTyp common.LType, initData bool, cap int) *Vector {
	vec := &Vector{
		_PhyFormat: PF_FLAT,
		_Typ:       lTyp,
		Mask:       &util.Bitmap{},
	}
	if initData {
		vec.Init(cap)
	}
	return vec
}

func NewFlatVector(lTyp common.LType, cap int) *Vector {
	return NewVector(lTyp, true, cap)
}

func NewConstVector(lTyp common.LType) *Vector {
	vec := NewVector(lTyp, true, 1)
	vec.SetPhyFormat(PF_CONST)
	return vec
}

// NewDictVector views child through sel.
func NewDictVector(child *Vector, sel *SelectVector) *Vector {
	vec := NewVector(child.Typ(), false, 0)
	vec.Slice(child, sel, len(sel.SelVec))
	return vec
}

func (vec *Vector) Init(cap int) {
	vec.Aux = nil
	vec.Mask.Reset()
	sz := vec.Typ().GetInternalType().Size()
	if sz > 0 {
		vec.Buf = NewStandardBuffer(vec.Typ(), cap)
		vec.Data = vec.Buf.Data
	}
}

func (vec *Vector) Typ() common.LType {
	return vec._Typ
}

func (vec *Vector) PhyFormat() PhyFormat {
	return vec._PhyFormat
}

func (vec *Vector) SetPhyFormat(pf PhyFormat) {
	vec._PhyFormat = pf
	if vec.Typ().GetInternalType().IsConstant() &&
		(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat()) {
		vec.Aux = nil
	}
}

func (vec *Vector) Reference(other *Vector) {
	util.AssertFunc(vec.Typ().Equal(other.Typ()))
	vec.Reinterpret(other)
}

func (vec *Vector) Reinterpret(other *Vector) {
	vec._PhyFormat = other._PhyFormat
	vec.Buf = other.Buf
	vec.Aux = other.Aux
	vec.Data = other.Data
	vec.Mask = other.Mask
}

// Reset detaches the mask, it may be shared with a referenced vector.
func (vec *Vector) Reset() {
	vec._PhyFormat = PF_FLAT
	vec.Mask = &util.Bitmap{}
}

// AddString copies data into memory owned by vec.
func (vec *Vector) AddString(data []byte) common.String {
	util.AssertFunc(vec.Typ().GetInternalType() == common.VARCHAR)
	util.AssertFunc(!vec.PhyFormat().IsDict())
	if vec.Aux == nil || vec.Aux.BufTyp != VBT_STRING {
		vec.Aux = NewStringBuffer()
	}
	return vec.Aux.AddString(data)
}

func (vec *Vector) GetValue(idx int) *Value {
	switch vec.PhyFormat() {
	case PF_CONST:
		idx = 0
	case PF_FLAT:
	case PF_DICT:
		sel := GetSelVectorInPhyFormatDict(vec)
		child := GetChildInPhyFormatDict(vec)
		return child.GetValue(sel.GetIndex(idx))
	default:
		panic("usp")
	}
	if !vec.Mask.RowIsValid(uint64(idx)) {
		return &Value{
			Typ:    vec.Typ(),
			IsNull: true,
		}
	}
	ret := &Value{Typ: vec.Typ()}
	switch vec.Typ().Id {
	case common.LTID_BOOLEAN:
		ret.Bool = GetSliceInPhyFormatFlat[bool](vec)[idx]
	case common.LTID_TINYINT:
		ret.I64 = int64(GetSliceInPhyFormatFlat[int8](vec)[idx])
	case common.LTID_SMALLINT:
		ret.I64 = int64(GetSliceInPhyFormatFlat[int16](vec)[idx])
	case common.LTID_INTEGER:
		ret.I64 = int64(GetSliceInPhyFormatFlat[int32](vec)[idx])
	case common.LTID_BIGINT:
		ret.I64 = GetSliceInPhyFormatFlat[int64](vec)[idx]
	case common.LTID_UTINYINT:
		ret.U64 = uint64(GetSliceInPhyFormatFlat[uint8](vec)[idx])
	case common.LTID_USMALLINT:
		ret.U64 = uint64(GetSliceInPhyFormatFlat[uint16](vec)[idx])
	case common.LTID_UINTEGER:
		ret.U64 = uint64(GetSliceInPhyFormatFlat[uint32](vec)[idx])
	case common.LTID_UBIGINT:
		ret.U64 = GetSliceInPhyFormatFlat[uint64](vec)[idx]
	case common.LTID_HUGEINT:
		ret.Hugeint = GetSliceInPhyFormatFlat[common.Hugeint](vec)[idx]
	case common.LTID_UHUGEINT:
		ret.UHugeint = GetSliceInPhyFormatFlat[common.UHugeint](vec)[idx]
	case common.LTID_DOUBLE:
		ret.F64 = GetSliceInPhyFormatFlat[float64](vec)[idx]
	case common.LTID_FLOAT:
		ret.F64 = float64(GetSliceInPhyFormatFlat[float32](vec)[idx])
	case common.LTID_VARCHAR:
		ret.Str = GetSliceInPhyFormatFlat[common.String](vec)[idx].String()
	case common.LTID_BIT:
		ret.Str = common.DecodeBits(&GetSliceInPhyFormatFlat[common.String](vec)[idx])
	case common.LTID_POINTER:
		ret.U64 = uint64(uintptr(GetSliceInPhyFormatFlat[unsafe.Pointer](vec)[idx]))
	default:
		panic(fmt.Sprintf("usp get value of %s", vec.Typ()))
	}
	return ret
}

func (vec *Vector) SetValue(idx int, val *Value) {
	if vec.PhyFormat().IsDict() {
		sel := GetSelVectorInPhyFormatDict(vec)
		child := GetChildInPhyFormatDict(vec)
		child.SetValue(sel.GetIndex(idx), val)
		return
	}
	util.AssertFunc(val.Typ.Equal(vec.Typ()))
	vec.Mask.Set(uint64(idx), !val.IsNull)
	if val.IsNull {
		return
	}
	switch vec.Typ().Id {
	case common.LTID_BOOLEAN:
		GetSliceInPhyFormatFlat[bool](vec)[idx] = val.Bool
	case common.LTID_TINYINT:
		GetSliceInPhyFormatFlat[int8](vec)[idx] = int8(val.I64)
	case common.LTID_SMALLINT:
		GetSliceInPhyFormatFlat[int16](vec)[idx] = int16(val.I64)
	case common.LTID_INTEGER:
		GetSliceInPhyFormatFlat[int32](vec)[idx] = int32(val.I64)
	case common.LTID_BIGINT:
		GetSliceInPhyFormatFlat[int64](vec)[idx] = val.I64
	case common.LTID_UTINYINT:
		GetSliceInPhyFormatFlat[uint8](vec)[idx] = uint8(val.U64)
	case common.LTID_USMALLINT:
		GetSliceInPhyFormatFlat[uint16](vec)[idx] = uint16(val.U64)
	case common.LTID_UINTEGER:
		GetSliceInPhyFormatFlat[uint32](vec)[idx] = uint32(val.U64)
	case common.LTID_UBIGINT:
		GetSliceInPhyFormatFlat[uint64](vec)[idx] = val.U64
	case common.LTID_HUGEINT:
		GetSliceInPhyFormatFlat[common.Hugeint](vec)[idx] = val.Hugeint
	case common.LTID_UHUGEINT:
		GetSliceInPhyFormatFlat[common.UHugeint](vec)[idx] = val.UHugeint
	case common.LTID_DOUBLE:
		GetSliceInPhyFormatFlat[float64](vec)[idx] = val.F64
	case common.LTID_FLOAT:
		GetSliceInPhyFormatFlat[float32](vec)[idx] = float32(val.F64)
	case common.LTID_VARCHAR:
		GetSliceInPhyFormatFlat[common.String](vec)[idx] = vec.AddString([]byte(val.Str))
	case common.LTID_BIT:
		bits, err := common.EncodeBits(val.Str)
		if err != nil {
			panic(err)
		}
		GetSliceInPhyFormatFlat[common.String](vec)[idx] = vec.AddString(bits)
	default:
		panic(fmt.Sprintf("usp set value of %s", vec.Typ()))
	}
}

func (vec *Vector) Print(prefix string, rowCount int) {
	fields := make([]zap.Field, 0, rowCount)
	for j := 0; j < rowCount; j++ {
		fields = append(fields, zap.Stringer(fmt.Sprint(j), vec.GetValue(j)))
	}
	util.Info(prefix, fields...)
}

// constant vector
func GetDataInPhyFormatConst(vec *Vector) []byte {
	util.AssertFunc(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat())
	return vec.Data
}

func GetSliceInPhyFormatConst[T any](vec *Vector) []T {
	util.AssertFunc(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat())
	pSize := vec.Typ().GetInternalType().Size()
	return util.ToSlice[T](vec.Data, pSize)
}

func IsNullInPhyFormatConst(vec *Vector) bool {
	util.AssertFunc(vec.PhyFormat().IsConst())
	return !vec.Mask.RowIsValid(0)
}

func SetNullInPhyFormatConst(vec *Vector, null bool) {
	util.AssertFunc(vec.PhyFormat().IsConst())
	vec.Mask.Set(0, !null)
}

func GetMaskInPhyFormatConst(vec *Vector) *util.Bitmap {
	util.AssertFunc(vec.PhyFormat().IsConst())
	return vec.Mask
}

// flat vector
func GetDataInPhyFormatFlat(vec *Vector) []byte {
	return GetDataInPhyFormatConst(vec)
}

func GetSliceInPhyFormatFlat[T any](vec *Vector) []T {
	return GetSliceInPhyFormatConst[T](vec)
}

func GetMaskInPhyFormatFlat(vec *Vector) *util.Bitmap {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	return vec.Mask
}

func SetNullInPhyFormatFlat(vec *Vector, idx uint64, null bool) {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	vec.Mask.Set(idx, !null)
}

// dictionary vector
func GetSelVectorInPhyFormatDict(vec *Vector) *SelectVector {
	util.AssertFunc(vec.PhyFormat().IsDict())
	return vec.Buf.GetSelVector()
}

func GetChildInPhyFormatDict(vec *Vector) *Vector {
	util.AssertFunc(vec.PhyFormat().IsDict())
	return vec.Aux.Child
}

func HasNull(input *Vector, count int) bool {
	if count == 0 {
		return false
	}
	if input.PhyFormat().IsConst() {
		return IsNullInPhyFormatConst(input)
	}
	var data UnifiedFormat
	input.ToUnifiedFormat(count, &data)
	if data.Mask.AllValid() {
		return false
	}
	for i := 0; i < count; i++ {
		idx := data.Sel.GetIndex(i)
		if !data.Mask.RowIsValid(uint64(idx)) {
			return true
		}
	}
	return false
}
