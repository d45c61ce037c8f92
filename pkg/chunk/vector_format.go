package chunk

import (
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// Flatten converts vec into a flat vector holding cnt rows.
func (vec *Vector) Flatten(cnt int) {
	pSize := vec.Typ().GetInternalType().Size()
	switch vec.PhyFormat() {
	case PF_FLAT:
	case PF_CONST:
		null := IsNullInPhyFormatConst(vec)
		oldData := vec.Data
		vec.Buf = NewStandardBuffer(vec._Typ, max(cnt, 1))
		vec.Data = vec.Buf.Data
		vec._PhyFormat = PF_FLAT
		vec.Mask = &util.Bitmap{}
		if null {
			for i := 0; i < cnt; i++ {
				vec.Mask.SetInvalid(uint64(i))
			}
			return
		}
		for i := 0; i < cnt; i++ {
			copy(vec.Data[i*pSize:(i+1)*pSize], oldData[:pSize])
		}
	case PF_DICT:
		var uni UnifiedFormat
		vec.ToUnifiedFormat(cnt, &uni)
		isVarchar := vec.Typ().GetInternalType().IsVarchar()
		vec.Buf = NewStandardBuffer(vec._Typ, max(cnt, 1))
		vec.Data = vec.Buf.Data
		vec.Aux = nil
		vec._PhyFormat = PF_FLAT
		mask := &util.Bitmap{}
		for i := 0; i < cnt; i++ {
			idx := uni.Sel.GetIndex(i)
			if !uni.Mask.RowIsValid(uint64(idx)) {
				mask.SetInvalid(uint64(i))
				continue
			}
			if isVarchar {
				src := GetSliceInPhyFormatUnifiedFormat[common.String](&uni)
				dst := GetSliceInPhyFormatFlat[common.String](vec)
				dst[i] = vec.AddString(src[idx].DataSlice())
			} else {
				copy(vec.Data[i*pSize:(i+1)*pSize], uni.Data[idx*pSize:(idx+1)*pSize])
			}
		}
		vec.Mask = mask
	}
}

func (vec *Vector) ToUnifiedFormat(count int, output *UnifiedFormat) {
	output.PTypSize = vec._Typ.GetInternalType().Size()
	switch vec.PhyFormat() {
	case PF_DICT:
		sel := GetSelVectorInPhyFormatDict(vec)
		child := GetChildInPhyFormatDict(vec)
		need := 0
		for i := 0; i < count; i++ {
			need = max(need, sel.GetIndex(i)+1)
		}
		var childFmt UnifiedFormat
		child.ToUnifiedFormat(need, &childFmt)
		if childFmt.Sel.Invalid() {
			output.Sel = sel
		} else {
			output.Sel = NewSelectVector3(childFmt.Sel.Slice(sel, count))
		}
		output.Data = childFmt.Data
		output.Mask = childFmt.Mask
	case PF_CONST:
		output.Sel = ZeroSelectVector(count, &output.InterSel)
		output.Data = GetDataInPhyFormatConst(vec)
		output.Mask = GetMaskInPhyFormatConst(vec)
	case PF_FLAT:
		output.Sel = &SelectVector{}
		output.Data = GetDataInPhyFormatFlat(vec)
		output.Mask = GetMaskInPhyFormatFlat(vec)
	}
}

// SliceOnSelf turns vec into a view of its rows selected by sel.
func (vec *Vector) SliceOnSelf(sel *SelectVector, count int) {
	if vec.PhyFormat().IsConst() {
		return
	} else if vec.PhyFormat().IsDict() {
		curSel := GetSelVectorInPhyFormatDict(vec)
		vec.Buf = NewDictBuffer(curSel.Slice(sel, count))
	} else {
		child := &Vector{
			_Typ: vec.Typ(),
		}
		child.Reference(vec)
		vec._PhyFormat = PF_DICT
		vec.Buf = NewDictBuffer2(sel)
		vec.Aux = NewChildBuffer(child)
	}
}

func (vec *Vector) Slice(other *Vector, sel *SelectVector, count int) {
	vec.Reference(other)
	vec.SliceOnSelf(sel, count)
}
