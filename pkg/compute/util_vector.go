// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compute

import (
	"unsafe"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// AddInPlace input += delta
func AddInPlace(input *chunk.Vector, delta int64, cnt int) {
	util.AssertFunc(input.Typ().Id == common.LTID_POINTER)
	if delta == 0 {
		return
	}
	switch input.PhyFormat() {
	case chunk.PF_CONST:
		util.AssertFunc(!chunk.IsNullInPhyFormatConst(input))
		data := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](input)
		data[0] = util.PointerAdd(data[0], int(delta))
	default:
		util.AssertFunc(input.PhyFormat().IsFlat())
		data := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](input)
		for i := 0; i < cnt; i++ {
			data[i] = util.PointerAdd(data[i], int(delta))
		}
	}
}

// shiftedAddresses copies cnt addresses shifted by delta into a new
// vector. A constant input stays constant, anything else becomes flat.
func shiftedAddresses(addresses *chunk.Vector, cnt int, delta int) *chunk.Vector {
	util.AssertFunc(addresses.Typ().IsPointer())
	if addresses.PhyFormat().IsConst() {
		ret := chunk.NewConstVector(common.PointerType())
		src := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](addresses)
		chunk.GetSliceInPhyFormatConst[unsafe.Pointer](ret)[0] = src[0]
		AddInPlace(ret, int64(delta), 1)
		return ret
	}
	var uni chunk.UnifiedFormat
	addresses.ToUnifiedFormat(cnt, &uni)
	src := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&uni)
	ret := chunk.NewFlatVector(common.PointerType(), max(cnt, 1))
	dst := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](ret)
	for i := 0; i < cnt; i++ {
		dst[i] = src[uni.Sel.GetIndex(i)]
	}
	AddInPlace(ret, int64(delta), cnt)
	return ret
}
