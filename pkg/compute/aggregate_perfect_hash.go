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
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

const maxPerfectHashBits = 24

// PerfectAggrHashTable aggregates over integer groups with a small known
// domain. Every possible group gets a row, so group keys are implied by
// the row position and never stored.
//
// group index = concat over group columns of (value - min + 1),
// each using requiredBits bits. 0 is NULL.
type PerfectAggrHashTable struct {
	_layout            *TupleDataLayout
	_groupTypes        []common.LType
	_payloadTypes      []common.LType
	_groupMinima       []int64
	_requiredBits      []int
	_totalRequiredBits int
	_totalGroups       int
	_tupleSize         int
	_alloc             util.Allocator
	_rowState          *RowOperationsState
	_filterSet         AggrFilterDataSet

	_data       unsafe.Pointer
	_groupIsSet []bool
	_addresses  *chunk.Vector
	_groupIdx   []uint64
}

func NewPerfectAggrHashTable(
	groupTypes []common.LType,
	payloadTypes []common.LType,
	aggrObjs []*AggrObject,
	groupMinima []int64,
	requiredBits []int,
	alloc util.Allocator,
) *PerfectAggrHashTable {
	util.AssertFunc(len(groupTypes) == len(groupMinima))
	util.AssertFunc(len(groupTypes) == len(requiredBits))
	if alloc == nil {
		alloc = util.GAlloc
	}
	ht := &PerfectAggrHashTable{
		_groupTypes:   common.CopyLTypes(groupTypes...),
		_payloadTypes: common.CopyLTypes(payloadTypes...),
		_groupMinima:  util.CopyTo(groupMinima),
		_requiredBits: util.CopyTo(requiredBits),
		_alloc:        alloc,
		_rowState:     NewRowOperationsState(alloc),
		_addresses:    chunk.NewFlatVector(common.PointerType(), util.DefaultVectorSize),
		_groupIdx:     make([]uint64, util.DefaultVectorSize),
	}
	for _, typ := range groupTypes {
		if !perfectHashSupports(typ) {
			panic(errors.AssertionFailedf("unsupported group type %s for perfect aggregate", typ))
		}
	}
	for _, bits := range requiredBits {
		ht._totalRequiredBits += bits
	}
	util.AssertFunc(ht._totalRequiredBits <= maxPerfectHashBits)
	ht._totalGroups = 1 << ht._totalRequiredBits

	//keys are implied by the position
	ht._layout = NewTupleDataLayout(nil, aggrObjs, false)
	ht._tupleSize = ht._layout.rowWidth()
	ht._filterSet.Init(aggrObjs, payloadTypes)

	ht._data = alloc.Alloc(max(ht._tupleSize*ht._totalGroups, 1))
	ht._groupIsSet = make([]bool, ht._totalGroups)

	addrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](ht._addresses)
	initCount := 0
	for i := 0; i < ht._totalGroups; i++ {
		addrs[initCount] = util.PointerAdd(ht._data, i*ht._tupleSize)
		initCount++
		if initCount == util.DefaultVectorSize {
			InitStates(ht._layout, ht._addresses, nil, initCount)
			initCount = 0
		}
	}
	InitStates(ht._layout, ht._addresses, nil, initCount)
	return ht
}

func perfectHashSupports(typ common.LType) bool {
	switch typ.GetInternalType() {
	case common.INT8, common.INT16, common.INT32, common.INT64,
		common.UINT8, common.UINT16, common.UINT32, common.UINT64:
		return true
	default:
		return false
	}
}

func (ht *PerfectAggrHashTable) Layout() *TupleDataLayout {
	return ht._layout
}

func (ht *PerfectAggrHashTable) TotalGroups() int {
	return ht._totalGroups
}

func computeGroupLocationTemplated[T integral](
	uni *chunk.UnifiedFormat,
	minVal int64,
	requiredBits int,
	groupIdx []uint64,
	shift int,
	count int,
) {
	data := chunk.GetSliceInPhyFormatUnifiedFormat[T](uni)
	limit := (uint64(1) << requiredBits) - 1
	for i := 0; i < count; i++ {
		idx := uni.Sel.GetIndex(i)
		// NULL groups stay 0
		if !uni.Mask.RowIsValid(uint64(idx)) {
			continue
		}
		//wraps for values below the minimum
		diff := uint64(int64(data[idx]) - minVal)
		if diff >= limit {
			panic(errors.Newf("perfect hash aggregate: group value %v out of range [%d, %d)",
				data[idx], minVal, minVal+int64(limit)))
		}
		groupIdx[i] += (diff + 1) << shift
	}
}

func computeGroupLocation(group *chunk.Vector, minVal int64, requiredBits int, groupIdx []uint64, shift int, count int) {
	var uni chunk.UnifiedFormat
	group.ToUnifiedFormat(count, &uni)
	switch group.Typ().GetInternalType() {
	case common.INT8:
		computeGroupLocationTemplated[int8](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.INT16:
		computeGroupLocationTemplated[int16](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.INT32:
		computeGroupLocationTemplated[int32](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.INT64:
		computeGroupLocationTemplated[int64](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.UINT8:
		computeGroupLocationTemplated[uint8](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.UINT16:
		computeGroupLocationTemplated[uint16](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.UINT32:
		computeGroupLocationTemplated[uint32](&uni, minVal, requiredBits, groupIdx, shift, count)
	case common.UINT64:
		computeGroupLocationTemplated[uint64](&uni, minVal, requiredBits, groupIdx, shift, count)
	default:
		panic("usp")
	}
}

// AddChunk aggregates payload into the groups of the same rows.
// Payload holds the inputs of every aggregate in order.
func (ht *PerfectAggrHashTable) AddChunk(groups *chunk.Chunk, payload *chunk.Chunk) {
	util.AssertFunc(groups.ColumnCount() == len(ht._groupMinima))
	count := groups.Card()
	if count == 0 {
		return
	}
	util.AssertFunc(count <= util.DefaultVectorSize)
	util.AssertFunc(payload.Card() == count)

	groupIdx := ht._groupIdx[:count]
	for i := range groupIdx {
		groupIdx[i] = 0
	}
	shift := ht._totalRequiredBits
	for i := 0; i < groups.ColumnCount(); i++ {
		shift -= ht._requiredBits[i]
		computeGroupLocation(groups.Data[i], ht._groupMinima[i], ht._requiredBits[i], groupIdx, shift, count)
	}

	ht._addresses.SetPhyFormat(chunk.PF_FLAT)
	addrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](ht._addresses)
	for i, group := range groupIdx {
		if group >= uint64(ht._totalGroups) {
			panic(errors.Newf("perfect hash aggregate: group %d exceeded total groups %d",
				group, ht._totalGroups))
		}
		ht._groupIsSet[group] = true
		addrs[i] = util.PointerAdd(ht._data, int(group)*ht._tupleSize)
	}

	payloadIdx := 0
	for aggrIdx, aggr := range ht._layout._aggregates {
		if aggr._filter != nil {
			UpdateFilteredStates(ht._rowState, ht._filterSet.GetFilterData(aggrIdx),
				aggr, ht._addresses, payload, payloadIdx)
		} else {
			UpdateStates(ht._rowState, aggr, ht._addresses, payload, payloadIdx, count)
		}
		payloadIdx += aggr._childCount
		AddInPlace(ht._addresses, int64(aggr._payloadSize), count)
	}
}

// Combine merges other into ht. other must not be used afterwards
// except for Destroy.
func (ht *PerfectAggrHashTable) Combine(other *PerfectAggrHashTable) {
	util.AssertFunc(ht._totalGroups == other._totalGroups)
	util.AssertFunc(ht._tupleSize == other._tupleSize)

	sources := chunk.NewFlatVector(common.PointerType(), util.DefaultVectorSize)
	targets := chunk.NewFlatVector(common.PointerType(), util.DefaultVectorSize)
	srcPtrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](sources)
	tgtPtrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](targets)

	combineCount := 0
	for i := 0; i < ht._totalGroups; i++ {
		if !other._groupIsSet[i] {
			continue
		}
		ht._groupIsSet[i] = true
		srcPtrs[combineCount] = util.PointerAdd(other._data, i*ht._tupleSize)
		tgtPtrs[combineCount] = util.PointerAdd(ht._data, i*ht._tupleSize)
		combineCount++
		if combineCount == util.DefaultVectorSize {
			CombineStates(ht._rowState, ht._layout, sources, targets, combineCount)
			combineCount = 0
		}
	}
	CombineStates(ht._rowState, ht._layout, sources, targets, combineCount)
}

func reconstructGroupVectorTemplated[T integral](
	groupValues []uint64,
	minVal int64,
	mask uint64,
	shift int,
	result *chunk.Vector,
) {
	data := chunk.GetSliceInPhyFormatFlat[T](result)
	for i, gv := range groupValues {
		groupIndex := (gv >> shift) & mask
		if groupIndex == 0 {
			chunk.SetNullInPhyFormatFlat(result, uint64(i), true)
		} else {
			data[i] = T(minVal) + T(groupIndex-1)
		}
	}
}

func reconstructGroupVector(groupValues []uint64, minVal int64, requiredBits int, shift int, result *chunk.Vector) {
	mask := (uint64(1) << requiredBits) - 1
	switch result.Typ().GetInternalType() {
	case common.INT8:
		reconstructGroupVectorTemplated[int8](groupValues, minVal, mask, shift, result)
	case common.INT16:
		reconstructGroupVectorTemplated[int16](groupValues, minVal, mask, shift, result)
	case common.INT32:
		reconstructGroupVectorTemplated[int32](groupValues, minVal, mask, shift, result)
	case common.INT64:
		reconstructGroupVectorTemplated[int64](groupValues, minVal, mask, shift, result)
	case common.UINT8:
		reconstructGroupVectorTemplated[uint8](groupValues, minVal, mask, shift, result)
	case common.UINT16:
		reconstructGroupVectorTemplated[uint16](groupValues, minVal, mask, shift, result)
	case common.UINT32:
		reconstructGroupVectorTemplated[uint32](groupValues, minVal, mask, shift, result)
	case common.UINT64:
		reconstructGroupVectorTemplated[uint64](groupValues, minVal, mask, shift, result)
	default:
		panic(fmt.Sprintf("usp group type %s", result.Typ()))
	}
}

// Scan emits the next batch of set groups starting at *pos: group
// columns first, then one column per aggregate. An empty result means
// the scan is done.
func (ht *PerfectAggrHashTable) Scan(pos *int, result *chunk.Chunk) {
	result.Reset()
	ht._addresses.SetPhyFormat(chunk.PF_FLAT)
	addrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](ht._addresses)
	groupValues := ht._groupIdx[:0]

	for ; *pos < ht._totalGroups; *pos++ {
		if !ht._groupIsSet[*pos] {
			continue
		}
		addrs[len(groupValues)] = util.PointerAdd(ht._data, *pos*ht._tupleSize)
		groupValues = append(groupValues, uint64(*pos))
		if len(groupValues) == util.DefaultVectorSize {
			*pos++
			break
		}
	}
	if len(groupValues) == 0 {
		return
	}

	shift := ht._totalRequiredBits
	for i := range ht._groupTypes {
		shift -= ht._requiredBits[i]
		reconstructGroupVector(groupValues, ht._groupMinima[i], ht._requiredBits[i], shift, result.Data[i])
	}
	result.SetCard(len(groupValues))
	FinalizeStates(ht._rowState, ht._layout, ht._addresses, result, len(ht._groupTypes))
}

// Destroy releases every state and the row memory. It is idempotent.
func (ht *PerfectAggrHashTable) Destroy() {
	if ht._data == nil {
		return
	}
	if ht._layout.hasDestructor() {
		ht._addresses.SetPhyFormat(chunk.PF_FLAT)
		addrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](ht._addresses)
		count := 0
		for i := 0; i < ht._totalGroups; i++ {
			addrs[count] = util.PointerAdd(ht._data, i*ht._tupleSize)
			count++
			if count == util.DefaultVectorSize {
				DestroyStates(ht._rowState, ht._layout, ht._addresses, count)
				count = 0
			}
		}
		DestroyStates(ht._rowState, ht._layout, ht._addresses, count)
	}
	ht._alloc.Free(ht._data)
	ht._data = nil
}

// ResultTypes is the schema Scan fills.
func (ht *PerfectAggrHashTable) ResultTypes() []common.LType {
	ret := common.CopyLTypes(ht._groupTypes...)
	for _, aggr := range ht._layout._aggregates {
		ret = append(ret, aggr._func._retType)
	}
	return ret
}
