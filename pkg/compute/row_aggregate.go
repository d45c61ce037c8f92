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

// Row operations walk vectors of row addresses laid out by a
// TupleDataLayout. The caller's address vectors are never modified;
// every shift happens on a private copy.

type RowOperationsState struct {
	_alloc util.Allocator
}

func NewRowOperationsState(alloc util.Allocator) *RowOperationsState {
	if alloc == nil {
		alloc = util.GAlloc
	}
	return &RowOperationsState{_alloc: alloc}
}

// InitStates runs init on every aggregate state of the selected rows.
// sel may be nil for identity.
func InitStates(
	layout *TupleDataLayout,
	addresses *chunk.Vector,
	sel *chunk.SelectVector,
	cnt int,
) {
	if cnt == 0 {
		return
	}
	if sel == nil {
		sel = &chunk.SelectVector{}
	}

	pointers := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](addresses)
	offsets := layout.offsets()
	aggrIdx := layout.aggrIdx()

	for _, aggr := range layout._aggregates {
		for i := 0; i < cnt; i++ {
			row := pointers[sel.GetIndex(i)]
			aggr._func._init(util.PointerAdd(row, offsets[aggrIdx]))
		}
		aggrIdx++
	}
}

// DestroyStates runs the destructor of every aggregate that has one.
func DestroyStates(
	state *RowOperationsState,
	layout *TupleDataLayout,
	addresses *chunk.Vector,
	cnt int,
) {
	if cnt == 0 {
		return
	}
	local := shiftedAddresses(addresses, cnt, layout.aggrOffset())
	for _, aggr := range layout._aggregates {
		if aggr._func._destructor != nil {
			inputData := NewAggrInputData(state._alloc, AggrCombineStandard)
			aggr._func._destructor(local, inputData, cnt)
		}
		AddInPlace(local, int64(aggr._payloadSize), cnt)
	}
}

// UpdateStates feeds the aggregate's input columns starting at argIdx
// into the states at addresses. addresses point at the aggregate state.
func UpdateStates(
	state *RowOperationsState,
	aggr *AggrObject,
	addresses *chunk.Vector,
	payload *chunk.Chunk,
	argIdx int,
	cnt int,
) {
	if cnt == 0 {
		return
	}
	inputData := NewAggrInputData(state._alloc, AggrCombineStandard)
	var input []*chunk.Vector
	if aggr._childCount != 0 {
		input = payload.Data[argIdx : argIdx+aggr._childCount]
	}
	aggr._func._update(
		input,
		inputData,
		aggr._childCount,
		addresses,
		cnt,
	)
}

// SimpleUpdateStates is UpdateStates for a single state at statePtr.
// Every input row folds into that state.
func SimpleUpdateStates(
	state *RowOperationsState,
	aggr *AggrObject,
	statePtr unsafe.Pointer,
	payload *chunk.Chunk,
	argIdx int,
	cnt int,
) {
	if cnt == 0 {
		return
	}
	util.AssertFunc(aggr._func._simpleUpdate != nil)
	inputData := NewAggrInputData(state._alloc, AggrCombineStandard)
	var input []*chunk.Vector
	if aggr._childCount != 0 {
		input = payload.Data[argIdx : argIdx+aggr._childCount]
	}
	aggr._func._simpleUpdate(
		input,
		inputData,
		aggr._childCount,
		statePtr,
		cnt,
	)
}

// UpdateFilteredStates updates only the rows that pass the aggregate's
// filter. Nothing happens when no row passes.
func UpdateFilteredStates(
	state *RowOperationsState,
	filterData *AggrFilterData,
	aggr *AggrObject,
	addresses *chunk.Vector,
	payload *chunk.Chunk,
	argIdx int,
) {
	cnt := filterData.ApplyFilter(payload)
	if cnt == 0 {
		return
	}

	filtered := chunk.NewVector(common.PointerType(), false, 0)
	filtered.Slice(addresses, filterData._trueSel, cnt)
	filtered.Flatten(cnt)

	UpdateStates(state, aggr, filtered, filterData._filteredPayload, argIdx, cnt)
}

// CombineStates merges the states at sources into those at targets.
// Sources are consumed.
func CombineStates(
	state *RowOperationsState,
	layout *TupleDataLayout,
	sources *chunk.Vector,
	targets *chunk.Vector,
	cnt int,
) {
	if cnt == 0 {
		return
	}

	localSources := shiftedAddresses(sources, cnt, layout.aggrOffset())
	localTargets := shiftedAddresses(targets, cnt, layout.aggrOffset())
	if localSources.PhyFormat().IsConst() {
		localSources.Flatten(cnt)
	}
	if localTargets.PhyFormat().IsConst() {
		localTargets.Flatten(cnt)
	}

	for _, aggr := range layout._aggregates {
		inputData := NewAggrInputData(state._alloc, AggrCombineAllowDestructive)
		aggr._func._combine(localSources, localTargets, inputData, cnt)

		AddInPlace(localSources, int64(aggr._payloadSize), cnt)
		AddInPlace(localTargets, int64(aggr._payloadSize), cnt)
	}
}

// FinalizeStates writes aggregate i into result.Data[aggrIdx+i].
func FinalizeStates(
	state *RowOperationsState,
	layout *TupleDataLayout,
	addresses *chunk.Vector,
	result *chunk.Chunk,
	aggrIdx int,
) {
	cnt := result.Card()
	if cnt == 0 {
		return
	}

	local := shiftedAddresses(addresses, cnt, layout.aggrOffset())

	for i, aggr := range layout._aggregates {
		target := result.Data[aggrIdx+i]
		util.AssertFunc(target.Typ().GetInternalType() == aggr._retType)
		inputData := NewAggrInputData(state._alloc, AggrCombineStandard)
		aggr._func._finalize(local, inputData, target, cnt, 0)

		AddInPlace(local, int64(aggr._payloadSize), cnt)
	}
}
