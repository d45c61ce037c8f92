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

// AggrOp drives one kind of aggregate state. STATE lives in memory
// handed out by util.Allocator and must not hold Go pointers.
type AggrOp[STATE any, InputT any, ResultT any] interface {
	Init(*STATE)
	Operation(*STATE, *InputT, *AggrUnaryInput)
	ConstantOperation(*STATE, *InputT, *AggrUnaryInput, int)
	Combine(*STATE, *STATE, *AggrInputData)
	Finalize(*STATE, *ResultT, *AggrFinalizeData)
	IgnoreNull() bool
}

type AggrDestroyOp[STATE any] interface {
	Destroy(*STATE, *AggrInputData)
}

func StateSize[STATE any]() int {
	var val STATE
	return int(unsafe.Sizeof(val))
}

func UnaryAggregate[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	inputTyp common.LType,
	retTyp common.LType,
	nullHandling FuncNullHandling,
	aop OP,
) *AggrFunction {
	var size aggrStateSize
	var init aggrInit
	var update aggrUpdate
	var combine aggrCombine
	var finalize aggrFinalize
	var simpleUpdate aggrSimpleUpdate
	size = func() int {
		return StateSize[STATE]()
	}
	init = func(pointer unsafe.Pointer) {
		aop.Init((*STATE)(pointer))
	}
	update = func(inputs []*chunk.Vector, data *AggrInputData, inputCount int, states *chunk.Vector, count int) {
		util.AssertFunc(inputCount == 1)
		UnaryScatter[STATE, InputT, ResultT, OP](inputs[0], states, data, count, aop)
	}
	combine = func(source *chunk.Vector, target *chunk.Vector, data *AggrInputData, count int) {
		Combine[STATE, InputT, ResultT, OP](source, target, data, count, aop)
	}
	finalize = func(states *chunk.Vector, data *AggrInputData, result *chunk.Vector, count int, offset int) {
		Finalize[STATE, InputT, ResultT, OP](states, data, result, count, offset, aop)
	}
	simpleUpdate = func(inputs []*chunk.Vector, data *AggrInputData, inputCount int, state unsafe.Pointer, count int) {
		util.AssertFunc(inputCount == 1)
		UnaryUpdate[STATE, InputT, ResultT, OP](inputs[0], data, state, count, aop)
	}
	return &AggrFunction{
		_args:         []common.LType{inputTyp},
		_retType:      retTyp,
		_stateSize:    size,
		_init:         init,
		_update:       update,
		_combine:      combine,
		_finalize:     finalize,
		_nullHandling: nullHandling,
		_simpleUpdate: simpleUpdate,
	}
}

// UnaryAggregateDestructor is UnaryAggregate for states that own memory.
func UnaryAggregateDestructor[STATE any, InputT any, ResultT any, OP interface {
	AggrOp[STATE, InputT, ResultT]
	AggrDestroyOp[STATE]
}](
	inputTyp common.LType,
	retTyp common.LType,
	nullHandling FuncNullHandling,
	aop OP,
) *AggrFunction {
	ret := UnaryAggregate[STATE, InputT, ResultT, OP](inputTyp, retTyp, nullHandling, aop)
	ret._destructor = func(states *chunk.Vector, data *AggrInputData, count int) {
		Destroy[STATE, OP](states, data, count, aop)
	}
	return ret
}

func UnaryScatter[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	input *chunk.Vector,
	states *chunk.Vector,
	data *AggrInputData,
	count int,
	aop OP,
) {
	if input.PhyFormat().IsConst() &&
		states.PhyFormat().IsConst() {
		if aop.IgnoreNull() && chunk.IsNullInPhyFormatConst(input) {
			return
		}
		inputSlice := chunk.GetSliceInPhyFormatConst[InputT](input)
		statesPtrSlice := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		inputData := NewAggrUnaryInput(data, chunk.GetMaskInPhyFormatConst(input))
		aop.ConstantOperation((*STATE)(statesPtrSlice[0]), &inputSlice[0], inputData, count)
	} else if input.PhyFormat().IsFlat() && states.PhyFormat().IsFlat() {
		inputSlice := chunk.GetSliceInPhyFormatFlat[InputT](input)
		statesPtrSlice := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](states)
		UnaryFlatLoop[STATE, InputT, ResultT, OP](
			inputSlice,
			data,
			statesPtrSlice,
			chunk.GetMaskInPhyFormatFlat(input),
			count,
			aop,
		)
	} else {
		var idata, sdata chunk.UnifiedFormat
		input.ToUnifiedFormat(count, &idata)
		states.ToUnifiedFormat(count, &sdata)
		UnaryScatterLoop[STATE, InputT, ResultT, OP](
			chunk.GetSliceInPhyFormatUnifiedFormat[InputT](&idata),
			data,
			chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata),
			idata.Sel,
			sdata.Sel,
			idata.Mask,
			count,
			aop,
		)
	}
}

func UnaryFlatLoop[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	inputSlice []InputT,
	data *AggrInputData,
	statesPtrSlice []unsafe.Pointer,
	mask *util.Bitmap,
	count int,
	aop OP,
) {
	input := NewAggrUnaryInput(data, mask)
	baseIdx := &input._inputIdx
	if aop.IgnoreNull() && !mask.AllValid() {
		*baseIdx = 0
		eCnt := util.EntryCount(count)
		for eIdx := 0; eIdx < eCnt; eIdx++ {
			e := mask.GetEntry(uint64(eIdx))
			next := min(*baseIdx+8, count)
			if util.AllValidInEntry(e) {
				for ; *baseIdx < next; *baseIdx++ {
					aop.Operation((*STATE)(statesPtrSlice[*baseIdx]), &inputSlice[*baseIdx], input)
				}
			} else if util.NoneValidInEntry(e) {
				*baseIdx = next
				continue
			} else {
				start := *baseIdx
				for ; *baseIdx < next; *baseIdx++ {
					if util.RowIsValidInEntry(e, uint64(*baseIdx-start)) {
						aop.Operation((*STATE)(statesPtrSlice[*baseIdx]), &inputSlice[*baseIdx], input)
					}
				}
			}
		}
	} else {
		for *baseIdx = 0; *baseIdx < count; *baseIdx++ {
			aop.Operation((*STATE)(statesPtrSlice[*baseIdx]), &inputSlice[*baseIdx], input)
		}
	}
}

func UnaryScatterLoop[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	inputSlice []InputT,
	data *AggrInputData,
	statesPtrSlice []unsafe.Pointer,
	isel *chunk.SelectVector,
	ssel *chunk.SelectVector,
	mask *util.Bitmap,
	count int,
	aop OP,
) {
	input := NewAggrUnaryInput(data, mask)
	if aop.IgnoreNull() && !mask.AllValid() {
		for i := 0; i < count; i++ {
			input._inputIdx = isel.GetIndex(i)
			sidx := ssel.GetIndex(i)
			if mask.RowIsValid(uint64(input._inputIdx)) {
				aop.Operation((*STATE)(statesPtrSlice[sidx]), &inputSlice[input._inputIdx], input)
			}
		}
	} else {
		for i := 0; i < count; i++ {
			input._inputIdx = isel.GetIndex(i)
			sidx := ssel.GetIndex(i)
			aop.Operation((*STATE)(statesPtrSlice[sidx]), &inputSlice[input._inputIdx], input)
		}
	}
}

func Combine[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	source *chunk.Vector,
	target *chunk.Vector,
	data *AggrInputData,
	count int,
	aop OP,
) {
	util.AssertFunc(source.Typ().IsPointer())
	util.AssertFunc(target.Typ().IsPointer())
	sourcePtrSlice := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](source)
	targetPtrSlice := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](target)
	for i := 0; i < count; i++ {
		aop.Combine((*STATE)(sourcePtrSlice[i]), (*STATE)(targetPtrSlice[i]), data)
	}
}

func Finalize[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	states *chunk.Vector,
	data *AggrInputData,
	result *chunk.Vector,
	count int,
	offset int,
	aop OP,
) {
	if states.PhyFormat().IsConst() {
		result.SetPhyFormat(chunk.PF_CONST)
		statePtrSlice := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		resultSlice := chunk.GetSliceInPhyFormatConst[ResultT](result)
		final := NewAggrFinalizeData(result, data)
		aop.Finalize((*STATE)(statePtrSlice[0]), &resultSlice[0], final)
	} else {
		util.AssertFunc(states.PhyFormat().IsFlat())
		result.SetPhyFormat(chunk.PF_FLAT)
		statePtrSlice := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](states)
		resultSlice := chunk.GetSliceInPhyFormatFlat[ResultT](result)
		final := NewAggrFinalizeData(result, data)
		for i := 0; i < count; i++ {
			final._resultIdx = i + offset
			aop.Finalize((*STATE)(statePtrSlice[i]), &resultSlice[final._resultIdx], final)
		}
	}
}

func Destroy[STATE any, OP AggrDestroyOp[STATE]](
	states *chunk.Vector,
	data *AggrInputData,
	count int,
	dop OP,
) {
	if states.PhyFormat().IsConst() {
		statePtrSlice := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		dop.Destroy((*STATE)(statePtrSlice[0]), data)
		return
	}
	util.AssertFunc(states.PhyFormat().IsFlat())
	statePtrSlice := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](states)
	for i := 0; i < count; i++ {
		dop.Destroy((*STATE)(statePtrSlice[i]), data)
	}
}

// UnaryUpdate folds every row of input into the single state at statePtr.
func UnaryUpdate[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	input *chunk.Vector,
	data *AggrInputData,
	statePtr unsafe.Pointer,
	count int,
	aop OP,
) {
	switch input.PhyFormat() {
	case chunk.PF_CONST:
		if aop.IgnoreNull() && chunk.IsNullInPhyFormatConst(input) {
			return
		}
		inputSlice := chunk.GetSliceInPhyFormatConst[InputT](input)
		inputData := NewAggrUnaryInput(data, chunk.GetMaskInPhyFormatConst(input))
		aop.ConstantOperation((*STATE)(statePtr), &inputSlice[0], inputData, count)
	case chunk.PF_FLAT:
		inputSlice := chunk.GetSliceInPhyFormatFlat[InputT](input)
		UnaryFlatUpdateLoop[STATE, InputT, ResultT, OP](
			inputSlice,
			data,
			statePtr,
			count,
			chunk.GetMaskInPhyFormatFlat(input),
			aop,
		)
	default:
		var idata chunk.UnifiedFormat
		input.ToUnifiedFormat(count, &idata)
		UnaryUpdateLoop[STATE, InputT, ResultT, OP](
			chunk.GetSliceInPhyFormatUnifiedFormat[InputT](&idata),
			data,
			statePtr,
			count,
			idata.Mask,
			idata.Sel,
			aop,
		)
	}
}

func UnaryFlatUpdateLoop[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	inputSlice []InputT,
	data *AggrInputData,
	statePtr unsafe.Pointer,
	count int,
	mask *util.Bitmap,
	aop OP,
) {
	input := NewAggrUnaryInput(data, mask)
	baseIdx := &input._inputIdx
	*baseIdx = 0
	eCnt := util.EntryCount(count)
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		e := mask.GetEntry(uint64(eIdx))
		next := min(*baseIdx+8, count)
		if !aop.IgnoreNull() || util.AllValidInEntry(e) {
			for ; *baseIdx < next; *baseIdx++ {
				aop.Operation((*STATE)(statePtr), &inputSlice[*baseIdx], input)
			}
		} else if util.NoneValidInEntry(e) {
			*baseIdx = next
			continue
		} else {
			start := *baseIdx
			for ; *baseIdx < next; *baseIdx++ {
				if util.RowIsValidInEntry(e, uint64(*baseIdx-start)) {
					aop.Operation((*STATE)(statePtr), &inputSlice[*baseIdx], input)
				}
			}
		}
	}
}

func UnaryUpdateLoop[STATE any, InputT any, ResultT any, OP AggrOp[STATE, InputT, ResultT]](
	inputSlice []InputT,
	data *AggrInputData,
	statePtr unsafe.Pointer,
	count int,
	mask *util.Bitmap,
	selVec *chunk.SelectVector,
	aop OP,
) {
	input := NewAggrUnaryInput(data, mask)
	if aop.IgnoreNull() && !mask.AllValid() {
		for i := 0; i < count; i++ {
			input._inputIdx = selVec.GetIndex(i)
			if mask.RowIsValid(uint64(input._inputIdx)) {
				aop.Operation((*STATE)(statePtr), &inputSlice[input._inputIdx], input)
			}
		}
	} else {
		for i := 0; i < count; i++ {
			input._inputIdx = selVec.GetIndex(i)
			aop.Operation((*STATE)(statePtr), &inputSlice[input._inputIdx], input)
		}
	}
}
