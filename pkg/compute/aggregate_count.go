package compute

import (
	"unsafe"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// count and count_star keep an int64 per group and never finalize to NULL.

func countStateSize() int {
	return common.Int64Size
}

func countInit(pointer unsafe.Pointer) {
	util.Store[int64](0, pointer)
}

func countAdd(state unsafe.Pointer, n int) {
	util.Store[int64](util.Load[int64](state)+int64(n), state)
}

func countStarUpdate(inputs []*chunk.Vector, data *AggrInputData, inputCount int, states *chunk.Vector, count int) {
	util.AssertFunc(inputCount == 0)
	if states.PhyFormat().IsConst() {
		countAdd(chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)[0], count)
		return
	}
	var sdata chunk.UnifiedFormat
	states.ToUnifiedFormat(count, &sdata)
	ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	for i := 0; i < count; i++ {
		countAdd(ptrs[sdata.Sel.GetIndex(i)], 1)
	}
}

func countStarSimpleUpdate(inputs []*chunk.Vector, data *AggrInputData, inputCount int, state unsafe.Pointer, count int) {
	util.AssertFunc(inputCount == 0)
	countAdd(state, count)
}

func countUpdate(inputs []*chunk.Vector, data *AggrInputData, inputCount int, states *chunk.Vector, count int) {
	util.AssertFunc(inputCount == 1)
	input := inputs[0]
	if input.PhyFormat().IsConst() && states.PhyFormat().IsConst() {
		if !chunk.IsNullInPhyFormatConst(input) {
			countAdd(chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)[0], count)
		}
		return
	}
	var idata, sdata chunk.UnifiedFormat
	input.ToUnifiedFormat(count, &idata)
	states.ToUnifiedFormat(count, &sdata)
	ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	for i := 0; i < count; i++ {
		if idata.Mask.RowIsValid(uint64(idata.Sel.GetIndex(i))) {
			countAdd(ptrs[sdata.Sel.GetIndex(i)], 1)
		}
	}
}

func countSimpleUpdate(inputs []*chunk.Vector, data *AggrInputData, inputCount int, state unsafe.Pointer, count int) {
	util.AssertFunc(inputCount == 1)
	var idata chunk.UnifiedFormat
	inputs[0].ToUnifiedFormat(count, &idata)
	n := 0
	for i := 0; i < count; i++ {
		if idata.Mask.RowIsValid(uint64(idata.Sel.GetIndex(i))) {
			n++
		}
	}
	countAdd(state, n)
}

func countCombine(source *chunk.Vector, target *chunk.Vector, data *AggrInputData, count int) {
	src := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](source)
	tgt := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](target)
	for i := 0; i < count; i++ {
		countAdd(tgt[i], int(util.Load[int64](src[i])))
	}
}

func countFinalize(states *chunk.Vector, data *AggrInputData, result *chunk.Vector, count int, offset int) {
	if states.PhyFormat().IsConst() {
		result.SetPhyFormat(chunk.PF_CONST)
		ptrs := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		chunk.GetSliceInPhyFormatConst[int64](result)[0] = util.Load[int64](ptrs[0])
		return
	}
	util.AssertFunc(states.PhyFormat().IsFlat())
	result.SetPhyFormat(chunk.PF_FLAT)
	ptrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](states)
	res := chunk.GetSliceInPhyFormatFlat[int64](result)
	for i := 0; i < count; i++ {
		res[i+offset] = util.Load[int64](ptrs[i])
	}
}

// GetCountAggr is count(x) over any input type.
func GetCountAggr(typ common.LType) *AggrFunction {
	return &AggrFunction{
		_name:         "count",
		_args:         []common.LType{typ},
		_retType:      common.BigintType(),
		_nullHandling: SpecialHandling,
		_stateSize:    countStateSize,
		_init:         countInit,
		_update:       countUpdate,
		_combine:      countCombine,
		_finalize:     countFinalize,
		_simpleUpdate: countSimpleUpdate,
	}
}

// GetCountStarAggr is count(*). It has no input column.
func GetCountStarAggr() *AggrFunction {
	return &AggrFunction{
		_name:         "count_star",
		_retType:      common.BigintType(),
		_nullHandling: SpecialHandling,
		_stateSize:    countStateSize,
		_init:         countInit,
		_update:       countStarUpdate,
		_combine:      countCombine,
		_finalize:     countFinalize,
		_simpleUpdate: countStarSimpleUpdate,
	}
}
