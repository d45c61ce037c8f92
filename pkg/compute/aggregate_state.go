package compute

import (
	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/util"
)

type AggrCombineType int

const (
	AggrCombineStandard AggrCombineType = iota
	// AggrCombineAllowDestructive lets combine move data out of the source
	// state. The source is dead afterwards.
	AggrCombineAllowDestructive
)

type AggrInputData struct {
	_alloc       util.Allocator
	_combineType AggrCombineType
}

func NewAggrInputData(alloc util.Allocator, combineType AggrCombineType) *AggrInputData {
	if alloc == nil {
		alloc = util.GAlloc
	}
	return &AggrInputData{
		_alloc:       alloc,
		_combineType: combineType,
	}
}

type AggrUnaryInput struct {
	_input     *AggrInputData
	_inputMask *util.Bitmap
	_inputIdx  int
}

func NewAggrUnaryInput(input *AggrInputData, mask *util.Bitmap) *AggrUnaryInput {
	return &AggrUnaryInput{
		_input:     input,
		_inputMask: mask,
		_inputIdx:  0,
	}
}

type AggrFinalizeData struct {
	_result    *chunk.Vector
	_input     *AggrInputData
	_resultIdx int
}

func NewAggrFinalizeData(result *chunk.Vector, input *AggrInputData) *AggrFinalizeData {
	return &AggrFinalizeData{
		_result: result,
		_input:  input,
	}
}

func (data *AggrFinalizeData) ReturnNull() {
	switch data._result.PhyFormat() {
	case chunk.PF_FLAT:
		chunk.SetNullInPhyFormatFlat(data._result, uint64(data._resultIdx), true)
	case chunk.PF_CONST:
		chunk.SetNullInPhyFormatConst(data._result, true)
	default:
		panic("usp")
	}
}
