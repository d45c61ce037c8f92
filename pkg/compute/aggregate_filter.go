package compute

import (
	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// AggrFilter writes the indices of the payload rows that pass into sel
// and returns how many passed.
type AggrFilter func(payload *chunk.Chunk, sel *chunk.SelectVector) int

// BoolColumnFilter passes rows whose BOOLEAN column col is true.
func BoolColumnFilter(col int) AggrFilter {
	return func(payload *chunk.Chunk, sel *chunk.SelectVector) int {
		vec := payload.Data[col]
		util.AssertFunc(vec.Typ().Id == common.LTID_BOOLEAN)
		var uni chunk.UnifiedFormat
		vec.ToUnifiedFormat(payload.Card(), &uni)
		data := chunk.GetSliceInPhyFormatUnifiedFormat[bool](&uni)
		n := 0
		for i := 0; i < payload.Card(); i++ {
			idx := uni.Sel.GetIndex(i)
			if uni.Mask.RowIsValid(uint64(idx)) && data[idx] {
				sel.SetIndex(n, i)
				n++
			}
		}
		return n
	}
}

type AggrFilterData struct {
	_filter          AggrFilter
	_trueSel         *chunk.SelectVector
	_filteredPayload *chunk.Chunk
}

func NewAggrFilterData(filter AggrFilter, payloadTypes []common.LType) *AggrFilterData {
	ret := &AggrFilterData{
		_filter:          filter,
		_trueSel:         chunk.NewSelectVector(util.DefaultVectorSize),
		_filteredPayload: &chunk.Chunk{},
	}
	ret._filteredPayload.Init(payloadTypes, 0)
	return ret
}

// ApplyFilter evaluates the filter once over payload and slices the
// passing rows into the filtered payload.
func (fd *AggrFilterData) ApplyFilter(payload *chunk.Chunk) int {
	fd._filteredPayload.Reset()
	count := fd._filter(payload, fd._trueSel)
	if count == 0 {
		return 0
	}
	fd._filteredPayload.Slice(payload, fd._trueSel, count, 0)
	return count
}

// AggrFilterDataSet holds the filter state of every filtered aggregate.
type AggrFilterDataSet struct {
	_filterData []*AggrFilterData
}

func (set *AggrFilterDataSet) Init(aggrObjs []*AggrObject, payloadTypes []common.LType) {
	set._filterData = make([]*AggrFilterData, len(aggrObjs))
	for i, aggr := range aggrObjs {
		if aggr._filter != nil {
			set._filterData[i] = NewAggrFilterData(aggr._filter, payloadTypes)
		}
	}
}

func (set *AggrFilterDataSet) GetFilterData(aggrIdx int) *AggrFilterData {
	util.AssertFunc(aggrIdx < len(set._filterData))
	util.AssertFunc(set._filterData[aggrIdx] != nil)
	return set._filterData[aggrIdx]
}
