package compute

import (
	"unsafe"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// UngroupedAggregate folds every input row into a single row of states,
// as in SELECT bit_xor(x), count(*) FROM t.
type UngroupedAggregate struct {
	_layout       *TupleDataLayout
	_payloadTypes []common.LType
	_alloc        util.Allocator
	_rowState     *RowOperationsState
	_filterSet    AggrFilterDataSet

	_data    unsafe.Pointer
	_address *chunk.Vector
}

// NewUngroupedAggregate expects payload chunks shaped like payloadTypes.
// A nil payloadTypes means AggrPayloadTypes(aggrObjs).
func NewUngroupedAggregate(
	payloadTypes []common.LType,
	aggrObjs []*AggrObject,
	alloc util.Allocator,
) *UngroupedAggregate {
	if alloc == nil {
		alloc = util.GAlloc
	}
	if payloadTypes == nil {
		payloadTypes = AggrPayloadTypes(aggrObjs)
	}
	ua := &UngroupedAggregate{
		_layout:       NewTupleDataLayout(nil, aggrObjs, false),
		_payloadTypes: common.CopyLTypes(payloadTypes...),
		_alloc:        alloc,
		_rowState:     NewRowOperationsState(alloc),
		_address:      chunk.NewFlatVector(common.PointerType(), 1),
	}
	ua._filterSet.Init(aggrObjs, ua._payloadTypes)
	ua._data = alloc.Alloc(max(ua._layout.rowWidth(), 1))
	chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](ua._address)[0] = ua._data
	InitStates(ua._layout, ua._address, nil, 1)
	return ua
}

func (ua *UngroupedAggregate) Layout() *TupleDataLayout {
	return ua._layout
}

// Sink folds payload into the states. Payload holds the inputs of every
// aggregate in order.
func (ua *UngroupedAggregate) Sink(payload *chunk.Chunk) {
	util.AssertFunc(ua._data != nil)
	util.AssertFunc(payload.ColumnCount() == len(ua._payloadTypes))
	payloadIdx := 0
	for aggrIdx, aggr := range ua._layout._aggregates {
		statePtr := util.PointerAdd(ua._data, ua._layout._offsets[ua._layout.aggrIdx()+aggrIdx])
		if aggr._filter != nil {
			filterData := ua._filterSet.GetFilterData(aggrIdx)
			cnt := filterData.ApplyFilter(payload)
			SimpleUpdateStates(ua._rowState, aggr, statePtr, filterData._filteredPayload, payloadIdx, cnt)
		} else {
			SimpleUpdateStates(ua._rowState, aggr, statePtr, payload, payloadIdx, payload.Card())
		}
		payloadIdx += aggr._childCount
	}
}

// Combine merges other into ua. other must not be used afterwards
// except for Destroy.
func (ua *UngroupedAggregate) Combine(other *UngroupedAggregate) {
	util.AssertFunc(ua._layout.rowWidth() == other._layout.rowWidth())
	CombineStates(ua._rowState, ua._layout, other._address, ua._address, 1)
}

// Finalize writes one row, one column per aggregate.
func (ua *UngroupedAggregate) Finalize(result *chunk.Chunk) {
	result.Reset()
	result.SetCard(1)
	FinalizeStates(ua._rowState, ua._layout, ua._address, result, 0)
}

func (ua *UngroupedAggregate) ResultTypes() []common.LType {
	ret := make([]common.LType, 0, len(ua._layout._aggregates))
	for _, aggr := range ua._layout._aggregates {
		ret = append(ret, aggr._func._retType)
	}
	return ret
}

// Destroy releases the states and the row. It is idempotent.
func (ua *UngroupedAggregate) Destroy() {
	if ua._data == nil {
		return
	}
	if ua._layout.hasDestructor() {
		DestroyStates(ua._rowState, ua._layout, ua._address, 1)
	}
	ua._alloc.Free(ua._data)
	ua._data = nil
}
