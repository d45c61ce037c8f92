package compute

import (
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// AggrObject is one aggregate of a plan bound to its function.
// It is immutable after construction.
type AggrObject struct {
	_name        string
	_func        *AggrFunction
	_childCount  int
	_payloadSize int
	_retType     common.PhyType
	_filter      AggrFilter
}

func NewAggrObject(fun *AggrFunction, filter AggrFilter) *AggrObject {
	util.AssertFunc(fun != nil)
	ret := new(AggrObject)
	ret._name = fun._name
	ret._func = fun
	ret._childCount = len(fun._args)
	ret._retType = fun._retType.GetInternalType()
	ret._payloadSize = fun._stateSize()
	ret._filter = filter
	return ret
}

func CreateAggrObjects(funcs []*AggrFunction) []*AggrObject {
	ret := make([]*AggrObject, 0, len(funcs))
	for _, fun := range funcs {
		ret = append(ret, NewAggrObject(fun, nil))
	}
	return ret
}

func (obj *AggrObject) Name() string {
	return obj._name
}

func (obj *AggrObject) PayloadSize() int {
	return obj._payloadSize
}

func (obj *AggrObject) ChildCount() int {
	return obj._childCount
}

func (obj *AggrObject) RetType() common.LType {
	return obj._func._retType
}

func (obj *AggrObject) HasFilter() bool {
	return obj._filter != nil
}

// AggrPayloadTypes lists the input column types consumed by aggrObjs in
// order. It is the payload layout AddChunk and Sink expect when no
// aggregate filters on an extra column.
func AggrPayloadTypes(aggrObjs []*AggrObject) []common.LType {
	ret := make([]common.LType, 0)
	for _, obj := range aggrObjs {
		ret = append(ret, obj._func._args...)
	}
	return ret
}
