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

	"github.com/cockroachdb/errors"
	"github.com/xlab/treeprint"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// TupleDataLayout is the row format of the aggregate states:
//
//	bitmap | key columns | aggr states |
//	|------|-------------|-------------|
//	       ^             ^             ^
//	  bitmapWidth    aggrOffset     rowWidth
//
// offsets holds the start of each key column, then of each aggr state.
type TupleDataLayout struct {
	//types of the key columns
	_types []common.LType

	//Width of bitmap header
	_bitmapWidth int

	//Width of key part
	_dataWidth int

	//Width of agg state part
	_aggWidth int

	//Width of entire row
	_rowWidth int

	_offsets []int

	//all key columns are constant size
	_allConst bool

	_aggregates []*AggrObject
}

// NewTupleDataLayout panics if an aggregate cannot combine.
func NewTupleDataLayout(types []common.LType, aggrObjs []*AggrObject, align bool) *TupleDataLayout {
	for _, aggr := range aggrObjs {
		if aggr._func._combine == nil {
			panic(errors.AssertionFailedf("aggregate %s has no combine", aggr._name))
		}
	}
	layout := &TupleDataLayout{
		_types:    common.CopyLTypes(types...),
		_allConst: true,
	}

	alignWidth := func() {
		if align {
			layout._rowWidth = util.AlignValue8(layout._rowWidth)
		}
	}

	layout._bitmapWidth = util.EntryCount(len(layout._types))
	layout._rowWidth = layout._bitmapWidth
	alignWidth()

	for _, lType := range layout._types {
		layout._allConst = layout._allConst &&
			lType.GetInternalType().IsConstant()
	}

	for _, lType := range layout._types {
		layout._offsets = append(layout._offsets, layout._rowWidth)
		if lType.GetInternalType().IsConstant() ||
			lType.GetInternalType().IsVarchar() {
			layout._rowWidth += lType.GetInternalType().Size()
		} else {
			//pointer to the actual data
			layout._rowWidth += common.Int64Size
		}
		alignWidth()
	}

	layout._dataWidth = layout._rowWidth - layout._bitmapWidth

	layout._aggregates = aggrObjs
	for _, aggrObj := range aggrObjs {
		layout._offsets = append(layout._offsets, layout._rowWidth)
		layout._rowWidth += aggrObj._payloadSize
		alignWidth()
	}

	layout._aggWidth = layout._rowWidth - layout.dataWidth() - layout.dataOffset()

	return layout
}

func (layout *TupleDataLayout) columnCount() int {
	return len(layout._types)
}

func (layout *TupleDataLayout) types() []common.LType {
	return common.CopyLTypes(layout._types...)
}

// total Width of each row
func (layout *TupleDataLayout) rowWidth() int {
	return layout._rowWidth
}

// start of the data in each row
func (layout *TupleDataLayout) dataOffset() int {
	return layout._bitmapWidth
}

func (layout *TupleDataLayout) dataWidth() int {
	return layout._dataWidth
}

// start of agg
func (layout *TupleDataLayout) aggrOffset() int {
	return layout._bitmapWidth + layout._dataWidth
}

// index of the first aggr in offsets
func (layout *TupleDataLayout) aggrIdx() int {
	return layout.columnCount()
}

func (layout *TupleDataLayout) offsets() []int {
	return util.CopyTo[int](layout._offsets)
}

func (layout *TupleDataLayout) allConst() bool {
	return layout._allConst
}

func (layout *TupleDataLayout) hasDestructor() bool {
	for _, aggr := range layout._aggregates {
		if aggr._func._destructor != nil {
			return true
		}
	}
	return false
}

func (layout *TupleDataLayout) RowWidth() int {
	return layout.rowWidth()
}

func (layout *TupleDataLayout) AggrOffset() int {
	return layout.aggrOffset()
}

func (layout *TupleDataLayout) Aggregates() []*AggrObject {
	return layout._aggregates
}

func (layout *TupleDataLayout) String() string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("TupleDataLayout rowWidth %d", layout._rowWidth))
	tree.AddNode(fmt.Sprintf("bitmap [0, %d)", layout._bitmapWidth))
	keys := tree.AddBranch(fmt.Sprintf("keys width %d", layout._dataWidth))
	for i, typ := range layout._types {
		keys.AddNode(fmt.Sprintf("%d: %s @%d", i, typ, layout._offsets[i]))
	}
	aggrs := tree.AddBranch(fmt.Sprintf("aggregates @%d width %d", layout.aggrOffset(), layout._aggWidth))
	for i, aggr := range layout._aggregates {
		aggrs.AddNode(fmt.Sprintf("%d: %s @%d size %d",
			i, aggr._name, layout._offsets[layout.aggrIdx()+i], aggr._payloadSize))
	}
	return tree.String()
}
