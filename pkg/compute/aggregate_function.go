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
)

type FuncNullHandling int

const (
	DefaultNullHandling FuncNullHandling = iota
	SpecialHandling
)

type aggrStateSize func() int
type aggrInit func(pointer unsafe.Pointer)
type aggrUpdate func([]*chunk.Vector, *AggrInputData, int, *chunk.Vector, int)
type aggrCombine func(*chunk.Vector, *chunk.Vector, *AggrInputData, int)
type aggrFinalize func(*chunk.Vector, *AggrInputData, *chunk.Vector, int, int)
type aggrDestructor func(*chunk.Vector, *AggrInputData, int)
type aggrSimpleUpdate func([]*chunk.Vector, *AggrInputData, int, unsafe.Pointer, int)

// AggrFunction is the capability bundle of one aggregate function.
// _destructor is nil for states that own no memory.
type AggrFunction struct {
	_name         string
	_args         []common.LType
	_retType      common.LType
	_nullHandling FuncNullHandling

	_stateSize    aggrStateSize
	_init         aggrInit
	_update       aggrUpdate
	_combine      aggrCombine
	_finalize     aggrFinalize
	_destructor   aggrDestructor
	_simpleUpdate aggrSimpleUpdate
}

func (fun *AggrFunction) Name() string {
	return fun._name
}

func (fun *AggrFunction) Args() []common.LType {
	return common.CopyLTypes(fun._args...)
}

func (fun *AggrFunction) RetType() common.LType {
	return fun._retType
}

func (fun *AggrFunction) HasDestructor() bool {
	return fun._destructor != nil
}
