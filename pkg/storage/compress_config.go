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

package storage

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

type LoadResult int

const (
	AlreadyLoadedBeforeLock LoadResult = iota
	AlreadyLoadedAfterLock
	LazilyLoaded
)

func (lr LoadResult) String() string {
	switch lr {
	case AlreadyLoadedBeforeLock:
		return "already loaded before lock"
	case AlreadyLoadedAfterLock:
		return "already loaded after lock"
	case LazilyLoaded:
		return "lazily loaded"
	default:
		return "invalid"
	}
}

// CompressionFunctionSet is the per database catalog of compression
// functions. Each physical type is populated at most once, on first use.
// Lookups after that take no lock.
type CompressionFunctionSet struct {
	_lock      sync.Mutex
	_methods   []compressMethod
	_functions [PhyTypeCount][]*CompressFunction
	_isLoaded  [PhyTypeCount]atomic.Bool
	_disabled  [CompressTypeCount]atomic.Bool
}

func NewCompressionFunctionSet() *CompressionFunctionSet {
	return newCompressionFunctionSetWithMethods(internalCompressMethods)
}

func newCompressionFunctionSetWithMethods(methods []compressMethod) *CompressionFunctionSet {
	return &CompressionFunctionSet{
		_methods: methods,
	}
}

func (set *CompressionFunctionSet) LoadCompressionFunctions(pt common.PhyType) LoadResult {
	index := compressionIndex(pt)
	if set._isLoaded[index].Load() {
		return AlreadyLoadedBeforeLock
	}
	set._lock.Lock()
	defer set._lock.Unlock()
	if set._isLoaded[index].Load() {
		return AlreadyLoadedAfterLock
	}
	var list []*CompressFunction
	for _, method := range set._methods {
		if method._getFunction == nil {
			break
		}
		if !method._supportsType(pt) {
			continue
		}
		list = append(list, method._getFunction(pt))
	}
	set._functions[index] = list
	set._isLoaded[index].Store(true)
	util.Debug("load compression functions",
		zap.String("phyType", pt.String()),
		zap.Int("count", len(list)))
	return LazilyLoaded
}

// GetCompressionFunctions returns the enabled functions the writer may
// choose for pt, in preference order.
func (set *CompressionFunctionSet) GetCompressionFunctions(pt common.PhyType) []*CompressFunction {
	set.LoadCompressionFunctions(pt)
	index := compressionIndex(pt)
	ret := make([]*CompressFunction, 0, len(set._functions[index]))
	for _, fun := range set._functions[index] {
		if set._disabled[fun._typ].Load() {
			continue
		}
		if !emitCompressFunction(fun._typ) {
			continue
		}
		ret = append(ret, fun)
	}
	return ret
}

// GetCompressionFunction finds typ for pt. nil means pt does not
// support typ. Disabled kinds are still found.
func (set *CompressionFunctionSet) GetCompressionFunction(typ CompressType, pt common.PhyType) (LoadResult, *CompressFunction) {
	lr := set.LoadCompressionFunctions(pt)
	for _, fun := range set._functions[compressionIndex(pt)] {
		if fun._typ == typ {
			return lr, fun
		}
	}
	return lr, nil
}

// SetDisabledCompressionMethods replaces the disabled set with methods.
func (set *CompressionFunctionSet) SetDisabledCompressionMethods(methods []CompressType) {
	set.ResetDisabledMethods()
	for _, method := range methods {
		set._disabled[method].Store(true)
	}
}

func (set *CompressionFunctionSet) IsDisabled(typ CompressType) bool {
	return set._disabled[typ].Load()
}

func (set *CompressionFunctionSet) GetDisabledCompressionMethods() []CompressType {
	var ret []CompressType
	for i := range set._disabled {
		if set._disabled[i].Load() {
			ret = append(ret, CompressType(i))
		}
	}
	return ret
}

func (set *CompressionFunctionSet) ResetDisabledMethods() {
	for i := range set._disabled {
		set._disabled[i].Store(false)
	}
}

func (set *CompressionFunctionSet) possibleCount(pt common.PhyType) int {
	cnt := 0
	for _, method := range set._methods {
		if method._getFunction == nil {
			break
		}
		if method._supportsType(pt) {
			cnt++
		}
	}
	return cnt
}

func (set *CompressionFunctionSet) GetDebugInfo() string {
	var types []string
	for i := range set._disabled {
		types = append(types, fmt.Sprintf("%d: {compression type: %s, is disabled: %v}",
			i, CompressType(i), set._disabled[i].Load()))
	}

	set._lock.Lock()
	defer set._lock.Unlock()
	var phyTypes []string
	for index, pt := range compressPhyTypes {
		util.AssertFunc(compressionIndex(pt) == index)
		list := set._functions[index]
		info := fmt.Sprintf("%d: {physical type: %s, loaded: %v, loaded functions: %d (out of: %d)}",
			index, pt, set._isLoaded[index].Load(), len(list), set.possibleCount(pt))
		for i, fun := range list {
			info += fmt.Sprintf("\n\t\t%d: {compression type: %s, physical type: %s}", i, fun._typ, fun._dataType)
		}
		phyTypes = append(phyTypes, info)
	}
	return fmt.Sprintf("DEBUG INFO:\n - Compression types:\n\t%s\n\n - Physical types:\n\t%s",
		strings.Join(types, "\n\t"),
		strings.Join(phyTypes, "\n\t"))
}

// DebugTree renders the loaded physical types as a tree.
func (set *CompressionFunctionSet) DebugTree() string {
	tree := treeprint.NewWithRoot("compression functions")
	disabled := tree.AddBranch("disabled")
	for _, ct := range set.GetDisabledCompressionMethods() {
		disabled.AddNode(ct.String())
	}
	set._lock.Lock()
	defer set._lock.Unlock()
	loaded := tree.AddBranch("loaded")
	for index, pt := range compressPhyTypes {
		if !set._isLoaded[index].Load() {
			continue
		}
		branch := loaded.AddBranch(pt.String())
		for _, fun := range set._functions[index] {
			if fun._codec != nil {
				branch.AddNode(fun._typ.String())
			} else {
				branch.AddNode(fun._typ.String() + " (descriptor)")
			}
		}
	}
	return tree.String()
}
