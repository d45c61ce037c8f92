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

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// BitState is the accumulator of bit_and/bit_or/bit_xor.
// isSet is false until the first non-null input.
type BitState[T any] struct {
	isSet bool
	value T
}

type integral interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64
}

type wideInt[T any] interface {
	And(T) T
	Or(T) T
	Xor(T) T
}

// BitExec folds input into the accumulated value in place.
type BitExec[T any] interface {
	Execute(value *T, input *T)
}

type IntAnd[T integral] struct{}

func (IntAnd[T]) Execute(value *T, input *T) { *value &= *input }

type IntOr[T integral] struct{}

func (IntOr[T]) Execute(value *T, input *T) { *value |= *input }

type IntXor[T integral] struct{}

func (IntXor[T]) Execute(value *T, input *T) { *value ^= *input }

type WideAnd[T wideInt[T]] struct{}

func (WideAnd[T]) Execute(value *T, input *T) { *value = (*value).And(*input) }

type WideOr[T wideInt[T]] struct{}

func (WideOr[T]) Execute(value *T, input *T) { *value = (*value).Or(*input) }

type WideXor[T wideInt[T]] struct{}

func (WideXor[T]) Execute(value *T, input *T) { *value = (*value).Xor(*input) }

// BitwiseOp is bit_and/bit_or over fixed width values.
type BitwiseOp[T any, E BitExec[T]] struct {
	exec E
}

func (op BitwiseOp[T, E]) Init(s *BitState[T]) {
	*s = BitState[T]{}
}

func (op BitwiseOp[T, E]) Operation(s *BitState[T], input *T, _ *AggrUnaryInput) {
	if !s.isSet {
		s.value = *input
		s.isSet = true
	} else {
		op.exec.Execute(&s.value, input)
	}
}

// ConstantOperation runs once. x&x == x and x|x == x.
func (op BitwiseOp[T, E]) ConstantOperation(s *BitState[T], input *T, data *AggrUnaryInput, count int) {
	op.Operation(s, input, data)
}

func (op BitwiseOp[T, E]) Combine(src *BitState[T], tgt *BitState[T], _ *AggrInputData) {
	if !src.isSet {
		return
	}
	if !tgt.isSet {
		tgt.value = src.value
		tgt.isSet = true
	} else {
		op.exec.Execute(&tgt.value, &src.value)
	}
}

func (op BitwiseOp[T, E]) Finalize(s *BitState[T], target *T, data *AggrFinalizeData) {
	if !s.isSet {
		data.ReturnNull()
	} else {
		*target = s.value
	}
}

func (op BitwiseOp[T, E]) IgnoreNull() bool {
	return true
}

// BitXorOp folds a constant count times since x^x == 0.
type BitXorOp[T any, E BitExec[T]] struct {
	BitwiseOp[T, E]
}

func (op BitXorOp[T, E]) ConstantOperation(s *BitState[T], input *T, data *AggrUnaryInput, count int) {
	for i := 0; i < count; i++ {
		op.Operation(s, input, data)
	}
}

type bitStringFunc func(lhs, rhs, result *common.String) error

// BitStringOp is the bit string flavor. Non-inlined values are copied
// into memory from the allocator and released by Destroy.
type BitStringOp struct {
	fold bitStringFunc
	// xor must fold constants count times
	xor bool
}

func (op BitStringOp) Init(s *BitState[common.String]) {
	*s = BitState[common.String]{}
}

func (op BitStringOp) assign(s *BitState[common.String], input *common.String, data *AggrInputData) {
	util.AssertFunc(!s.isSet)
	if input.IsInlined() {
		s.value = *input
	} else {
		n := input.Length()
		ptr := data._alloc.Alloc(n)
		util.PointerCopy(ptr, input.Data, n)
		s.value = common.String{Len: uint32(n), Data: ptr}
	}
	s.isSet = true
}

func (op BitStringOp) execute(value *common.String, input *common.String) {
	if err := op.fold(input, value, value); err != nil {
		panic(err)
	}
}

func (op BitStringOp) Operation(s *BitState[common.String], input *common.String, data *AggrUnaryInput) {
	if !s.isSet {
		op.assign(s, input, data._input)
	} else {
		op.execute(&s.value, input)
	}
}

func (op BitStringOp) ConstantOperation(s *BitState[common.String], input *common.String, data *AggrUnaryInput, count int) {
	if !op.xor {
		op.Operation(s, input, data)
		return
	}
	for i := 0; i < count; i++ {
		op.Operation(s, input, data)
	}
}

func (op BitStringOp) Combine(src *BitState[common.String], tgt *BitState[common.String], data *AggrInputData) {
	if !src.isSet {
		return
	}
	if tgt.isSet {
		op.execute(&tgt.value, &src.value)
		return
	}
	if data._combineType == AggrCombineAllowDestructive && !src.value.IsInlined() {
		// steal the buffer, the source is dead after combine
		tgt.value = src.value
		tgt.isSet = true
		*src = BitState[common.String]{}
		return
	}
	op.assign(tgt, &src.value, data)
}

func (op BitStringOp) Finalize(s *BitState[common.String], target *common.String, data *AggrFinalizeData) {
	if !s.isSet {
		data.ReturnNull()
	} else {
		*target = data._result.AddString(s.value.DataSlice())
	}
}

func (op BitStringOp) IgnoreNull() bool {
	return true
}

func (op BitStringOp) Destroy(s *BitState[common.String], data *AggrInputData) {
	if s.isSet && !s.value.IsInlined() {
		data._alloc.Free(s.value.Data)
	}
	*s = BitState[common.String]{}
}

type bitAggrKind int

const (
	bitAnd bitAggrKind = iota
	bitOr
	bitXor
)

var bitAggrNames = []string{"bit_and", "bit_or", "bit_xor"}

func intBitAggr[T integral](kind bitAggrKind, typ common.LType) *AggrFunction {
	switch kind {
	case bitAnd:
		return UnaryAggregate[BitState[T], T, T, BitwiseOp[T, IntAnd[T]]](
			typ, typ, DefaultNullHandling, BitwiseOp[T, IntAnd[T]]{})
	case bitOr:
		return UnaryAggregate[BitState[T], T, T, BitwiseOp[T, IntOr[T]]](
			typ, typ, DefaultNullHandling, BitwiseOp[T, IntOr[T]]{})
	default:
		return UnaryAggregate[BitState[T], T, T, BitXorOp[T, IntXor[T]]](
			typ, typ, DefaultNullHandling, BitXorOp[T, IntXor[T]]{})
	}
}

func wideBitAggr[T wideInt[T]](kind bitAggrKind, typ common.LType) *AggrFunction {
	switch kind {
	case bitAnd:
		return UnaryAggregate[BitState[T], T, T, BitwiseOp[T, WideAnd[T]]](
			typ, typ, DefaultNullHandling, BitwiseOp[T, WideAnd[T]]{})
	case bitOr:
		return UnaryAggregate[BitState[T], T, T, BitwiseOp[T, WideOr[T]]](
			typ, typ, DefaultNullHandling, BitwiseOp[T, WideOr[T]]{})
	default:
		return UnaryAggregate[BitState[T], T, T, BitXorOp[T, WideXor[T]]](
			typ, typ, DefaultNullHandling, BitXorOp[T, WideXor[T]]{})
	}
}

func bitStringAggr(kind bitAggrKind) *AggrFunction {
	op := BitStringOp{}
	switch kind {
	case bitAnd:
		op.fold = common.BitwiseAnd
	case bitOr:
		op.fold = common.BitwiseOr
	default:
		op.fold = common.BitwiseXor
		op.xor = true
	}
	typ := common.BitType()
	return UnaryAggregateDestructor[BitState[common.String], common.String, common.String, BitStringOp](
		typ, typ, DefaultNullHandling, op)
}

func bitAggrSupports(typ common.LType) bool {
	if typ.Id == common.LTID_BIT {
		return true
	}
	for _, it := range common.Integral() {
		if it.Id == typ.Id {
			return true
		}
	}
	return false
}

func getBitAggr(kind bitAggrKind, typ common.LType) *AggrFunction {
	var ret *AggrFunction
	switch typ.Id {
	case common.LTID_TINYINT:
		ret = intBitAggr[int8](kind, typ)
	case common.LTID_SMALLINT:
		ret = intBitAggr[int16](kind, typ)
	case common.LTID_INTEGER:
		ret = intBitAggr[int32](kind, typ)
	case common.LTID_BIGINT:
		ret = intBitAggr[int64](kind, typ)
	case common.LTID_HUGEINT:
		ret = wideBitAggr[common.Hugeint](kind, typ)
	case common.LTID_UTINYINT:
		ret = intBitAggr[uint8](kind, typ)
	case common.LTID_USMALLINT:
		ret = intBitAggr[uint16](kind, typ)
	case common.LTID_UINTEGER:
		ret = intBitAggr[uint32](kind, typ)
	case common.LTID_UBIGINT:
		ret = intBitAggr[uint64](kind, typ)
	case common.LTID_UHUGEINT:
		ret = wideBitAggr[common.UHugeint](kind, typ)
	case common.LTID_BIT:
		ret = bitStringAggr(kind)
	default:
		panic(fmt.Sprintf("usp %s for %s", bitAggrNames[kind], typ))
	}
	ret._name = bitAggrNames[kind]
	return ret
}

func GetBitAndAggr(typ common.LType) *AggrFunction {
	return getBitAggr(bitAnd, typ)
}

func GetBitOrAggr(typ common.LType) *AggrFunction {
	return getBitAggr(bitOr, typ)
}

func GetBitXorAggr(typ common.LType) *AggrFunction {
	return getBitAggr(bitXor, typ)
}
