package compute

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// aggregateOne feeds input into a single state through constant
// addresses and returns the finalized value.
func aggregateOne(t *testing.T, fun *AggrFunction, alloc util.Allocator, input *chunk.Vector, cnt int) *chunk.Value {
	obj := NewAggrObject(fun, nil)
	layout := NewTupleDataLayout(nil, []*AggrObject{obj}, false)
	rows := newTestRows(t, layout, 1)
	state := NewRowOperationsState(alloc)
	payload := &chunk.Chunk{Data: []*chunk.Vector{input}, Count: cnt}

	UpdateStates(state, obj, rows.constAddr(0), payload, 0, cnt)
	result := finalizeRows(state, rows, rows.constAddr(0), 1)
	ret := result.Data[0].GetValue(0)
	DestroyStates(state, layout, rows.addrs, 1)
	return ret
}

// aggregateScatter feeds input row by row into one state through flat
// addresses that all point at it.
func aggregateScatter(t *testing.T, fun *AggrFunction, alloc util.Allocator, input *chunk.Vector, cnt int) *chunk.Value {
	obj := NewAggrObject(fun, nil)
	layout := NewTupleDataLayout(nil, []*AggrObject{obj}, false)
	rows := newTestRows(t, layout, 1)
	state := NewRowOperationsState(alloc)
	payload := &chunk.Chunk{Data: []*chunk.Vector{input}, Count: cnt}

	UpdateStates(state, obj, rows.flatAddr(make([]int, cnt)...), payload, 0, cnt)
	result := finalizeRows(state, rows, rows.flatAddr(0), 1)
	ret := result.Data[0].GetValue(0)
	DestroyStates(state, layout, rows.addrs, 1)
	return ret
}

func constVector(val *chunk.Value) *chunk.Vector {
	vec := chunk.NewConstVector(val.Typ)
	vec.SetValue(0, val)
	return vec
}

func flatVector(typ common.LType, vals []*chunk.Value) *chunk.Vector {
	vec := chunk.NewFlatVector(typ, max(len(vals), 1))
	for i, val := range vals {
		vec.SetValue(i, val)
	}
	return vec
}

func repeatValue(val *chunk.Value, k int) []*chunk.Value {
	ret := make([]*chunk.Value, k)
	for i := range ret {
		ret[i] = val
	}
	return ret
}

// testBits returns a deterministic bit string of n bits.
func testBits(n int, seed int) string {
	sb := strings.Builder{}
	x := uint32(seed*2654435761 + 1)
	for i := 0; i < n; i++ {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		if x&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func xorBits(vals ...string) string {
	ret := []byte(vals[0])
	for _, v := range vals[1:] {
		for i := range ret {
			if ret[i] != v[i] {
				ret[i] = '1'
			} else {
				ret[i] = '0'
			}
		}
	}
	return string(ret)
}

func TestBitXorParity(t *testing.T) {
	x := chunk.IntValue(common.IntegerType(), 0x5A)
	bits := chunk.BitValue(testBits(100, 3))
	zeroBits := strings.Repeat("0", 100)
	for k := 0; k <= 4; k++ {
		fun := GetBitXorAggr(common.IntegerType())
		for _, got := range []*chunk.Value{
			aggregateOne(t, fun, nil, constVector(x), k),
			aggregateScatter(t, fun, nil, flatVector(common.IntegerType(), repeatValue(x, k)), k),
		} {
			switch {
			case k == 0:
				assert.True(t, got.IsNull, "k=%d", k)
			case k%2 == 1:
				assert.Equal(t, int64(0x5A), got.I64, "k=%d", k)
			default:
				assert.Equal(t, int64(0), got.I64, "k=%d", k)
			}
		}

		alloc := newCountingAlloc()
		fun = GetBitXorAggr(common.BitType())
		got := aggregateOne(t, fun, alloc, constVector(bits), k)
		switch {
		case k == 0:
			assert.True(t, got.IsNull)
		case k%2 == 1:
			assert.Equal(t, bits.Str, got.Str)
		default:
			assert.Equal(t, zeroBits, got.Str)
		}
		assert.Zero(t, alloc.liveCount())
	}
}

func TestBitAndOrIdempotent(t *testing.T) {
	x := chunk.IntValue(common.BigintType(), -12345)
	bits := chunk.BitValue(testBits(130, 7))
	for _, k := range []int{1, 2, 5, 100} {
		for _, fun := range []*AggrFunction{GetBitAndAggr(common.BigintType()), GetBitOrAggr(common.BigintType())} {
			got := aggregateOne(t, fun, nil, constVector(x), k)
			assert.Equal(t, int64(-12345), got.I64, "%s k=%d", fun.Name(), k)
			got = aggregateScatter(t, fun, nil, flatVector(common.BigintType(), repeatValue(x, k)), k)
			assert.Equal(t, int64(-12345), got.I64, "%s k=%d", fun.Name(), k)
		}
		for _, fun := range []*AggrFunction{GetBitAndAggr(common.BitType()), GetBitOrAggr(common.BitType())} {
			alloc := newCountingAlloc()
			got := aggregateOne(t, fun, alloc, constVector(bits), k)
			assert.Equal(t, bits.Str, got.Str)
			got = aggregateScatter(t, fun, alloc, flatVector(common.BitType(), repeatValue(bits, k)), k)
			assert.Equal(t, bits.Str, got.Str)
			assert.Equal(t, 2, alloc.allocs)
			assert.Zero(t, alloc.liveCount())
		}
	}
}

func TestBitAggrNullIdentity(t *testing.T) {
	typ := common.IntegerType()
	input := func() *chunk.Vector {
		return flatVector(typ, int32Values(nil, 3, nil, 6))
	}
	assert.Equal(t, int64(7), aggregateOne(t, GetBitOrAggr(typ), nil, input(), 4).I64)
	assert.Equal(t, int64(2), aggregateOne(t, GetBitAndAggr(typ), nil, input(), 4).I64)
	assert.Equal(t, int64(5), aggregateOne(t, GetBitXorAggr(typ), nil, input(), 4).I64)

	allNull := flatVector(typ, int32Values(nil, nil, nil))
	assert.True(t, aggregateOne(t, GetBitAndAggr(typ), nil, allNull, 3).IsNull)
	assert.True(t, aggregateOne(t, GetBitOrAggr(typ), nil, constVector(chunk.NullValue(typ)), 5).IsNull)
	assert.True(t, aggregateScatter(t, GetBitXorAggr(typ), nil, allNull, 3).IsNull)

	bitNull := flatVector(common.BitType(), []*chunk.Value{
		chunk.NullValue(common.BitType()), chunk.BitValue("0110"), chunk.NullValue(common.BitType()),
	})
	assert.Equal(t, "0110", aggregateOne(t, GetBitAndAggr(common.BitType()), nil, bitNull, 3).Str)
}

func TestBitAggrWideTypes(t *testing.T) {
	huge := func(v int64) *chunk.Value {
		return &chunk.Value{Typ: common.HugeintType(), Hugeint: common.HugeintFromInt64(v)}
	}
	input := flatVector(common.HugeintType(), []*chunk.Value{huge(-1), huge(0x0F), huge(0x3C)})
	got := aggregateOne(t, GetBitAndAggr(common.HugeintType()), nil, input, 3)
	assert.Equal(t, common.HugeintFromInt64(0x0C), got.Hugeint)
	got = aggregateOne(t, GetBitXorAggr(common.HugeintType()), nil, input, 3)
	assert.Equal(t, common.HugeintFromInt64(-1).Xor(common.HugeintFromInt64(0x33)), got.Hugeint)

	uhuge := &chunk.Value{Typ: common.UHugeintType(), UHugeint: common.UHugeint{Lower: 1, Upper: 1 << 63}}
	got = aggregateOne(t, GetBitOrAggr(common.UHugeintType()), nil, constVector(uhuge), 9)
	assert.Equal(t, uhuge.UHugeint, got.UHugeint)

	small := flatVector(common.UTinyintType(), []*chunk.Value{
		chunk.UintValue(common.UTinyintType(), 0xF0),
		chunk.UintValue(common.UTinyintType(), 0x3C),
	})
	assert.Equal(t, uint64(0xFC), aggregateOne(t, GetBitOrAggr(common.UTinyintType()), nil, small, 2).U64)
}

func TestBitAggrCombineSplit(t *testing.T) {
	typ := common.UBigintType()
	var vals []*chunk.Value
	for i := 0; i < 10; i++ {
		vals = append(vals, chunk.UintValue(typ, uint64(i)*0x9E3779B97F4A7C15|0x100))
	}
	funcs := []*AggrFunction{GetBitAndAggr(typ), GetBitOrAggr(typ), GetBitXorAggr(typ)}
	for _, fun := range funcs {
		whole := aggregateScatter(t, fun, nil, flatVector(typ, vals), len(vals))
		for split := 0; split <= len(vals); split++ {
			obj := NewAggrObject(fun, nil)
			layout := NewTupleDataLayout(nil, []*AggrObject{obj}, false)
			rows := newTestRows(t, layout, 2)
			state := NewRowOperationsState(nil)
			update := func(row int, part []*chunk.Value) {
				payload := &chunk.Chunk{Data: []*chunk.Vector{flatVector(typ, part)}, Count: len(part)}
				UpdateStates(state, obj, rows.constAddr(row), payload, 0, len(part))
			}
			update(0, vals[:split])
			update(1, vals[split:])
			CombineStates(state, layout, rows.flatAddr(1), rows.flatAddr(0), 1)
			got := finalizeRows(state, rows, rows.flatAddr(0), 1).Data[0].GetValue(0)
			assert.Equal(t, whole.U64, got.U64, "%s split %d", fun.Name(), split)
		}
	}
}

func TestBitStringStateMemory(t *testing.T) {
	fun := GetBitXorAggr(common.BitType())
	require.True(t, fun.HasDestructor())
	obj := NewAggrObject(fun, nil)
	layout := NewTupleDataLayout(nil, []*AggrObject{obj}, false)

	t.Run("zero updates", func(t *testing.T) {
		alloc := newCountingAlloc()
		rows := newTestRows(t, layout, 2)
		DestroyStates(NewRowOperationsState(alloc), layout, rows.addrs, 2)
		assert.Zero(t, alloc.allocs)
		assert.Zero(t, alloc.frees)
	})

	t.Run("update then destroy", func(t *testing.T) {
		alloc := newCountingAlloc()
		state := NewRowOperationsState(alloc)
		rows := newTestRows(t, layout, 1)
		in := []string{testBits(100, 1), testBits(100, 2), testBits(100, 3)}
		payload := &chunk.Chunk{Data: []*chunk.Vector{flatVector(common.BitType(), []*chunk.Value{
			chunk.BitValue(in[0]), chunk.BitValue(in[1]), chunk.BitValue(in[2]),
		})}, Count: 3}
		UpdateStates(state, obj, rows.flatAddr(0, 0, 0), payload, 0, 3)
		assert.Equal(t, 1, alloc.allocs)

		got := finalizeRows(state, rows, rows.flatAddr(0), 1).Data[0].GetValue(0)
		assert.Equal(t, xorBits(in...), got.Str)

		DestroyStates(state, layout, rows.addrs, 1)
		assert.Equal(t, 1, alloc.frees)
		// destroying again is harmless, the state is cleared
		DestroyStates(state, layout, rows.addrs, 1)
		assert.Equal(t, 1, alloc.frees)
		assert.Zero(t, alloc.liveCount())
	})

	t.Run("inline values never allocate", func(t *testing.T) {
		alloc := newCountingAlloc()
		state := NewRowOperationsState(alloc)
		rows := newTestRows(t, layout, 1)
		short := testBits(common.StringInlineLen*8-8, 5)
		payload := &chunk.Chunk{Data: []*chunk.Vector{constVector(chunk.BitValue(short))}, Count: 3}
		UpdateStates(state, obj, rows.constAddr(0), payload, 0, 3)
		got := finalizeRows(state, rows, rows.flatAddr(0), 1).Data[0].GetValue(0)
		assert.Equal(t, short, got.Str)
		DestroyStates(state, layout, rows.addrs, 1)
		assert.Zero(t, alloc.allocs)
	})

	t.Run("destructive combine moves the buffer", func(t *testing.T) {
		alloc := newCountingAlloc()
		state := NewRowOperationsState(alloc)
		rows := newTestRows(t, layout, 3)
		val := testBits(200, 9)
		payload := &chunk.Chunk{Data: []*chunk.Vector{constVector(chunk.BitValue(val))}, Count: 1}
		UpdateStates(state, obj, rows.constAddr(1), payload, 0, 1)
		UpdateStates(state, obj, rows.constAddr(2), payload, 0, 1)
		require.Equal(t, 2, alloc.allocs)

		// row 1 into unset row 0: moved. row 2 into row 0: folded.
		CombineStates(state, layout, rows.flatAddr(1), rows.flatAddr(0), 1)
		assert.Equal(t, 2, alloc.allocs)
		got := finalizeRows(state, rows, rows.flatAddr(0, 1), 2).Data[0]
		assert.Equal(t, val, got.GetValue(0).Str)
		assert.True(t, got.GetValue(1).IsNull)

		CombineStates(state, layout, rows.flatAddr(2), rows.flatAddr(0), 1)
		got = finalizeRows(state, rows, rows.flatAddr(0), 1).Data[0]
		assert.Equal(t, strings.Repeat("0", 200), got.GetValue(0).Str)

		DestroyStates(state, layout, rows.addrs, 3)
		assert.Equal(t, 2, alloc.frees)
		assert.Zero(t, alloc.liveCount())
	})

	t.Run("length mismatch", func(t *testing.T) {
		alloc := newCountingAlloc()
		state := NewRowOperationsState(alloc)
		rows := newTestRows(t, layout, 1)
		payload := &chunk.Chunk{Data: []*chunk.Vector{flatVector(common.BitType(), []*chunk.Value{
			chunk.BitValue(testBits(100, 1)), chunk.BitValue("01"),
		})}, Count: 2}
		assert.Panics(t, func() {
			UpdateStates(state, obj, rows.constAddr(0), payload, 0, 2)
		})
		DestroyStates(state, layout, rows.addrs, 1)
		assert.Zero(t, alloc.liveCount())
	})
}

func TestGetAggrFunction(t *testing.T) {
	for _, name := range AggrNames {
		fun, err := GetAggrFunction(name, common.IntegerType())
		require.NoError(t, err)
		assert.Equal(t, name, fun.Name())
	}
	fun, err := GetAggrFunction("BIT_XOR", common.BitType())
	require.NoError(t, err)
	assert.True(t, fun.HasDestructor())
	assert.Equal(t, common.LTID_BIT, fun.RetType().Id)

	_, err = GetAggrFunction("bit_and", common.VarcharType())
	assert.Error(t, err)
	_, err = GetAggrFunction("median", common.IntegerType())
	assert.Error(t, err)
}
