package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/olap/pkg/common"
)

func newInt32FlatVector(vals []int32, nulls ...int) *Vector {
	vec := NewFlatVector(common.IntegerType(), len(vals))
	copy(GetSliceInPhyFormatFlat[int32](vec), vals)
	for _, n := range nulls {
		SetNullInPhyFormatFlat(vec, uint64(n), true)
	}
	return vec
}

func TestConstVectorFlatten(t *testing.T) {
	vec := NewConstVector(common.BigintType())
	GetSliceInPhyFormatConst[int64](vec)[0] = 42
	vec.Flatten(5)
	require.True(t, vec.PhyFormat().IsFlat())
	data := GetSliceInPhyFormatFlat[int64](vec)
	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(42), data[i])
	}

	null := NewConstVector(common.BigintType())
	SetNullInPhyFormatConst(null, true)
	assert.True(t, HasNull(null, 3))
	null.Flatten(3)
	for i := 0; i < 3; i++ {
		assert.True(t, null.GetValue(i).IsNull)
	}
}

func TestDictVectorUnifiedFormat(t *testing.T) {
	child := newInt32FlatVector([]int32{10, 20, 30, 40}, 2)
	dict := NewDictVector(child, NewSelectVector3([]int{3, 2, 0}))
	assert.True(t, dict.PhyFormat().IsDict())

	var uni UnifiedFormat
	dict.ToUnifiedFormat(3, &uni)
	data := GetSliceInPhyFormatUnifiedFormat[int32](&uni)
	assert.Equal(t, int32(40), data[uni.Sel.GetIndex(0)])
	assert.False(t, uni.Mask.RowIsValid(uint64(uni.Sel.GetIndex(1))))
	assert.Equal(t, int32(10), data[uni.Sel.GetIndex(2)])
	assert.True(t, HasNull(dict, 3))

	// dictionary over dictionary
	outer := NewDictVector(dict, NewSelectVector3([]int{2, 0}))
	assert.Equal(t, int64(10), outer.GetValue(0).I64)
	assert.Equal(t, int64(40), outer.GetValue(1).I64)
	outer.ToUnifiedFormat(2, &uni)
	data = GetSliceInPhyFormatUnifiedFormat[int32](&uni)
	assert.Equal(t, int32(10), data[uni.Sel.GetIndex(0)])

	dict.Flatten(3)
	assert.True(t, dict.PhyFormat().IsFlat())
	assert.Equal(t, int64(40), dict.GetValue(0).I64)
	assert.True(t, dict.GetValue(1).IsNull)
	// child untouched
	assert.Equal(t, int64(10), child.GetValue(0).I64)
}

func TestStringVector(t *testing.T) {
	vec := NewFlatVector(common.VarcharType(), 3)
	vec.SetValue(0, &Value{Typ: common.VarcharType(), Str: "short"})
	vec.SetValue(1, &Value{Typ: common.VarcharType(), Str: "a string longer than twelve bytes"})
	vec.SetValue(2, NullValue(common.VarcharType()))

	strs := GetSliceInPhyFormatFlat[common.String](vec)
	assert.True(t, strs[0].IsInlined())
	assert.False(t, strs[1].IsInlined())
	assert.Equal(t, "a string longer than twelve bytes", vec.GetValue(1).Str)
	assert.True(t, vec.GetValue(2).IsNull)

	dict := NewDictVector(vec, NewSelectVector3([]int{1, 1}))
	dict.Flatten(2)
	assert.Equal(t, "a string longer than twelve bytes", dict.GetValue(1).Str)

	bits := NewFlatVector(common.BitType(), 1)
	bits.SetValue(0, BitValue("10110"))
	assert.Equal(t, "10110", bits.GetValue(0).Str)
}

func TestChunkSlice(t *testing.T) {
	c := &Chunk{}
	c.Init([]common.LType{common.IntegerType(), common.UBigintType()}, 4)
	for i := 0; i < 4; i++ {
		c.Data[0].SetValue(i, IntValue(common.IntegerType(), int64(i)))
		c.Data[1].SetValue(i, UintValue(common.UBigintType(), uint64(i*10)))
	}
	c.SetCard(4)

	sliced := &Chunk{}
	sliced.Init(c.Types(), 4)
	sliced.Slice(c, NewSelectVector3([]int{1, 3}), 2, 0)
	assert.Equal(t, 2, sliced.Card())
	assert.Equal(t, [][]string{{"1", "10"}, {"3", "30"}}, sliced.Rows())

	sliced.Flatten()
	assert.True(t, sliced.Data[0].PhyFormat().IsFlat())
	assert.Equal(t, [][]string{{"1", "10"}, {"3", "30"}}, sliced.Rows())
}
