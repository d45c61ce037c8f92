package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/olap/pkg/common"
)

func TestTupleLayoutOffsets(t *testing.T) {
	aggrs := CreateAggrObjects([]*AggrFunction{fakeAggr("a", 3), fakeAggr("b", 5), fakeAggr("c", 16)})

	layout := NewTupleDataLayout(nil, aggrs, false)
	assert.Equal(t, 0, layout.aggrOffset())
	assert.Equal(t, []int{0, 3, 8}, layout.offsets())
	assert.Equal(t, 24, layout.rowWidth())

	keys := []common.LType{common.IntegerType(), common.BigintType()}
	layout = NewTupleDataLayout(keys, aggrs, false)
	assert.Equal(t, 1, layout.dataOffset())
	assert.Equal(t, 13, layout.aggrOffset())
	assert.Equal(t, []int{1, 5, 13, 16, 21}, layout.offsets())
	assert.Equal(t, 37, layout.rowWidth())
	assert.True(t, layout.allConst())
	assert.True(t, layout.hasDestructor())

	layout = NewTupleDataLayout(keys, aggrs, true)
	assert.Equal(t, []int{8, 16, 24, 32, 40}, layout.offsets())
	assert.Equal(t, 56, layout.rowWidth())

	// offsets are the running sum of payload sizes
	layout = NewTupleDataLayout(keys, aggrs, false)
	offsets := layout.offsets()
	for i, aggr := range layout.Aggregates() {
		next := layout.rowWidth()
		if i+1 < len(aggrs) {
			next = offsets[layout.aggrIdx()+i+1]
		}
		assert.Equal(t, aggr.PayloadSize(), next-offsets[layout.aggrIdx()+i])
	}
	assert.Contains(t, layout.String(), "aggregates @13")
}

func TestTupleLayoutRequiresCombine(t *testing.T) {
	fun := fakeAggr("nocombine", 8)
	fun._combine = nil
	assert.Panics(t, func() {
		NewTupleDataLayout(nil, CreateAggrObjects([]*AggrFunction{fun}), false)
	})

	layout := NewTupleDataLayout(nil, CreateAggrObjects([]*AggrFunction{GetCountStarAggr()}), false)
	require.False(t, layout.hasDestructor())
	assert.Equal(t, 8, layout.RowWidth())
}

func TestTupleLayoutRunningSum(t *testing.T) {
	aggrs := CreateAggrObjects([]*AggrFunction{fakeAggr("d0", 4), fakeAggr("d1", 8), fakeAggr("d2", 1)})
	keys := []common.LType{common.SmallintType()}
	layout := NewTupleDataLayout(keys, aggrs, false)
	base := layout.aggrOffset()
	assert.Equal(t, []int{1, base, base + 4, base + 12}, layout.offsets())
	assert.Equal(t, base+13, layout.rowWidth())
}
