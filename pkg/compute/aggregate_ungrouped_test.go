package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
)

func finalizeUngrouped(ua *UngroupedAggregate) []string {
	result := &chunk.Chunk{}
	result.Init(ua.ResultTypes(), 1)
	ua.Finalize(result)
	return result.Rows()[0]
}

func bitAggrObjects(typ common.LType) []*AggrObject {
	return CreateAggrObjects([]*AggrFunction{
		GetBitAndAggr(typ),
		GetBitOrAggr(typ),
		GetBitXorAggr(typ),
	})
}

func TestSimpleUpdateInputFormats(t *testing.T) {
	typ := common.BigintType()
	a := chunk.IntValue(typ, 0x0F)
	b := chunk.IntValue(typ, 0xF0)
	c := chunk.IntValue(typ, 0x3C)

	dictChild := flatVector(typ, []*chunk.Value{a, b, c})
	tests := []struct {
		name  string
		input *chunk.Vector
		cnt   int
		want  []string
	}{
		{"flat", flatVector(typ, []*chunk.Value{a, chunk.NullValue(typ), b, c}), 4, []string{"0", "255", "195"}},
		{"const", constVector(a), 3, []string{"15", "15", "15"}},
		{"const even", constVector(a), 2, []string{"15", "15", "0"}},
		{"const null", constVector(chunk.NullValue(typ)), 3, []string{"NULL", "NULL", "NULL"}},
		{"dict", chunk.NewDictVector(dictChild, chunk.NewSelectVector3([]int{2, 0, 2, 1})), 4, []string{"0", "255", "255"}},
		{"empty", flatVector(typ, nil), 0, []string{"NULL", "NULL", "NULL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ua := NewUngroupedAggregate(nil, bitAggrObjects(typ), nil)
			defer ua.Destroy()
			payload := &chunk.Chunk{Data: []*chunk.Vector{tt.input, tt.input, tt.input}, Count: tt.cnt}
			ua.Sink(payload)
			assert.Equal(t, tt.want, finalizeUngrouped(ua))
		})
	}
}

func TestUngroupedAggregateMatchesGroups(t *testing.T) {
	alloc := newCountingAlloc()
	def := testPerfectDef(alloc)
	batches := []*AggrBatch{
		testBatch(int32Values(1, 2, 1), int32Values(1, 4, nil)),
		testBatch(int32Values(nil, 2, 2), int32Values(8, 2, nil)),
	}

	whole := NewUngroupedAggregate(def.PayloadTypes, def.Aggregates, alloc)
	left := NewUngroupedAggregate(def.PayloadTypes, def.Aggregates, alloc)
	right := NewUngroupedAggregate(def.PayloadTypes, def.Aggregates, alloc)
	for _, batch := range batches {
		whole.Sink(batch.Payload)
	}
	left.Sink(batches[0].Payload)
	right.Sink(batches[1].Payload)
	left.Combine(right)

	want := []string{"6", "4", "15"}
	assert.Equal(t, want, finalizeUngrouped(whole))
	assert.Equal(t, want, finalizeUngrouped(left))

	for _, ua := range []*UngroupedAggregate{whole, left, right} {
		ua.Destroy()
		ua.Destroy()
	}
	assert.Zero(t, alloc.liveCount())
}

func TestUngroupedAggregateFilter(t *testing.T) {
	typ := common.IntegerType()
	aggrs := []*AggrObject{
		NewAggrObject(GetCountAggr(typ), nil),
		NewAggrObject(GetCountStarAggr(), BoolColumnFilter(1)),
	}
	payloadTypes := []common.LType{typ, common.BooleanType()}
	ua := NewUngroupedAggregate(payloadTypes, aggrs, nil)
	defer ua.Destroy()

	payload := newChunk(payloadTypes,
		int32Values(1, nil, 3, 4, 5),
		boolValues(true, false, true, true, false),
	)
	ua.Sink(payload)
	assert.Equal(t, []string{"4", "3"}, finalizeUngrouped(ua))
	// the caller's payload keeps its nulls
	assert.True(t, payload.Data[0].GetValue(1).IsNull)

	none := newChunk(payloadTypes, int32Values(7), boolValues(false))
	ua.Sink(none)
	assert.Equal(t, []string{"5", "3"}, finalizeUngrouped(ua))
}

func TestUngroupedBitStringMemory(t *testing.T) {
	typ := common.BitType()
	alloc := newCountingAlloc()
	x := testBits(130, 1)
	y := testBits(130, 2)
	z := testBits(130, 3)

	left := NewUngroupedAggregate(nil, bitAggrObjects(typ), alloc)
	right := NewUngroupedAggregate(nil, bitAggrObjects(typ), alloc)
	input := flatVector(typ, []*chunk.Value{chunk.BitValue(x), chunk.BitValue(y)})
	left.Sink(&chunk.Chunk{Data: []*chunk.Vector{input, input, input}, Count: 2})
	input = flatVector(typ, []*chunk.Value{chunk.BitValue(z)})
	right.Sink(&chunk.Chunk{Data: []*chunk.Vector{input, input, input}, Count: 1})
	require.Greater(t, alloc.liveCount(), 0)

	left.Combine(right)
	row := finalizeUngrouped(left)
	assert.Equal(t, xorBits(x, y, z), row[2])

	left.Destroy()
	right.Destroy()
	assert.Zero(t, alloc.liveCount())
}
