package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/compute"
	"github.com/daviszhen/olap/pkg/util"
)

type bitAggOptions struct {
	Rows   int
	Groups int
	Seed   uint64
}

var bitAggOpts bitAggOptions
var bitAggThreads int

var bitAggInfo = "run bit_and/bit_or/bit_xor/count over generated groups"
var bitAggCmd = &cobra.Command{
	Use:   "bitagg",
	Short: bitAggInfo,
	Long:  bitAggInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := initCommonOptions()
		if err != nil {
			return err
		}
		bitAggOpts.Rows = viper.GetInt("bitagg.rows")
		bitAggOpts.Groups = viper.GetInt("bitagg.groups")
		bitAggOpts.Seed = viper.GetUint64("bitagg.seed")
		return runBitAgg(cmd.Context(), cfg, &bitAggOpts)
	},
}

func initBitAggCmd() {
	RootCmd.AddCommand(bitAggCmd)
	bitAggCmd.Flags().IntVar(&bitAggOpts.Rows, "rows", 100000, "generated row count")
	bitAggCmd.Flags().IntVar(&bitAggOpts.Groups, "groups", 16, "distinct group count")
	bitAggCmd.Flags().Uint64Var(&bitAggOpts.Seed, "seed", 42, "data seed")
	bitAggCmd.Flags().IntVar(&bitAggThreads, "threads", testerCfg.Aggregate.Threads, "worker count")

	viper.BindPFlag("bitagg.rows", bitAggCmd.Flags().Lookup("rows"))
	viper.BindPFlag("bitagg.groups", bitAggCmd.Flags().Lookup("groups"))
	viper.BindPFlag("bitagg.seed", bitAggCmd.Flags().Lookup("seed"))
	viper.BindPFlag("aggregate.threads", bitAggCmd.Flags().Lookup("threads"))
}

// requiredBits is the bit width of groups slots plus the NULL slot.
func requiredBits(groups int) int {
	bits := 0
	for (1 << bits) < groups+1 {
		bits++
	}
	return bits
}

func genBatches(opts *bitAggOptions, vectorSize int) []*compute.AggrBatch {
	keyTyp := common.IntegerType()
	valTyp := common.BigintType()
	state := opts.Seed | 1
	next := func() uint64 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return state
	}
	var batches []*compute.AggrBatch
	for done := 0; done < opts.Rows; done += vectorSize {
		cnt := min(vectorSize, opts.Rows-done)
		groups := &chunk.Chunk{}
		groups.Init([]common.LType{keyTyp}, vectorSize)
		payload := &chunk.Chunk{}
		payload.Init([]common.LType{valTyp}, vectorSize)
		keys := chunk.GetSliceInPhyFormatFlat[int32](groups.Data[0])
		vals := chunk.GetSliceInPhyFormatFlat[int64](payload.Data[0])
		for i := 0; i < cnt; i++ {
			r := next()
			keys[i] = int32(r % uint64(opts.Groups))
			vals[i] = int64(r >> 8)
			if r%97 == 0 {
				chunk.SetNullInPhyFormatFlat(payload.Data[0], uint64(i), true)
			}
		}
		groups.SetCard(cnt)
		payload.SetCard(cnt)
		batches = append(batches, &compute.AggrBatch{Groups: groups, Payload: payload})
	}
	return batches
}

func bitAggDef(alloc util.Allocator, groups int) (*compute.PerfectAggrDef, error) {
	valTyp := common.BigintType()
	var funcs []*compute.AggrFunction
	for _, name := range []string{"bit_and", "bit_or", "bit_xor", "count", "count_star"} {
		fun, err := compute.GetAggrFunction(name, valTyp)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fun)
	}
	aggrs := compute.CreateAggrObjects(funcs)
	return &compute.PerfectAggrDef{
		GroupTypes:   []common.LType{common.IntegerType()},
		PayloadTypes: compute.AggrPayloadTypes(aggrs),
		Aggregates:   aggrs,
		GroupMinima:  []int64{0},
		RequiredBits: []int{requiredBits(groups)},
		Alloc:        alloc,
	}, nil
}

// widenPayload repeats the single value column once per aggregate input.
func widenPayload(batches []*compute.AggrBatch, width int) {
	for _, batch := range batches {
		col := batch.Payload.Data[0]
		batch.Payload.Data = make([]*chunk.Vector, width)
		for i := range batch.Payload.Data {
			batch.Payload.Data[i] = col
		}
	}
}

func runBitAgg(ctx context.Context, cfg *util.Config, opts *bitAggOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	def, err := bitAggDef(util.GAlloc, opts.Groups)
	if err != nil {
		return err
	}
	batches := genBatches(opts, cfg.Aggregate.VectorSize)
	widenPayload(batches, len(def.PayloadTypes))

	start := time.Now()
	ht, err := compute.ParallelPerfectAggregate(ctx, def, batches, cfg.Aggregate.Threads)
	if err != nil {
		return err
	}
	defer ht.Destroy()
	util.Info("bitagg done",
		zap.Int("rows", opts.Rows),
		zap.Int("threads", cfg.Aggregate.Threads),
		zap.Duration("cost", time.Since(start)))

	if cfg.Debug.PrintLayout {
		util.Info("layout\n" + ht.Layout().String())
	}
	result := &chunk.Chunk{}
	result.Init(ht.ResultTypes(), util.DefaultVectorSize)
	groupCols := len(def.GroupTypes)
	grouped := newBitAggTotals()
	pos := 0
	for {
		ht.Scan(&pos, result)
		if result.Card() == 0 {
			break
		}
		grouped.fold(result, groupCols)
		if cfg.Debug.PrintResult {
			result.Print("group")
		}
	}

	// the same aggregates without groups must agree with the folded groups
	ua := compute.NewUngroupedAggregate(def.PayloadTypes, def.Aggregates, util.GAlloc)
	defer ua.Destroy()
	for _, batch := range batches {
		ua.Sink(batch.Payload)
	}
	total := &chunk.Chunk{}
	total.Init(ua.ResultTypes(), 1)
	ua.Finalize(total)
	if cfg.Debug.PrintResult {
		total.Print("total")
	}
	return grouped.check(total, opts.Rows)
}

// bitAggTotals folds per-group bit_and, bit_or, bit_xor, count and
// count_star results into whole-table values.
type bitAggTotals struct {
	and, or, xor int64
	hasBits      bool
	count, star  int64
}

func newBitAggTotals() *bitAggTotals {
	return &bitAggTotals{and: -1}
}

func (tot *bitAggTotals) fold(result *chunk.Chunk, from int) {
	for i := 0; i < result.Card(); i++ {
		andVal := result.Data[from].GetValue(i)
		if !andVal.IsNull {
			tot.hasBits = true
			tot.and &= andVal.I64
			tot.or |= result.Data[from+1].GetValue(i).I64
			tot.xor ^= result.Data[from+2].GetValue(i).I64
		}
		tot.count += result.Data[from+3].GetValue(i).I64
		tot.star += result.Data[from+4].GetValue(i).I64
	}
}

func (tot *bitAggTotals) check(total *chunk.Chunk, rows int) error {
	if tot.star != int64(rows) {
		return errors.Newf("bitagg: count_star %d over groups, want %d", tot.star, rows)
	}
	want := []struct {
		name   string
		isNull bool
		val    int64
	}{
		{"bit_and", !tot.hasBits, tot.and},
		{"bit_or", !tot.hasBits, tot.or},
		{"bit_xor", !tot.hasBits, tot.xor},
		{"count", false, tot.count},
		{"count_star", false, tot.star},
	}
	for i, w := range want {
		got := total.Data[i].GetValue(0)
		if got.IsNull != w.isNull || (!w.isNull && got.I64 != w.val) {
			return errors.Newf("bitagg: ungrouped %s is %s, groups fold to %d (null %v)",
				w.name, got, w.val, w.isNull)
		}
	}
	return nil
}
