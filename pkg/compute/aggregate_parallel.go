package compute

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/olap/pkg/chunk"
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// PerfectAggrDef describes a perfect hash aggregation so every worker
// can build an identical private table.
type PerfectAggrDef struct {
	GroupTypes   []common.LType
	PayloadTypes []common.LType
	Aggregates   []*AggrObject
	GroupMinima  []int64
	RequiredBits []int
	Alloc        util.Allocator
}

func (def *PerfectAggrDef) NewHashTable() *PerfectAggrHashTable {
	return NewPerfectAggrHashTable(
		def.GroupTypes,
		def.PayloadTypes,
		def.Aggregates,
		def.GroupMinima,
		def.RequiredBits,
		def.Alloc,
	)
}

type AggrBatch struct {
	Groups  *chunk.Chunk
	Payload *chunk.Chunk
}

// ParallelPerfectAggregate aggregates batches with threads workers, each
// owning a partial table, then combines the partials into one table.
// Worker i takes batches i, i+threads, ...
// Cancellation is observed between batches. On error every table is
// destroyed and nil is returned.
func ParallelPerfectAggregate(
	ctx context.Context,
	def *PerfectAggrDef,
	batches []*AggrBatch,
	threads int,
) (*PerfectAggrHashTable, error) {
	if threads <= 0 {
		threads = 1
	}
	if threads > len(batches) {
		threads = max(len(batches), 1)
	}

	tables := make([]*PerfectAggrHashTable, threads)
	for i := range tables {
		tables[i] = def.NewHashTable()
	}
	destroyAll := func() {
		for _, table := range tables {
			table.Destroy()
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	for w := 0; w < threads; w++ {
		worker := w
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = util.ConvertPanicError(r)
				}
			}()
			start := time.Now()
			rows := 0
			for i := worker; i < len(batches); i += threads {
				if err = gctx.Err(); err != nil {
					return err
				}
				tables[worker].AddChunk(batches[i].Groups, batches[i].Payload)
				rows += batches[i].Groups.Card()
			}
			util.Debug("partial aggregate done",
				zap.Int("worker", worker),
				zap.Int("rows", rows),
				zap.Duration("cost", time.Since(start)))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		destroyAll()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		destroyAll()
		return nil, err
	}

	ret := tables[0]
	for _, partial := range tables[1:] {
		ret.Combine(partial)
		partial.Destroy()
	}
	return ret, nil
}
