package storage

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// ColumnSegment is one encoded run of a column. It records the kind it
// was written with so it can be decoded later.
type ColumnSegment struct {
	_typ   common.PhyType
	_kind  CompressType
	_width int
	_count int
	_data  []byte
}

func (seg *ColumnSegment) Type() common.PhyType {
	return seg._typ
}

func (seg *ColumnSegment) Kind() CompressType {
	return seg._kind
}

func (seg *ColumnSegment) Count() int {
	return seg._count
}

func (seg *ColumnSegment) Size() int {
	return len(seg._data)
}

// CompressSegment encodes data, count values of width bytes each.
// A constant segment is stored as CONSTANT unless CONSTANT is disabled.
// Otherwise every enabled function with a block encoding is tried and
// the smallest output wins, ties going to the earlier function.
func CompressSegment(cfg *DBConfig, pt common.PhyType, data []byte, width int) (*ColumnSegment, error) {
	if width <= 0 || len(data)%width != 0 {
		return nil, errors.Newf("segment of %d bytes does not hold values of width %d", len(data), width)
	}
	if uint64(len(data)) > BLOCK_SIZE {
		return nil, errors.Newf("segment of %d bytes exceeds block size %d", len(data), BLOCK_SIZE)
	}
	seg := &ColumnSegment{
		_typ:   pt,
		_width: width,
		_count: len(data) / width,
	}

	fun := cfg.TryGetCompressionFunction(CompressTypeConstant, pt)
	if fun != nil && !cfg.IsCompressionDisabled(CompressTypeConstant) {
		out, err := fun._codec.Compress(data, width)
		if err == nil {
			seg._kind = CompressTypeConstant
			seg._data = out
			return seg, nil
		}
		if !errors.Is(err, errCodecNotApplicable) {
			return nil, err
		}
	}

	var best *CompressFunction
	for _, fun := range cfg.GetCompressionFunctions(pt) {
		if fun._codec == nil {
			continue
		}
		out, err := fun._codec.Compress(data, width)
		if errors.Is(err, errCodecNotApplicable) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "compress %s", fun._typ)
		}
		if best == nil || len(out) < len(seg._data) {
			best = fun
			seg._data = out
		}
	}
	if best == nil {
		return nil, errors.Newf("no enabled compression method for physical type %s", pt)
	}
	seg._kind = best._typ
	util.Debug("compress segment",
		zap.String("phyType", pt.String()),
		zap.String("kind", best._typ.String()),
		zap.Int("raw", len(data)),
		zap.Int("compressed", len(seg._data)))
	return seg, nil
}

func DecompressSegment(cfg *DBConfig, seg *ColumnSegment) ([]byte, error) {
	fun, err := cfg.GetCompressionFunction(seg._kind, seg._typ)
	if err != nil {
		return nil, err
	}
	if fun._codec == nil {
		return nil, errors.AssertionFailedf("compression function %s has no block encoding", seg._kind)
	}
	return fun._codec.Decompress(seg._data, seg._width, seg._count)
}
