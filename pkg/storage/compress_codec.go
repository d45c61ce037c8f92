package storage

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

func checkWidth(src []byte, width int) (int, error) {
	if width <= 0 || len(src)%width != 0 {
		return 0, errors.AssertionFailedf("%d bytes is not a multiple of width %d", len(src), width)
	}
	return len(src) / width, nil
}

func checkDecoded(dst []byte, width int, count int) ([]byte, error) {
	if len(dst) != width*count {
		return nil, errors.Newf("corrupt segment: decoded %d bytes, expected %d", len(dst), width*count)
	}
	return dst, nil
}

type uncompressedCodec struct{}

func (uncompressedCodec) Compress(src []byte, width int) ([]byte, error) {
	if _, err := checkWidth(src, width); err != nil {
		return nil, err
	}
	return bytes.Clone(src), nil
}

func (uncompressedCodec) Decompress(src []byte, width int, count int) ([]byte, error) {
	return checkDecoded(bytes.Clone(src), width, count)
}

// constantCodec stores one value for a segment where all values are equal.
type constantCodec struct{}

func (constantCodec) Compress(src []byte, width int) ([]byte, error) {
	count, err := checkWidth(src, width)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errCodecNotApplicable
	}
	first := src[:width]
	for i := 1; i < count; i++ {
		if !bytes.Equal(first, src[i*width:(i+1)*width]) {
			return nil, errCodecNotApplicable
		}
	}
	return bytes.Clone(first), nil
}

func (constantCodec) Decompress(src []byte, width int, count int) ([]byte, error) {
	if len(src) != width {
		return nil, errors.Newf("corrupt constant segment of %d bytes", len(src))
	}
	return bytes.Repeat(src, count), nil
}

// rleCodec writes runs as value bytes followed by a uint32 run length.
type rleCodec struct{}

const rleRunSize = 4

func (rleCodec) Compress(src []byte, width int) ([]byte, error) {
	count, err := checkWidth(src, width)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	var run [rleRunSize]byte
	for i := 0; i < count; {
		val := src[i*width : (i+1)*width]
		j := i + 1
		for ; j < count && bytes.Equal(val, src[j*width:(j+1)*width]); j++ {
		}
		buf.Write(val)
		binary.LittleEndian.PutUint32(run[:], uint32(j-i))
		buf.Write(run[:])
		i = j
	}
	return buf.Bytes(), nil
}

func (rleCodec) Decompress(src []byte, width int, count int) ([]byte, error) {
	entry := width + rleRunSize
	if len(src)%entry != 0 {
		return nil, errors.Newf("corrupt rle segment of %d bytes", len(src))
	}
	dst := make([]byte, 0, width*count)
	for off := 0; off < len(src); off += entry {
		val := src[off : off+width]
		n := int(binary.LittleEndian.Uint32(src[off+width : off+entry]))
		if len(dst)+n*width > width*count {
			return nil, errors.Newf("corrupt rle segment: more than %d values", count)
		}
		for k := 0; k < n; k++ {
			dst = append(dst, val...)
		}
	}
	return checkDecoded(dst, width, count)
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInitErr error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdInitErr = zstd.NewWriter(nil)
		if zstdInitErr != nil {
			return
		}
		zstdDecoder, zstdInitErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdInitErr
}

type zstdCodec struct{}

func (zstdCodec) Compress(src []byte, width int) ([]byte, error) {
	if _, err := checkWidth(src, width); err != nil {
		return nil, err
	}
	enc, _, err := zstdCodecs()
	if err != nil {
		return nil, errors.Wrap(err, "zstd init")
	}
	return enc.EncodeAll(src, nil), nil
}

func (zstdCodec) Decompress(src []byte, width int, count int) ([]byte, error) {
	_, dec, err := zstdCodecs()
	if err != nil {
		return nil, errors.Wrap(err, "zstd init")
	}
	dst, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd decode")
	}
	return checkDecoded(dst, width, count)
}

// roaringCodec encodes a validity mask, bit i of the input is row i.
type roaringCodec struct{}

func (roaringCodec) Compress(src []byte, width int) ([]byte, error) {
	if width != 1 {
		return nil, errCodecNotApplicable
	}
	bm := roaring.New()
	for i, b := range src {
		for pos := 0; pos < 8; pos++ {
			if b&(1<<pos) != 0 {
				bm.Add(uint32(i*8 + pos))
			}
		}
	}
	bm.RunOptimize()
	return bm.MarshalBinary()
}

func (roaringCodec) Decompress(src []byte, width int, count int) ([]byte, error) {
	if width != 1 {
		return nil, errors.AssertionFailedf("roaring width %d", width)
	}
	bm := roaring.New()
	if err := bm.UnmarshalBinary(src); err != nil {
		return nil, errors.Wrap(err, "roaring decode")
	}
	dst := make([]byte, count)
	it := bm.Iterator()
	for it.HasNext() {
		row := it.Next()
		if int(row) >= count*8 {
			return nil, errors.Newf("corrupt roaring segment: row %d out of %d", row, count*8)
		}
		dst[row/8] |= 1 << (row % 8)
	}
	return dst, nil
}
