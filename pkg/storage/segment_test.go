package storage

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/olap/pkg/common"
)

func int32Bytes(vals ...int32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func roundTrip(t *testing.T, cfg *DBConfig, pt common.PhyType, data []byte, width int) *ColumnSegment {
	seg, err := CompressSegment(cfg, pt, data, width)
	require.NoError(t, err)
	got, err := DecompressSegment(cfg, seg)
	require.NoError(t, err)
	assert.Equal(t, len(data), len(got))
	assert.True(t, bytes.Equal(data, got))
	return seg
}

func TestCompressSegmentChoosesSmallest(t *testing.T) {
	cfg, err := NewDBConfig(nil)
	require.NoError(t, err)

	seg := roundTrip(t, cfg, common.INT32, int32Bytes(7, 7, 7, 7), 4)
	assert.Equal(t, CompressTypeConstant, seg.Kind())
	assert.Equal(t, 4, seg.Size())

	var runs []int32
	for i := 0; i < 100; i++ {
		runs = append(runs, int32(i/25))
	}
	seg = roundTrip(t, cfg, common.INT32, int32Bytes(runs...), 4)
	assert.Equal(t, CompressTypeRLE, seg.Kind())
	assert.Equal(t, 4*(4+rleRunSize), seg.Size())

	seg = roundTrip(t, cfg, common.INT32, int32Bytes(1, 2, 3, 4), 4)
	assert.Equal(t, CompressTypeUncompressed, seg.Kind())

	text := []byte(strings.Repeat("olap aggregate ", 200))
	seg = roundTrip(t, cfg, common.VARCHAR, text, 1)
	assert.Equal(t, CompressTypeZSTD, seg.Kind())
	assert.Less(t, seg.Size(), len(text))

	validity := bytes.Repeat([]byte{0xFF}, 512)
	validity[100] = 0x7F
	seg = roundTrip(t, cfg, common.BIT, validity, 1)
	assert.Equal(t, CompressTypeRoaring, seg.Kind())
	assert.Equal(t, 512, seg.Count())
}

func TestCompressSegmentHonorsDisabled(t *testing.T) {
	cfg, err := NewDBConfig(nil)
	require.NoError(t, err)
	text := []byte(strings.Repeat("abc", 500))

	cfg.SetDisabledCompressionMethods([]CompressType{CompressTypeZSTD})
	seg := roundTrip(t, cfg, common.VARCHAR, text, 1)
	assert.Equal(t, CompressTypeUncompressed, seg.Kind())

	cfg.SetDisabledCompressionMethods([]CompressType{CompressTypeUncompressed})
	seg = roundTrip(t, cfg, common.VARCHAR, text, 1)
	assert.Equal(t, CompressTypeZSTD, seg.Kind())

	// segments written before a kind was disabled stay readable
	cfg.SetDisabledCompressionMethods([]CompressType{CompressTypeZSTD, CompressTypeUncompressed})
	_, err = DecompressSegment(cfg, seg)
	assert.NoError(t, err)
	_, err = CompressSegment(cfg, common.VARCHAR, text, 1)
	assert.Error(t, err)
}

func TestCompressSegmentErrors(t *testing.T) {
	cfg, err := NewDBConfig(nil)
	require.NoError(t, err)

	_, err = CompressSegment(cfg, common.INT32, []byte{1, 2, 3}, 4)
	assert.Error(t, err)
	_, err = CompressSegment(cfg, common.INT32, make([]byte, BLOCK_SIZE+4), 4)
	assert.Error(t, err)

	seg := &ColumnSegment{_typ: common.INT32, _kind: CompressTypeZSTD, _width: 4, _count: 1}
	_, err = DecompressSegment(cfg, seg)
	assert.Error(t, err)

	seg = &ColumnSegment{_typ: common.INT32, _kind: CompressTypeBitpacking, _width: 4, _count: 1}
	_, err = DecompressSegment(cfg, seg)
	assert.Error(t, err)

	_, err = rleCodec{}.Decompress([]byte{1, 0, 0, 0, 9, 0, 0, 0}, 4, 2)
	assert.Error(t, err)
}

func TestCompressSegmentConstantDisabled(t *testing.T) {
	cfg, err := NewDBConfig(nil)
	require.NoError(t, err)
	data := int32Bytes(7, 7, 7, 7)

	constSeg := roundTrip(t, cfg, common.INT32, data, 4)
	assert.Equal(t, CompressTypeConstant, constSeg.Kind())

	cfg.SetDisabledCompressionMethods([]CompressType{CompressTypeConstant})
	assert.True(t, cfg.IsCompressionDisabled(CompressTypeConstant))
	seg := roundTrip(t, cfg, common.INT32, data, 4)
	assert.Equal(t, CompressTypeRLE, seg.Kind())
	assert.Equal(t, 4+rleRunSize, seg.Size())

	got, err := DecompressSegment(cfg, constSeg)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
