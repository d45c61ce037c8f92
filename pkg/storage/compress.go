package storage

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/olap/pkg/common"
)

type CompressType int

const (
	CompressTypeAuto CompressType = iota
	CompressTypeUncompressed
	CompressTypeConstant
	CompressTypeRLE
	CompressTypeDictionary
	CompressTypePforDelta
	CompressTypeBitpacking
	CompressTypeFSST
	CompressTypeChimp
	CompressTypePatas
	CompressTypeALP
	CompressTypeALPRD
	CompressTypeZSTD
	CompressTypeRoaring
	CompressTypeEmpty
	CompressTypeDictFSST
	CompressTypeCount
)

var compressTypeNames = [CompressTypeCount]string{
	"auto",
	"uncompressed",
	"constant",
	"rle",
	"dictionary",
	"pfor",
	"bitpacking",
	"fsst",
	"chimp",
	"patas",
	"alp",
	"alprd",
	"zstd",
	"roaring",
	"empty",
	"dict_fsst",
}

func (ct CompressType) String() string {
	if ct < 0 || ct >= CompressTypeCount {
		return "invalid"
	}
	return compressTypeNames[ct]
}

// ParseCompressType accepts the lower or upper case name of a kind.
func ParseCompressType(name string) (CompressType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range compressTypeNames {
		if n == name {
			return CompressType(i), nil
		}
	}
	return CompressTypeAuto, errors.Newf("unrecognized compression method %q", name)
}

func ParseCompressTypes(names []string) ([]CompressType, error) {
	ret := make([]CompressType, 0, len(names))
	for _, name := range names {
		ct, err := ParseCompressType(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, ct)
	}
	return ret, nil
}

const PhyTypeCount = 19

// compressPhyTypes lists the physical types in compression index order.
var compressPhyTypes = [PhyTypeCount]common.PhyType{
	common.BOOL, common.UINT8, common.INT8, common.UINT16, common.INT16,
	common.UINT32, common.INT32, common.UINT64, common.INT64, common.FLOAT,
	common.DOUBLE, common.INTERVAL, common.LIST, common.STRUCT, common.ARRAY,
	common.VARCHAR, common.UINT128, common.INT128, common.BIT,
}

func compressionIndex(pt common.PhyType) int {
	switch pt {
	case common.BOOL:
		return 0
	case common.UINT8:
		return 1
	case common.INT8:
		return 2
	case common.UINT16:
		return 3
	case common.INT16:
		return 4
	case common.UINT32:
		return 5
	case common.INT32:
		return 6
	case common.UINT64:
		return 7
	case common.INT64:
		return 8
	case common.FLOAT:
		return 9
	case common.DOUBLE:
		return 10
	case common.INTERVAL:
		return 11
	case common.LIST:
		return 12
	case common.STRUCT:
		return 13
	case common.ARRAY:
		return 14
	case common.VARCHAR:
		return 15
	case common.UINT128:
		return 16
	case common.INT128:
		return 17
	case common.BIT:
		return 18
	default:
		panic(errors.AssertionFailedf("unsupported physical type %s for compression index", pt))
	}
}

// BlockCodec encodes the raw bytes of a segment of fixed width values.
// Compress returns errCodecNotApplicable when the data does not fit
// the encoding.
type BlockCodec interface {
	Compress(src []byte, width int) ([]byte, error)
	Decompress(src []byte, width int, count int) ([]byte, error)
}

var errCodecNotApplicable = errors.New("codec not applicable")

type CompressFunction struct {
	_typ      CompressType
	_dataType common.PhyType
	//nil for kinds without a block encoding
	_codec BlockCodec
}

func (fun *CompressFunction) Type() CompressType {
	return fun._typ
}

func (fun *CompressFunction) DataType() common.PhyType {
	return fun._dataType
}

func (fun *CompressFunction) Codec() BlockCodec {
	return fun._codec
}

type compressGetFunction func(pt common.PhyType) *CompressFunction
type compressSupportsType func(pt common.PhyType) bool

type compressMethod struct {
	_typ          CompressType
	_getFunction  compressGetFunction
	_supportsType compressSupportsType
}

// internalCompressMethods is in preference order. The AUTO entry ends it.
var internalCompressMethods = []compressMethod{
	{CompressTypeConstant, codecFunction(CompressTypeConstant, constantCodec{}), isFixedNumeric},
	{CompressTypeUncompressed, codecFunction(CompressTypeUncompressed, uncompressedCodec{}), supportsAll},
	{CompressTypeRLE, codecFunction(CompressTypeRLE, rleCodec{}), rleSupports},
	{CompressTypeBitpacking, descriptorFunction(CompressTypeBitpacking), bitpackingSupports},
	{CompressTypeDictionary, descriptorFunction(CompressTypeDictionary), isVarchar},
	{CompressTypeChimp, descriptorFunction(CompressTypeChimp), isFloating},
	{CompressTypePatas, descriptorFunction(CompressTypePatas), isFloating},
	{CompressTypeALP, descriptorFunction(CompressTypeALP), isFloating},
	{CompressTypeALPRD, descriptorFunction(CompressTypeALPRD), isFloating},
	{CompressTypeFSST, descriptorFunction(CompressTypeFSST), isVarchar},
	{CompressTypeZSTD, codecFunction(CompressTypeZSTD, zstdCodec{}), isVarchar},
	{CompressTypeRoaring, codecFunction(CompressTypeRoaring, roaringCodec{}), isValidity},
	{CompressTypeEmpty, descriptorFunction(CompressTypeEmpty), isValidity},
	{CompressTypeDictFSST, descriptorFunction(CompressTypeDictFSST), isVarchar},
	{CompressTypeAuto, nil, nil},
}

func codecFunction(typ CompressType, codec BlockCodec) compressGetFunction {
	return func(pt common.PhyType) *CompressFunction {
		return &CompressFunction{_typ: typ, _dataType: pt, _codec: codec}
	}
}

func descriptorFunction(typ CompressType) compressGetFunction {
	return func(pt common.PhyType) *CompressFunction {
		return &CompressFunction{_typ: typ, _dataType: pt}
	}
}

func supportsAll(common.PhyType) bool {
	return true
}

func isFixedNumeric(pt common.PhyType) bool {
	switch pt {
	case common.BOOL, common.INT8, common.INT16, common.INT32, common.INT64,
		common.UINT8, common.UINT16, common.UINT32, common.UINT64,
		common.INT128, common.UINT128, common.FLOAT, common.DOUBLE, common.BIT:
		return true
	default:
		return false
	}
}

func rleSupports(pt common.PhyType) bool {
	return pt != common.BIT && isFixedNumeric(pt) || pt == common.LIST
}

func bitpackingSupports(pt common.PhyType) bool {
	switch pt {
	case common.FLOAT, common.DOUBLE, common.BIT:
		return false
	}
	return isFixedNumeric(pt) || pt == common.LIST
}

func isFloating(pt common.PhyType) bool {
	return pt == common.FLOAT || pt == common.DOUBLE
}

func isVarchar(pt common.PhyType) bool {
	return pt == common.VARCHAR
}

func isValidity(pt common.PhyType) bool {
	return pt == common.BIT
}

// emitCompressFunction reports whether the writer may choose the kind.
func emitCompressFunction(typ CompressType) bool {
	switch typ {
	case CompressTypeUncompressed,
		CompressTypeRLE,
		CompressTypeBitpacking,
		CompressTypeDictionary,
		CompressTypeChimp,
		CompressTypePatas,
		CompressTypeALP,
		CompressTypeALPRD,
		CompressTypeFSST,
		CompressTypeZSTD,
		CompressTypeRoaring,
		CompressTypeDictFSST:
		return true
	default:
		return false
	}
}
