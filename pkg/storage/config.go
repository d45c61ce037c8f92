package storage

import (
	"github.com/cockroachdb/errors"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

// DBConfig is the storage side of the database configuration.
type DBConfig struct {
	_compressFunctions *CompressionFunctionSet
}

func NewDBConfig(cfg *util.Config) (*DBConfig, error) {
	ret := &DBConfig{
		_compressFunctions: NewCompressionFunctionSet(),
	}
	if cfg == nil {
		return ret, nil
	}
	disabled, err := ParseCompressTypes(cfg.Storage.DisabledCompression)
	if err != nil {
		return nil, errors.Wrap(err, "storage.disabled_compression")
	}
	ret.SetDisabledCompressionMethods(disabled)
	return ret, nil
}

func (cfg *DBConfig) GetCompressionFunctions(pt common.PhyType) []*CompressFunction {
	return cfg._compressFunctions.GetCompressionFunctions(pt)
}

func (cfg *DBConfig) TryGetCompressionFunction(typ CompressType, pt common.PhyType) *CompressFunction {
	_, fun := cfg._compressFunctions.GetCompressionFunction(typ, pt)
	return fun
}

// GetCompressionFunction is for callers that know typ must exist for pt,
// such as reading a persisted segment. A miss is an internal error.
func (cfg *DBConfig) GetCompressionFunction(typ CompressType, pt common.PhyType) (*CompressFunction, error) {
	lr, fun := cfg._compressFunctions.GetCompressionFunction(typ, pt)
	if fun == nil {
		return nil, errors.AssertionFailedf(
			"could not find compression function %s for physical type %s (load result: %s)\n%s",
			typ, pt, lr, errors.Safe(cfg._compressFunctions.GetDebugInfo()))
	}
	return fun, nil
}

func (cfg *DBConfig) SetDisabledCompressionMethods(methods []CompressType) {
	cfg._compressFunctions.SetDisabledCompressionMethods(methods)
}

func (cfg *DBConfig) IsCompressionDisabled(typ CompressType) bool {
	return cfg._compressFunctions.IsDisabled(typ)
}

func (cfg *DBConfig) GetDisabledCompressionMethods() []CompressType {
	return cfg._compressFunctions.GetDisabledCompressionMethods()
}

func (cfg *DBConfig) CompressionFunctions() *CompressionFunctionSet {
	return cfg._compressFunctions
}
