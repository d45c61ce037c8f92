package chunk

import (
	"github.com/daviszhen/olap/pkg/util"
)

// UnifiedFormat is a read-only view of any vector as data + selection + mask.
type UnifiedFormat struct {
	Sel      *SelectVector
	Data     []byte
	Mask     *util.Bitmap
	InterSel SelectVector
	PTypSize int
}

func GetSliceInPhyFormatUnifiedFormat[T any](uni *UnifiedFormat) []T {
	return util.ToSlice[T](uni.Data, uni.PTypSize)
}
