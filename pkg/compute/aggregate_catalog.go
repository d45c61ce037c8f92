package compute

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/olap/pkg/common"
)

// AggrNames lists the aggregates GetAggrFunction resolves.
var AggrNames = []string{"bit_and", "bit_or", "bit_xor", "count", "count_star"}

// GetAggrFunction binds an aggregate by name for one input type.
// typ is ignored by count_star.
func GetAggrFunction(name string, typ common.LType) (*AggrFunction, error) {
	name = strings.ToLower(name)
	switch name {
	case "bit_and", "bit_or", "bit_xor":
		if !bitAggrSupports(typ) {
			return nil, errors.Newf("%s does not support type %s", name, typ)
		}
		switch name {
		case "bit_and":
			return GetBitAndAggr(typ), nil
		case "bit_or":
			return GetBitOrAggr(typ), nil
		default:
			return GetBitXorAggr(typ), nil
		}
	case "count":
		return GetCountAggr(typ), nil
	case "count_star":
		return GetCountStarAggr(), nil
	default:
		return nil, errors.Newf("unknown aggregate function %q", name)
	}
}
