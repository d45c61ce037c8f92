package common

import (
	"math"
	"math/big"
)

type Hugeint struct {
	Lower uint64
	Upper int64
}

func HugeintFromInt64(v int64) Hugeint {
	ret := Hugeint{Lower: uint64(v)}
	if v < 0 {
		ret.Upper = -1
	}
	return ret
}

func (h Hugeint) Big() *big.Int {
	ret := new(big.Int).SetInt64(h.Upper)
	ret.Lsh(ret, 64)
	return ret.Or(ret, new(big.Int).SetUint64(h.Lower))
}

func (h Hugeint) String() string {
	return h.Big().String()
}

func (h *Hugeint) Equal(o *Hugeint) bool {
	return h.Lower == o.Lower && h.Upper == o.Upper
}

func (h Hugeint) And(o Hugeint) Hugeint {
	return Hugeint{Lower: h.Lower & o.Lower, Upper: h.Upper & o.Upper}
}

func (h Hugeint) Or(o Hugeint) Hugeint {
	return Hugeint{Lower: h.Lower | o.Lower, Upper: h.Upper | o.Upper}
}

func (h Hugeint) Xor(o Hugeint) Hugeint {
	return Hugeint{Lower: h.Lower ^ o.Lower, Upper: h.Upper ^ o.Upper}
}

// AddInplace returns false on overflow.
func AddInplace(lhs, rhs *Hugeint) bool {
	ladd := lhs.Lower + rhs.Lower
	overflow := int64(0)
	if ladd < lhs.Lower {
		overflow = 1
	}
	if rhs.Upper >= 0 {
		if lhs.Upper > (math.MaxInt64 - rhs.Upper - overflow) {
			return false
		}
		lhs.Upper = lhs.Upper + overflow + rhs.Upper
	} else {
		if lhs.Upper < (math.MinInt64 - rhs.Upper - overflow) {
			return false
		}
		lhs.Upper = lhs.Upper + (overflow + rhs.Upper)
	}
	lhs.Lower = ladd
	if lhs.Upper == math.MinInt64 && lhs.Lower == 0 {
		return false
	}
	return true
}

// UHugeint is the unsigned 128 bit integer.
type UHugeint struct {
	Lower uint64
	Upper uint64
}

func UHugeintFromUint64(v uint64) UHugeint {
	return UHugeint{Lower: v}
}

func (h UHugeint) Big() *big.Int {
	ret := new(big.Int).SetUint64(h.Upper)
	ret.Lsh(ret, 64)
	return ret.Or(ret, new(big.Int).SetUint64(h.Lower))
}

func (h UHugeint) String() string {
	return h.Big().String()
}

func (h UHugeint) And(o UHugeint) UHugeint {
	return UHugeint{Lower: h.Lower & o.Lower, Upper: h.Upper & o.Upper}
}

func (h UHugeint) Or(o UHugeint) UHugeint {
	return UHugeint{Lower: h.Lower | o.Lower, Upper: h.Upper | o.Upper}
}

func (h UHugeint) Xor(o UHugeint) UHugeint {
	return UHugeint{Lower: h.Lower ^ o.Lower, Upper: h.Upper ^ o.Upper}
}
