package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBits(t *testing.T, bits string) String {
	data, err := EncodeBits(bits)
	require.NoError(t, err)
	return MakeString(data)
}

func TestEncodeBits(t *testing.T) {
	s := mustBits(t, "0101")
	assert.True(t, s.IsInlined())
	assert.Equal(t, 4, BitLen(&s))
	assert.Equal(t, []byte{4, 0xF5}, s.DataSlice())
	assert.Equal(t, "0101", DecodeBits(&s))

	long := "1010101010101010101010101010101010101010101010101010101010101010101010101010101010101010101010101"
	l := mustBits(t, long)
	assert.False(t, l.IsInlined())
	assert.Equal(t, len(long), BitLen(&l))
	assert.Equal(t, long, DecodeBits(&l))

	_, err := EncodeBits("01x")
	assert.Error(t, err)
	_, err = EncodeBits("")
	assert.Error(t, err)
}

func TestBitwise(t *testing.T) {
	a := mustBits(t, "1100")
	b := mustBits(t, "1010")

	res := a
	require.NoError(t, BitwiseAnd(&a, &b, &res))
	assert.Equal(t, "1000", DecodeBits(&res))
	require.NoError(t, BitwiseOr(&a, &b, &res))
	assert.Equal(t, "1110", DecodeBits(&res))
	require.NoError(t, BitwiseXor(&a, &b, &res))
	assert.Equal(t, "0110", DecodeBits(&res))
	// padding stays set after xor
	assert.Equal(t, byte(0xF6), res.DataSlice()[1])

	// in place
	require.NoError(t, BitwiseXor(&a, &a, &a))
	assert.Equal(t, "0000", DecodeBits(&a))

	c := mustBits(t, "10101")
	err := BitwiseAnd(&b, &c, &res)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "different sizes")
}

func TestHugeintBits(t *testing.T) {
	a := HugeintFromInt64(-1)
	b := HugeintFromInt64(6)
	assert.Equal(t, b, a.And(b))
	assert.Equal(t, "-1", a.Or(b).String())
	assert.Equal(t, "-7", a.Xor(b).String())

	u := UHugeint{Lower: 0xF0, Upper: 1}
	v := UHugeint{Lower: 0x0F, Upper: 3}
	assert.Equal(t, UHugeint{Lower: 0, Upper: 1}, u.And(v))
	assert.Equal(t, UHugeint{Lower: 0xFF, Upper: 3}, u.Or(v))
	assert.Equal(t, UHugeint{Lower: 0xFF, Upper: 2}, u.Xor(v))
	assert.Equal(t, "18446744073709551616", UHugeint{Upper: 1}.String())
}

func TestAddInplace(t *testing.T) {
	a := HugeintFromInt64(-1)
	b := HugeintFromInt64(2)
	assert.True(t, AddInplace(&a, &b))
	assert.Equal(t, HugeintFromInt64(1), a)
}
