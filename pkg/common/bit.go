// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// A bit string is stored as one header byte holding the number of padding
// bits followed by the data bytes. Padding bits occupy the high end of the
// first data byte and are always 1.

// BitLen returns the number of bits in the bit string.
func BitLen(s *String) int {
	data := s.DataSlice()
	if len(data) == 0 {
		return 0
	}
	return (len(data)-1)*8 - int(data[0])
}

// BitBytesFor returns the encoded size of a bit string of n bits.
func BitBytesFor(n int) int {
	return 1 + (n+7)/8
}

// EncodeBits converts a string of '0'/'1' characters into the encoded form.
func EncodeBits(bits string) ([]byte, error) {
	n := len(bits)
	if n == 0 {
		return nil, errors.Newf("cannot create an empty bit string")
	}
	ret := make([]byte, BitBytesFor(n))
	padding := (len(ret)-1)*8 - n
	ret[0] = byte(padding)
	for i := 0; i < padding; i++ {
		ret[1] |= 1 << (7 - i)
	}
	for i, c := range []byte(bits) {
		pos := i + padding
		switch c {
		case '1':
			ret[1+pos/8] |= 1 << (7 - pos%8)
		case '0':
		default:
			return nil, errors.Newf("invalid character %q in bit string", c)
		}
	}
	return ret, nil
}

// DecodeBits renders the bit string as '0'/'1' characters.
func DecodeBits(s *String) string {
	data := s.DataSlice()
	n := BitLen(s)
	if n <= 0 {
		return ""
	}
	padding := int(data[0])
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		pos := i + padding
		if data[1+pos/8]&(1<<(7-pos%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

type bitOp func(a, b byte) byte

func bitwise(name string, lhs, rhs, result *String, op bitOp) error {
	if BitLen(lhs) != BitLen(rhs) {
		return errors.Newf("cannot %s bit strings of different sizes", name)
	}
	if result.Len != lhs.Len {
		return errors.AssertionFailedf("bit string result has %d bytes, want %d",
			result.Len, lhs.Len)
	}
	l := lhs.DataSlice()
	r := rhs.DataSlice()
	res := result.DataSlice()
	res[0] = l[0]
	for i := 1; i < len(l); i++ {
		res[i] = op(l[i], r[i])
	}
	finalizeBits(res)
	return nil
}

// finalizeBits sets the padding bits back to 1.
func finalizeBits(data []byte) {
	if len(data) < 2 {
		return
	}
	for i := 0; i < int(data[0]); i++ {
		data[1] |= 1 << (7 - i)
	}
}

// BitwiseAnd writes lhs AND rhs into result. result may alias either input.
func BitwiseAnd(lhs, rhs, result *String) error {
	return bitwise("AND", lhs, rhs, result, func(a, b byte) byte { return a & b })
}

// BitwiseOr writes lhs OR rhs into result. result may alias either input.
func BitwiseOr(lhs, rhs, result *String) error {
	return bitwise("OR", lhs, rhs, result, func(a, b byte) byte { return a | b })
}

// BitwiseXor writes lhs XOR rhs into result. result may alias either input.
func BitwiseXor(lhs, rhs, result *String) error {
	return bitwise("XOR", lhs, rhs, result, func(a, b byte) byte { return a ^ b })
}
