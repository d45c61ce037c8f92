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

package util

import (
	"os"

	"github.com/cockroachdb/errors"
)

const (
	DefaultVectorSize = 2048
)

func AlignValue[T ~int | ~uint64 | ~uint32 | ~uint16](value, align T) T {
	return (value + (align - 1)) & ^(align - 1)
}

func AlignValue8(value int) int {
	return AlignValue(value, 8)
}

func AssertFunc(b bool) {
	if !b {
		panic("assertion failed")
	}
}

type Pair[K any, V any] struct {
	First  K
	Second V
}

func FileIsValid(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !stat.IsDir()
}

func ConvertPanicError(v interface{}) error {
	if err, ok := v.(error); ok {
		return err
	}
	return errors.Newf("panic %v", v)
}

func CopyTo[T any](src []T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}

func Empty[T any](data []T) bool {
	return len(data) == 0
}
