package chunk

import (
	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

type VecBufferType int

const (
	VBT_STANDARD VecBufferType = iota
	VBT_DICT
	VBT_CHILD
	VBT_STRING
)

type VecBuffer struct {
	BufTyp VecBufferType
	Data   []byte
	Sel    *SelectVector
	Child  *Vector
	// heap keeps non-inlined string bytes alive for the vector
	heap [][]byte
}

func (buf *VecBuffer) GetSelVector() *SelectVector {
	util.AssertFunc(buf.BufTyp == VBT_DICT)
	return buf.Sel
}

func NewBuffer(sz int) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_STANDARD,
		Data:   make([]byte, sz),
	}
}

func NewStandardBuffer(lt common.LType, cap int) *VecBuffer {
	return NewBuffer(lt.GetInternalType().Size() * cap)
}

func NewDictBuffer(data []int) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_DICT,
		Sel: &SelectVector{
			SelVec: data,
		},
	}
}

func NewDictBuffer2(sel *SelectVector) *VecBuffer {
	buf := &VecBuffer{
		BufTyp: VBT_DICT,
		Sel:    &SelectVector{},
	}
	buf.Sel.Init2(sel)
	return buf
}

func NewChildBuffer(child *Vector) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_CHILD,
		Child:  child,
	}
}

func NewStringBuffer() *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_STRING,
	}
}

// AddString copies data into the heap and returns a String over the copy.
func (buf *VecBuffer) AddString(data []byte) common.String {
	if len(data) <= common.StringInlineLen {
		return common.MakeInlineString(data)
	}
	dst := make([]byte, len(data))
	copy(dst, data)
	buf.heap = append(buf.heap, dst)
	return common.MakeString(dst)
}
