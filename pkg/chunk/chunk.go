package chunk

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/util"
)

type Chunk struct {
	Data  []*Vector
	Count int
	_Cap  int
}

func (c *Chunk) Init(types []common.LType, cap int) {
	c._Cap = cap
	c.Data = nil
	for _, lType := range types {
		c.Data = append(c.Data, NewFlatVector(lType, c._Cap))
	}
}

func (c *Chunk) Reset() {
	if len(c.Data) == 0 {
		return
	}
	for _, vec := range c.Data {
		vec.Reset()
	}
	c.Count = 0
}

func (c *Chunk) Cap() int {
	return c._Cap
}

func (c *Chunk) SetCap(cap int) {
	c._Cap = cap
}

func (c *Chunk) SetCard(count int) {
	util.AssertFunc(count <= c._Cap)
	c.Count = count
}

func (c *Chunk) Card() int {
	return c.Count
}

func (c *Chunk) ColumnCount() int {
	if c == nil {
		return 0
	}
	return len(c.Data)
}

func (c *Chunk) Types() []common.LType {
	ret := make([]common.LType, 0, len(c.Data))
	for _, vec := range c.Data {
		ret = append(ret, vec.Typ())
	}
	return ret
}

func (c *Chunk) Reference(other *Chunk) {
	util.AssertFunc(other.ColumnCount() <= c.ColumnCount())
	c.SetCap(other.Cap())
	c.SetCard(other.Card())
	for i := 0; i < other.ColumnCount(); i++ {
		c.Data[i].Reference(other.Data[i])
	}
}

// Slice makes c a view of the rows of other selected by sel.
func (c *Chunk) Slice(other *Chunk, sel *SelectVector, count int, colOffset int) {
	util.AssertFunc(other.ColumnCount() <= colOffset+c.ColumnCount())
	c.SetCap(max(c.Cap(), count))
	c.SetCard(count)
	for i := 0; i < other.ColumnCount(); i++ {
		c.Data[i+colOffset].Slice(other.Data[i], sel, count)
	}
}

func (c *Chunk) ToUnifiedFormat() []*UnifiedFormat {
	ret := make([]*UnifiedFormat, c.ColumnCount())
	for i := 0; i < c.ColumnCount(); i++ {
		ret[i] = &UnifiedFormat{}
		c.Data[i].ToUnifiedFormat(c.Card(), ret[i])
	}
	return ret
}

func (c *Chunk) Flatten() {
	for i := 0; i < c.ColumnCount(); i++ {
		c.Data[i].Flatten(c.Card())
	}
}

// Rows renders every cell as text.
func (c *Chunk) Rows() [][]string {
	ret := make([][]string, 0, c.Card())
	for i := 0; i < c.Card(); i++ {
		row := make([]string, c.ColumnCount())
		for j := 0; j < c.ColumnCount(); j++ {
			row[j] = c.Data[j].GetValue(i).String()
		}
		ret = append(ret, row)
	}
	return ret
}

func (c *Chunk) Print(rowPrefix string) {
	for i, row := range c.Rows() {
		fields := make([]zap.Field, 0, len(row)+1)
		fields = append(fields, zap.Int("row", i))
		for j, cell := range row {
			fields = append(fields, zap.String(fmt.Sprint(j), cell))
		}
		util.Info(rowPrefix, fields...)
	}
}
