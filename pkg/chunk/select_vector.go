package chunk

// SelectVector maps logical row positions to physical ones.
// An empty SelectVector is the identity mapping.
type SelectVector struct {
	SelVec []int
}

func NewSelectVector(count int) *SelectVector {
	vec := &SelectVector{}
	vec.Init(count)
	return vec
}

// NewSelectVector2 selects count consecutive rows starting at start.
func NewSelectVector2(start, count int) *SelectVector {
	vec := &SelectVector{}
	vec.Init(max(count, 1))
	for i := 0; i < count; i++ {
		vec.SetIndex(i, start+i)
	}
	return vec
}

func NewSelectVector3(tuples []int) *SelectVector {
	v := &SelectVector{}
	v.Init3(tuples)
	return v
}

func (svec *SelectVector) Invalid() bool {
	return len(svec.SelVec) == 0
}

func (svec *SelectVector) Init(cnt int) {
	svec.SelVec = make([]int, cnt)
}

func (svec *SelectVector) GetIndex(idx int) int {
	if svec.Invalid() {
		return idx
	}
	return svec.SelVec[idx]
}

func (svec *SelectVector) SetIndex(idx int, index int) {
	svec.SelVec[idx] = index
}

// Slice composes svec with sel for the first count rows.
func (svec *SelectVector) Slice(sel *SelectVector, count int) []int {
	data := make([]int, count)
	for i := 0; i < count; i++ {
		data[i] = svec.GetIndex(sel.GetIndex(i))
	}
	return data
}

func (svec *SelectVector) Init2(sel *SelectVector) {
	svec.SelVec = sel.SelVec
}

func (svec *SelectVector) Init3(data []int) {
	svec.SelVec = data
}

// ZeroSelectVector maps every row to row 0.
func ZeroSelectVector(cnt int, sel *SelectVector) *SelectVector {
	sel.Init(max(cnt, 1))
	return sel
}
