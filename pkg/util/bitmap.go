package util

// Bitmap is the validity mask of a vector.
// An empty Bits means every row is valid.
type Bitmap struct {
	Bits []uint8
}

func (bm *Bitmap) Data() []uint8 {
	return bm.Bits
}

func (bm *Bitmap) Init(count int) {
	cnt := EntryCount(count)
	bm.Bits = make([]uint8, cnt)
	for i := range bm.Bits {
		bm.Bits[i] = 0xFF
	}
}

func (bm *Bitmap) Invalid() bool {
	return len(bm.Bits) == 0
}

func (bm *Bitmap) AllValid() bool {
	return bm.Invalid()
}

func (bm *Bitmap) GetEntry(eIdx uint64) uint8 {
	if bm.Invalid() {
		return 0xFF
	}
	return bm.Bits[eIdx]
}

func GetEntryIndex(idx uint64) (uint64, uint64) {
	return idx / 8, idx % 8
}

func EntryIsSet(e uint8, pos uint64) bool {
	return e&(1<<pos) != 0
}

func RowIsValidInEntry(e uint8, pos uint64) bool {
	return EntryIsSet(e, pos)
}

func NoneValidInEntry(entry uint8) bool {
	return entry == 0
}

func AllValidInEntry(entry uint8) bool {
	return entry == 0xFF
}

func (bm *Bitmap) RowIsValidUnsafe(idx uint64) bool {
	eIdx, pos := GetEntryIndex(idx)
	return EntryIsSet(bm.Bits[eIdx], pos)
}

func (bm *Bitmap) RowIsValid(idx uint64) bool {
	if bm.Invalid() || idx/8 >= uint64(len(bm.Bits)) {
		return true
	}
	return bm.RowIsValidUnsafe(idx)
}

func (bm *Bitmap) Set(ridx uint64, valid bool) {
	if valid {
		bm.SetValid(ridx)
	} else {
		bm.SetInvalid(ridx)
	}
}

// SetValid is a no-op for rows past the end of the mask, they are valid.
func (bm *Bitmap) SetValid(ridx uint64) {
	eIdx, pos := GetEntryIndex(ridx)
	if eIdx >= uint64(len(bm.Bits)) {
		return
	}
	bm.Bits[eIdx] |= 1 << pos
}

// SetInvalid grows the mask to cover ridx. New rows are valid.
func (bm *Bitmap) SetInvalid(ridx uint64) {
	eIdx, pos := GetEntryIndex(ridx)
	if bm.Invalid() {
		bm.Init(max(DefaultVectorSize, int(ridx)+1))
	} else if eIdx >= uint64(len(bm.Bits)) {
		old := bm.Bits
		bm.Init(max(2*len(old)*8, int(ridx)+1))
		copy(bm.Bits, old)
	}
	bm.Bits[eIdx] &= ^(1 << pos)
}

func (bm *Bitmap) Reset() {
	bm.Bits = nil
}

// CountValid counts the valid rows among the first count rows.
func (bm *Bitmap) CountValid(count int) int {
	if bm.Invalid() {
		return count
	}
	ret := 0
	for i := 0; i < count; i++ {
		if bm.RowIsValidUnsafe(uint64(i)) {
			ret++
		}
	}
	return ret
}

func (bm *Bitmap) CopyFrom(other *Bitmap, count int) {
	if other.AllValid() {
		bm.Bits = nil
		return
	}
	eCnt := EntryCount(count)
	bm.Bits = make([]uint8, eCnt)
	copy(bm.Bits, other.Bits[:eCnt])
}

func EntryCount(cnt int) int {
	return (cnt + 7) / 8
}
