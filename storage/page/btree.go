package page

import "encoding/binary"

// SpecialSize is the fixed size, in bytes, of the B+-tree page footer.
const SpecialSize = 10

// PageType distinguishes a B+-tree leaf page from an internal page.
type PageType uint8

const (
	Leaf     PageType = 0
	Internal PageType = 1
)

// Special is the B+-tree-specific footer stored in a slotted page's
// special area.
type Special struct {
	PageType  PageType
	Level     uint8
	NextPage  uint32
	PrevPage  uint32
}

func (s *SlottedPage) specialOffset() int { return int(s.PgSpecial()) }

// GetSpecial decodes the B+-tree footer.
func (s *SlottedPage) GetSpecial() Special {
	off := s.specialOffset()
	b := s.buf[off : off+SpecialSize]
	return Special{
		PageType: PageType(b[0]),
		Level:    b[1],
		NextPage: binary.LittleEndian.Uint32(b[2:6]),
		PrevPage: binary.LittleEndian.Uint32(b[6:10]),
	}
}

// SetSpecial encodes the B+-tree footer.
func (s *SlottedPage) SetSpecial(sp Special) {
	off := s.specialOffset()
	b := s.buf[off : off+SpecialSize]
	b[0] = byte(sp.PageType)
	b[1] = sp.Level
	binary.LittleEndian.PutUint32(b[2:6], sp.NextPage)
	binary.LittleEndian.PutUint32(b[6:10], sp.PrevPage)
}

// Rid is a record identifier: the page and slot of a stored tuple.
type Rid struct {
	PageNum  uint32
	SlotNum  uint16
}

const leafTupleSize = 14   // rid_page_num(4) + rid_slot_num(2) + key(8)
const internalTupleSize = 12 // key(8) + right_child(4)
const leftmostPtrSize = 4

// LeafView is a B+-tree leaf page: each slot's tuple carries a key and
// the Rid of the record it points to.
type LeafView struct {
	*SlottedPage
}

// InitLeaf formats buf as an empty B+-tree leaf page.
func InitLeaf(buf *[FrameSize]byte, level uint8) *LeafView {
	sp := Init(buf, SpecialSize)
	sp.SetSpecial(Special{PageType: Leaf, Level: level, NextPage: 0, PrevPage: 0})
	return &LeafView{sp}
}

// WrapLeaf reinterprets an already-formatted buffer as a leaf view.
func WrapLeaf(buf *[FrameSize]byte) *LeafView { return &LeafView{Wrap(buf)} }

// Key returns the key stored at slot i.
func (lv *LeafView) Key(i int) int64 {
	t := lv.TupleAt(i, leafTupleSize)
	return int64(binary.LittleEndian.Uint64(t[6:14]))
}

// RidAt returns the record identifier stored at slot i.
func (lv *LeafView) RidAt(i int) Rid {
	t := lv.TupleAt(i, leafTupleSize)
	return Rid{
		PageNum: binary.LittleEndian.Uint32(t[0:4]),
		SlotNum: binary.LittleEndian.Uint16(t[4:6]),
	}
}

// FindKeyIndex returns the first slot index whose key is >= key (lower
// bound binary search).
func (lv *LeafView) FindKeyIndex(key int64) int {
	return lv.FindLowerBound(key, lv.Key)
}

// Insert places (key, rid) into the leaf, keeping slots in ascending-key
// order. Returns false if the page has no room.
func (lv *LeafView) Insert(key int64, rid Rid) bool {
	idx := lv.FindKeyIndex(key)
	var tuple [leafTupleSize]byte
	binary.LittleEndian.PutUint32(tuple[0:4], rid.PageNum)
	binary.LittleEndian.PutUint16(tuple[4:6], rid.SlotNum)
	binary.LittleEndian.PutUint64(tuple[6:14], uint64(key))
	return lv.InsertTuple(idx, tuple[:])
}

// InternalView is a B+-tree internal page: a leftmost-child pointer
// stored just above the special footer, followed by (key, right_child)
// tuples in ascending-key order.
type InternalView struct {
	*SlottedPage
}

// InitInternal formats buf as an empty B+-tree internal page, reserving
// the leftmost-child pointer immediately above the special footer.
func InitInternal(buf *[FrameSize]byte, level uint8, leftmost uint32) *InternalView {
	sp := Init(buf, SpecialSize)
	sp.SetSpecial(Special{PageType: Internal, Level: level, NextPage: 0, PrevPage: 0})
	iv := &InternalView{sp}
	// carve the leftmost-child pointer out of the tuple region, just
	// below the special footer.
	sp.setPgUpper(sp.PgUpper() - leftmostPtrSize)
	iv.SetLeftmostChild(leftmost)
	return iv
}

// WrapInternal reinterprets an already-formatted buffer as an internal
// view.
func WrapInternal(buf *[FrameSize]byte) *InternalView { return &InternalView{Wrap(buf)} }

// leftmostPtrOffset is fixed at the 4 bytes immediately above the special
// footer. It must NOT be derived from PgUpper(), which moves every time
// Insert grows the tuple region downward.
func (iv *InternalView) leftmostPtrOffset() int {
	return int(iv.PgSpecial()) - leftmostPtrSize
}

// LeftmostChild returns the page pointed to by keys smaller than Key(0).
func (iv *InternalView) LeftmostChild() uint32 {
	off := iv.leftmostPtrOffset()
	return binary.LittleEndian.Uint32(iv.buf[off : off+leftmostPtrSize])
}

// SetLeftmostChild sets the leftmost-child pointer.
func (iv *InternalView) SetLeftmostChild(child uint32) {
	off := iv.leftmostPtrOffset()
	binary.LittleEndian.PutUint32(iv.buf[off:off+leftmostPtrSize], child)
}

// Key returns the key stored at slot i.
func (iv *InternalView) Key(i int) int64 {
	t := iv.TupleAt(i, internalTupleSize)
	return int64(binary.LittleEndian.Uint64(t[0:8]))
}

// RightChild returns the child pointer to the right of Key(i).
func (iv *InternalView) RightChild(i int) uint32 {
	t := iv.TupleAt(i, internalTupleSize)
	return binary.LittleEndian.Uint32(t[8:12])
}

// FindKeyIndex returns the first slot index whose key is >= key.
func (iv *InternalView) FindKeyIndex(key int64) int {
	return iv.FindLowerBound(key, iv.Key)
}

// Insert places (key, rightChild) into the internal page, keeping slots
// in ascending-key order. Returns false if the page has no room.
func (iv *InternalView) Insert(key int64, rightChild uint32) bool {
	idx := iv.FindKeyIndex(key)
	var tuple [internalTupleSize]byte
	binary.LittleEndian.PutUint64(tuple[0:8], uint64(key))
	binary.LittleEndian.PutUint32(tuple[8:12], rightChild)
	return iv.InsertTuple(idx, tuple[:])
}
