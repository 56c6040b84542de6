package page

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of the slotted-page header.
const HeaderSize = 7

// SlottedPage is a thin, ref-returning view over a frame's byte buffer,
// reinterpreting it as the slotted-page layout: a 7-byte header, a slot
// array growing up from offset 7, tuple payloads growing down from the
// special area, and a page-type-specific special footer at the tail.
//
//	Header | Slot array | Free space | Tuples | Special
//	0    7 | 7 .. lower | lower..upper | upper..special | special..FrameSize
//
// The layout is persisted bit-exactly and all multi-byte integers are
// little-endian.
type SlottedPage struct {
	buf *[FrameSize]byte
}

// Wrap reinterprets an existing frame buffer as a slotted page without
// resetting its contents.
func Wrap(buf *[FrameSize]byte) *SlottedPage {
	return &SlottedPage{buf: buf}
}

// Init formats buf as an empty slotted page with a special area of the
// given size at the tail.
func Init(buf *[FrameSize]byte, specialSize uint16) *SlottedPage {
	sp := &SlottedPage{buf: buf}
	special := uint16(FrameSize) - specialSize
	sp.setHasFreeSpace(true)
	sp.setPgLower(HeaderSize)
	sp.setPgUpper(special)
	sp.setPgSpecial(special)
	return sp
}

func (s *SlottedPage) HasFreeSpace() bool { return s.buf[0] != 0 }

func (s *SlottedPage) setHasFreeSpace(v bool) {
	if v {
		s.buf[0] = 1
	} else {
		s.buf[0] = 0
	}
}

func (s *SlottedPage) PgLower() uint16 { return binary.LittleEndian.Uint16(s.buf[1:3]) }
func (s *SlottedPage) setPgLower(v uint16) { binary.LittleEndian.PutUint16(s.buf[1:3], v) }

func (s *SlottedPage) PgUpper() uint16 { return binary.LittleEndian.Uint16(s.buf[3:5]) }
func (s *SlottedPage) setPgUpper(v uint16) { binary.LittleEndian.PutUint16(s.buf[3:5], v) }

func (s *SlottedPage) PgSpecial() uint16 { return binary.LittleEndian.Uint16(s.buf[5:7]) }
func (s *SlottedPage) setPgSpecial(v uint16) { binary.LittleEndian.PutUint16(s.buf[5:7], v) }

// SlotCount returns the number of slots currently in the slot array.
func (s *SlottedPage) SlotCount() int {
	return int(s.PgLower()-HeaderSize) / 2
}

func slotOffset(i int) int { return HeaderSize + i*2 }

// SlotValue returns the tuple offset stored at slot i (0-based, ascending
// key order).
func (s *SlottedPage) SlotValue(i int) uint16 {
	off := slotOffset(i)
	return binary.LittleEndian.Uint16(s.buf[off : off+2])
}

func (s *SlottedPage) setSlotValue(i int, v uint16) {
	off := slotOffset(i)
	binary.LittleEndian.PutUint16(s.buf[off:off+2], v)
}

// FreeSpace returns the number of bytes currently available between the
// slot array and the tuple region.
func (s *SlottedPage) FreeSpace() int {
	return int(s.PgUpper()) - int(s.PgLower())
}

// TupleAt returns the size-byte tuple payload stored for slot i. The
// returned slice aliases the frame buffer (no copy).
func (s *SlottedPage) TupleAt(i int, size int) []byte {
	off := s.SlotValue(i)
	return s.buf[off : int(off)+size]
}

// InsertTuple inserts a size(tuple)-byte tuple so that it occupies slot
// index idx (shifting slots idx.. to the right by one), appending the
// payload at the low end of the tuple region. Returns false if there is
// not enough free space for the tuple plus its slot entry.
func (s *SlottedPage) InsertTuple(idx int, tuple []byte) bool {
	need := len(tuple) + 2
	if s.FreeSpace() < need {
		s.setHasFreeSpace(false)
		return false
	}

	newUpper := s.PgUpper() - uint16(len(tuple))
	copy(s.buf[newUpper:int(newUpper)+len(tuple)], tuple)

	n := s.SlotCount()
	// shift slot array right by one entry, starting at idx
	for i := n; i > idx; i-- {
		s.setSlotValue(i, s.SlotValue(i-1))
	}
	s.setSlotValue(idx, newUpper)

	s.setPgLower(s.PgLower() + 2)
	s.setPgUpper(newUpper)
	if s.FreeSpace() <= 0 {
		s.setHasFreeSpace(false)
	}
	return true
}

// FindLowerBound returns the first slot index i such that keyAt(i) >=
// key, or SlotCount() if no such slot exists (binary search; slots are
// kept in ascending-key order by the caller).
func (s *SlottedPage) FindLowerBound(key int64, keyAt func(i int) int64) int {
	lo, hi := 0, s.SlotCount()
	for lo < hi {
		mid := (lo + hi) / 2
		if keyAt(mid) < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
