package gifmeta

import "encoding/binary"

// scratch reassembles fields and sub-blocks that may be split across
// chunks. want always holds the most recently read block size.
type scratch struct {
	buf  [SCRATCH_SIZE]byte
	n    int
	want int
}

func (s *scratch) reset() {
	s.n = 0
	s.want = 0
}

// expect resets the buffer and sets the length of the next field.
func (s *scratch) expect(n int) {
	s.n = 0
	s.want = n
}

func (s *scratch) push(b byte) error {
	if s.n >= len(s.buf) {
		return ErrBufferOverflow
	}
	s.buf[s.n] = b
	s.n++
	return nil
}

// skip advances the cursor by n without storing, for bytes that are
// counted but never inspected.
func (s *scratch) skip(n int) {
	s.n += n
}

func (s *scratch) isComplete() bool {
	return s.n >= s.want
}

func (s *scratch) remaining() int {
	if s.n >= s.want {
		return 0
	}
	return s.want - s.n
}

func (s *scratch) bytes() []byte {
	return s.buf[:min(s.n, len(s.buf))]
}

func (s *scratch) uint16le() uint16 {
	return binary.LittleEndian.Uint16(s.buf[:2])
}
