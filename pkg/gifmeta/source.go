package gifmeta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// DefaultChunkSize is the read size used when none is given.
const DefaultChunkSize = 256

// maxEmptyReads bounds consecutive 0, nil reads, as bufio does.
const maxEmptyReads = 100

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// ReaderSource hands out fixed-size chunks read from an io.Reader. Input
// framed as zstd is decompressed on the fly.
type ReaderSource struct {
	r   io.Reader
	br  *bufio.Reader
	zr  *zstd.Decoder
	buf []byte

	sniffed    bool
	compressed bool
}

// NewReaderSource reads chunks of at most size bytes; size <= 0 uses
// DefaultChunkSize. The returned chunk is only valid until the next call.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ReaderSource{
		br:  bufio.NewReader(r),
		buf: make([]byte, size),
	}
}

// Compressed reports whether the input was detected as zstd. It is only
// meaningful after the first NextChunk call.
func (v *ReaderSource) Compressed() bool {
	return v.compressed
}

func (v *ReaderSource) sniff() error {
	v.sniffed = true
	v.r = v.br
	head, err := v.br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return err
	}
	if !bytes.Equal(head, zstdMagic) {
		return nil
	}
	zr, err := zstd.NewReader(v.br)
	if err != nil {
		return fmt.Errorf("gif: opening zstd stream: %w", err)
	}
	v.zr = zr
	v.r = zr
	v.compressed = true
	return nil
}

func (v *ReaderSource) NextChunk() ([]byte, error) {
	if !v.sniffed {
		if err := v.sniff(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < maxEmptyReads; i++ {
		n, err := v.r.Read(v.buf)
		if n > 0 {
			if err == io.EOF {
				err = nil
			}
			return v.buf[:n], err
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, io.ErrNoProgress
}

// Close releases the zstd decoder, if one was started. It does not close
// the underlying reader.
func (v *ReaderSource) Close() error {
	if v.zr != nil {
		v.zr.Close()
		v.zr = nil
	}
	return nil
}

// BytesSource splits an in-memory stream into chunks of a fixed size.
type BytesSource struct {
	data []byte
	size int
}

func NewBytesSource(data []byte, size int) *BytesSource {
	if size <= 0 {
		size = len(data)
	}
	return &BytesSource{data: data, size: size}
}

func (v *BytesSource) NextChunk() ([]byte, error) {
	if len(v.data) == 0 {
		return nil, io.EOF
	}
	n := min(v.size, len(v.data))
	chunk := v.data[:n]
	v.data = v.data[n:]
	return chunk, nil
}
