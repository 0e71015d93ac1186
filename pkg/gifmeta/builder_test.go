package gifmeta

import (
	"bytes"
	"encoding/binary"
)

// gifBuilder assembles GIF streams byte by byte for tests. Filler bytes are
// introducer values so that a miscounted skip shows up as stray events.
type gifBuilder struct {
	buf bytes.Buffer
}

func newGIF(version string) *gifBuilder {
	g := &gifBuilder{}
	g.buf.WriteString(Signature + version)
	return g
}

func (g *gifBuilder) screen(width, height uint16, packed byte) *gifBuilder {
	binary.Write(&g.buf, binary.LittleEndian, ScreenDescriptor{
		ScreenWidth:  width,
		ScreenHeight: height,
		Packed:       packed,
	})
	if packed&colorTableFlag != 0 {
		g.fill(ColorTableLength(packed))
	}
	return g
}

func (g *gifBuilder) fill(n int) *gifBuilder {
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			g.buf.WriteByte(EXTENSION_BLOCK)
		} else {
			g.buf.WriteByte(TRAILER)
		}
	}
	return g
}

func (g *gifBuilder) blocks(blocks ...[]byte) *gifBuilder {
	for _, b := range blocks {
		g.buf.WriteByte(byte(len(b)))
		g.buf.Write(b)
	}
	g.buf.WriteByte(0)
	return g
}

func (g *gifBuilder) extension(label byte, blocks ...[]byte) *gifBuilder {
	g.buf.WriteByte(EXTENSION_BLOCK)
	g.buf.WriteByte(label)
	return g.blocks(blocks...)
}

func (g *gifBuilder) comment(text ...string) *gifBuilder {
	blocks := make([][]byte, len(text))
	for i, t := range text {
		blocks[i] = []byte(t)
	}
	return g.extension(COMMENT_BLOCK, blocks...)
}

func (g *gifBuilder) application(id string, sub ...[]byte) *gifBuilder {
	return g.extension(APPLICATION_BLOCK, append([][]byte{[]byte(id)}, sub...)...)
}

func (g *gifBuilder) graphicsControl() *gifBuilder {
	return g.extension(GRAPHICS_CONTROL_BLOCK, []byte{0x04, 0x0A, 0x00, 0x00})
}

// image writes a descriptor, an optional local color table and LZW data.
func (g *gifBuilder) image(packed byte, data ...[]byte) *gifBuilder {
	g.buf.WriteByte(IMAGE_DESCRIPTOR)
	binary.Write(&g.buf, binary.LittleEndian, ImageDescriptor{
		Width:  4,
		Height: 4,
		Packed: packed,
	})
	if packed&colorTableFlag != 0 {
		g.fill(ColorTableLength(packed))
	}
	g.buf.WriteByte(0x02) // lzw minimum code size
	return g.blocks(data...)
}

func (g *gifBuilder) raw(b ...byte) *gifBuilder {
	g.buf.Write(b)
	return g
}

func (g *gifBuilder) trailer() *gifBuilder {
	g.buf.WriteByte(TRAILER)
	return g
}

func (g *gifBuilder) bytes() []byte {
	return append([]byte(nil), g.buf.Bytes()...)
}
