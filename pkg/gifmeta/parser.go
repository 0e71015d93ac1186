// Package gifmeta extracts comments, application extensions and plain text
// from GIF87a/GIF89a streams without decoding any image data.
//
// The parser is a resumable state machine: bytes may arrive in chunks of
// any size and multi-byte fields are reassembled across chunk boundaries.
//
// GIF89a is documented at https://www.w3.org/Graphics/GIF/spec-gif89a.txt.
package gifmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

// ChunkSource supplies the stream in chunks. It returns io.EOF once the
// input is exhausted; a chunk returned together with io.EOF is still parsed.
type ChunkSource interface {
	NextChunk() ([]byte, error)
}

// Result summarises a finished parse.
type Result struct {
	Version    string
	Supported  bool
	Width      uint16
	Height     uint16
	SawTrailer bool
	Images     int
	BytesRead  int64
	Warnings   []Warning
}

// Parser holds all state of a single parse. It is not safe for concurrent
// use; parse independent streams with independent parsers.
type Parser struct {
	h             Handler
	log           *slog.Logger
	trailerPolicy TrailerPolicy
	maxText       int

	state            State
	lsdField         lsdField
	screen           ScreenDescriptor
	colorTableLength int
	extensionKind    ExtensionKind
	scratch          scratch
	sawTrailer       bool

	// sub-block framing shared by extensions and image data
	inBlock    bool
	lzwPending bool

	text        []byte
	textBlocks  int
	textDropped int

	version  string
	images   int
	offset   int64
	extStart int64

	unknownRun   int
	unknownStart int64
	unknownFirst byte

	warnings []Warning
	started  bool
	finished bool
	err      error
}

// NewParser returns a parser in the header state. h may be nil.
func NewParser(h Handler, opts ...Option) *Parser {
	if h == nil {
		h = HandlerFuncs{}
	}
	p := &Parser{
		h:       h,
		log:     discardLogger(),
		maxText: DefaultMaxTextLength,
		state:   StateHeader,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scratch.expect(HEADER_SIZE)
	return p
}

// Parse pulls every chunk from src through a new parser.
func Parse(src ChunkSource, h Handler, opts ...Option) (*Result, error) {
	p := NewParser(h, opts...)
	for {
		chunk, err := src.NextChunk()
		if len(chunk) > 0 {
			if ferr := p.Feed(chunk); ferr != nil {
				return nil, ferr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gif: reading input: %w", err)
		}
	}
	return p.Finish()
}

// Write feeds b to the parser so it can be driven by io.Copy.
func (p *Parser) Write(b []byte) (int, error) {
	if err := p.Feed(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Feed consumes one chunk. The chunk is not retained.
func (p *Parser) Feed(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	if p.finished {
		return ErrFinished
	}
	p.start()
	for len(chunk) > 0 {
		n, err := p.step(chunk)
		p.offset += int64(n)
		chunk = chunk[n:]
		if err != nil {
			p.err = err
			return err
		}
	}
	return nil
}

// Finish signals end of input and reports the result.
func (p *Parser) Finish() (*Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.finished {
		return nil, ErrFinished
	}
	p.start()
	p.finished = true

	if p.state == StateHeader {
		p.err = fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedHeader, p.scratch.n, HEADER_SIZE)
		return nil, p.err
	}
	p.flushUnknown()
	if !p.sawTrailer {
		p.warn(WarnNoTrailer, p.offset, fmt.Sprintf("input ended in state %q, some data may have been missed", p.state))
	}
	p.log.Debug("finished reading image", "bytes", p.offset, "images", p.images)

	return &Result{
		Version:    p.version,
		Supported:  SupportedVersion(p.version),
		Width:      p.screen.ScreenWidth,
		Height:     p.screen.ScreenHeight,
		SawTrailer: p.sawTrailer,
		Images:     p.images,
		BytesRead:  p.offset,
		Warnings:   p.warnings,
	}, nil
}

func (p *Parser) start() {
	if p.started {
		return
	}
	p.started = true
	p.h.OnStateChange(StateHeader)
}

func (p *Parser) setState(s State) {
	p.state = s
	p.log.Debug("state change", "state", s.String(), "offset", p.offset)
	p.h.OnStateChange(s)
}

func (p *Parser) warn(kind WarningKind, offset int64, detail string) {
	p.warnings = append(p.warnings, Warning{Kind: kind, Offset: offset, Detail: detail})
}

// step consumes at least one byte of chunk and returns how many it used.
// States that only skip bytes consume in bulk.
func (p *Parser) step(chunk []byte) (int, error) {
	switch p.state {
	case StateGlobalColorTable, StateLocalColorTable:
		return p.skipColorTable(chunk), nil
	case StateUnknownExtension, StateImageData:
		if p.inBlock {
			return p.skipBlock(chunk), nil
		}
	case StateTrailer:
		if p.trailerPolicy == TrailerStop {
			return len(chunk), nil
		}
	}
	return 1, p.stepByte(chunk[0])
}

func (p *Parser) stepByte(b byte) error {
	switch p.state {
	case StateHeader:
		return p.header(b)
	case StateLogicalScreenDescriptor:
		return p.screenDescriptor(b)
	case StateSearching, StateTrailer:
		p.search(b)
	case StateExtension:
		p.extensionLabel(b)
	case StateKnownExtension:
		return p.knownExtension(b)
	case StateUnknownExtension:
		p.unknownExtension(b)
	case StateImageDescriptor:
		return p.imageDescriptor(b)
	case StateImageData:
		p.imageData(b)
	default:
		return fmt.Errorf("gif: parser in invalid state %d", int(p.state))
	}
	return nil
}

func (p *Parser) header(b byte) error {
	if err := checkSignatureByte(p.scratch.n, b); err != nil {
		return err
	}
	if err := p.scratch.push(b); err != nil {
		return err
	}
	if !p.scratch.isComplete() {
		return nil
	}

	p.version = string(p.scratch.bytes()[len(Signature):HEADER_SIZE])
	p.log.Info("gif version detected", "version", p.version)
	if !SupportedVersion(p.version) {
		p.warn(WarnUnsupportedVersion, int64(len(Signature)), fmt.Sprintf("gif is an unsupported version: %q", p.version))
	}

	p.lsdField = lsdWidth
	p.scratch.expect(2)
	p.setState(StateLogicalScreenDescriptor)
	return nil
}

func (p *Parser) screenDescriptor(b byte) error {
	switch p.lsdField {
	case lsdWidth, lsdHeight:
		if err := p.scratch.push(b); err != nil {
			return err
		}
		if !p.scratch.isComplete() {
			return nil
		}
		v := p.scratch.uint16le()
		if p.lsdField == lsdWidth {
			p.screen.ScreenWidth = v
			p.log.Info("canvas width", "width", v)
			p.lsdField = lsdHeight
		} else {
			p.screen.ScreenHeight = v
			p.log.Info("canvas height", "height", v)
			p.lsdField = lsdPacked
		}
		p.scratch.expect(2)
	case lsdPacked:
		p.screen.Packed = b
		p.colorTableLength = ColorTableLength(b)
		p.log.Debug("screen descriptor packed field",
			"global_color_table", p.screen.HasColorTable(),
			"color_table_len", p.colorTableLength)
		p.lsdField = lsdBackground
	case lsdBackground:
		p.screen.BackgroundColor = b
		p.lsdField = lsdAspect
	case lsdAspect:
		p.screen.AspectRatio = b
		p.scratch.reset()
		if p.screen.HasColorTable() {
			p.setState(StateGlobalColorTable)
		} else {
			p.colorTableLength = 0
			p.setState(StateSearching)
		}
	}
	return nil
}

func (p *Parser) skipColorTable(chunk []byte) int {
	n := min(len(chunk), p.colorTableLength)
	p.colorTableLength -= n
	if p.colorTableLength > 0 {
		return n
	}
	if p.state == StateGlobalColorTable {
		p.log.Debug("finished the global color table")
		p.setState(StateSearching)
	} else {
		p.log.Debug("finished the local color table")
		p.enterImageData()
	}
	return n
}

func (p *Parser) search(b byte) {
	switch b {
	case EXTENSION_BLOCK:
		p.flushUnknown()
		p.extStart = p.offset
		p.setState(StateExtension)
	case IMAGE_DESCRIPTOR:
		p.flushUnknown()
		p.scratch.expect(IMAGE_DESCRIPTOR_SIZE)
		p.setState(StateImageDescriptor)
	case TRAILER:
		p.flushUnknown()
		p.sawTrailer = true
		p.setState(StateTrailer)
	default:
		if p.unknownRun == 0 {
			p.unknownStart = p.offset
			p.unknownFirst = b
		}
		p.unknownRun++
	}
}

// flushUnknown turns a run of unrecognised bytes into a single warning.
func (p *Parser) flushUnknown() {
	if p.unknownRun == 0 {
		return
	}
	p.log.Debug("unknown bytes", "offset", p.unknownStart, "count", p.unknownRun, "first", p.unknownFirst)
	p.warn(WarnUnknownByte, p.unknownStart, fmt.Sprintf("%d unknown byte(s) starting with 0x%02x", p.unknownRun, p.unknownFirst))
	p.unknownRun = 0
}

func (p *Parser) imageDescriptor(b byte) error {
	if err := p.scratch.push(b); err != nil {
		return err
	}
	if !p.scratch.isComplete() {
		return nil
	}

	var desc ImageDescriptor
	if err := binary.Read(bytes.NewReader(p.scratch.bytes()), binary.LittleEndian, &desc); err != nil {
		return fmt.Errorf("gif: decoding image descriptor: %w", err)
	}
	p.images++
	p.log.Debug("image descriptor",
		"left", desc.Left, "top", desc.Top,
		"width", desc.Width, "height", desc.Height,
		"interlaced", desc.Interlaced(),
		"local_color_table", desc.HasColorTable())

	if desc.HasColorTable() {
		p.colorTableLength = ColorTableLength(desc.Packed)
		p.setState(StateLocalColorTable)
		return nil
	}
	p.enterImageData()
	return nil
}

func (p *Parser) enterImageData() {
	p.scratch.reset()
	p.inBlock = false
	p.lzwPending = true
	p.setState(StateImageData)
}

func (p *Parser) imageData(b byte) {
	if p.lzwPending {
		p.lzwPending = false
		p.log.Debug("lzw minimum code size", "size", b)
		return
	}
	if b == 0 {
		p.log.Debug("reached the end of image data blocks")
		p.setState(StateSearching)
		return
	}
	p.scratch.expect(int(b))
	p.inBlock = true
}

// skipBlock discards sub-block data without storing it.
func (p *Parser) skipBlock(chunk []byte) int {
	n := min(len(chunk), p.scratch.remaining())
	p.scratch.skip(n)
	if p.scratch.isComplete() {
		p.inBlock = false
	}
	return n
}
