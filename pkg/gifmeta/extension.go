package gifmeta

import "fmt"

func (p *Parser) extensionLabel(b byte) {
	p.scratch.reset()
	p.inBlock = false
	p.text = p.text[:0]
	p.textBlocks = 0
	p.textDropped = 0

	switch b {
	case PLAINTEXT_BLOCK:
		p.extensionKind = ExtPlainText
	case APPLICATION_BLOCK:
		p.extensionKind = ExtApplication
	case COMMENT_BLOCK:
		p.extensionKind = ExtComment
	default:
		p.extensionKind = ExtUnknown
		p.log.Debug("found an unknown extension", "label", fmt.Sprintf("0x%02x", b), "offset", p.extStart)
		p.setState(StateUnknownExtension)
		return
	}
	p.log.Debug("found a known extension", "kind", p.extensionKind.String(), "offset", p.extStart)
	p.setState(StateKnownExtension)
}

// knownExtension handles one byte of a comment, plain text or application
// extension. Outside a sub-block the byte is the next block size.
func (p *Parser) knownExtension(b byte) error {
	if !p.inBlock {
		if b == 0 {
			p.endExtension()
			return nil
		}
		p.scratch.expect(int(b))
		p.inBlock = true
		p.log.Debug("new extension block", "len", b)
		if p.extensionKind == ExtApplication && b != APPLICATION_BLOCK_SIZE {
			// Adobe sometimes writes 10
			p.log.Debug("unusual application identifier size", "len", b)
		}
		return nil
	}

	switch p.extensionKind {
	case ExtComment, ExtPlainText:
		// A NUL inside the declared length ends the whole text early.
		// The rest of the sub-block is then scanned for introducers.
		if b == 0 {
			p.appendText(p.scratch.bytes())
			p.emitText()
			p.log.Debug("extension text ended by a NUL byte", "kind", p.extensionKind.String())
			p.leaveExtension()
			return nil
		}
		if err := p.scratch.push(b); err != nil {
			return err
		}
		if p.scratch.isComplete() {
			p.appendText(p.scratch.bytes())
			p.textBlocks++
			p.inBlock = false
		}
	case ExtApplication, ExtApplicationSubblock:
		if err := p.scratch.push(b); err != nil {
			return err
		}
		if !p.scratch.isComplete() {
			return nil
		}
		p.emit(p.extensionKind, p.scratch.bytes())
		p.extensionKind = ExtApplicationSubblock
		p.inBlock = false
	default:
		return fmt.Errorf("gif: known extension state with kind %s", p.extensionKind)
	}
	return nil
}

func (p *Parser) endExtension() {
	if (p.extensionKind == ExtComment || p.extensionKind == ExtPlainText) && p.textBlocks > 0 {
		p.emitText()
	}
	p.log.Debug("reached the end of the extension", "kind", p.extensionKind.String())
	p.leaveExtension()
}

// leaveExtension is the single way out of an extension back to Searching.
func (p *Parser) leaveExtension() {
	p.extensionKind = ExtNone
	p.inBlock = false
	p.setState(StateSearching)
}

// unknownExtension discards sub-blocks until the zero-length terminator.
func (p *Parser) unknownExtension(b byte) {
	if b == 0 {
		p.log.Debug("reached the end of the unknown extension")
		p.leaveExtension()
		return
	}
	p.scratch.expect(int(b))
	p.inBlock = true
}

func (p *Parser) appendText(b []byte) {
	room := p.maxText - len(p.text)
	if room < len(b) {
		p.textDropped += len(b) - max(room, 0)
		b = b[:max(room, 0)]
	}
	p.text = append(p.text, b...)
}

func (p *Parser) emitText() {
	if p.textDropped > 0 {
		p.warn(WarnTextTruncated, p.extStart, fmt.Sprintf("%s text exceeded %d bytes, dropped %d", p.extensionKind, p.maxText, p.textDropped))
	}
	p.emit(p.extensionKind, p.text)
	p.text = p.text[:0]
	p.textBlocks = 0
	p.textDropped = 0
}

func (p *Parser) emit(kind ExtensionKind, text []byte) {
	ev := ExtensionEvent{
		Kind:   kind,
		Text:   append([]byte(nil), text...),
		Offset: p.extStart,
	}
	p.log.Debug("extension event", "kind", kind.String(), "len", len(ev.Text))
	p.h.OnExtension(ev)
}
