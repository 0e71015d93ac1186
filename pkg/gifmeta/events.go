package gifmeta

import "fmt"

// ExtensionKind identifies the extension a decoded event came from.
type ExtensionKind int

const (
	ExtNone ExtensionKind = iota
	ExtPlainText
	ExtApplication
	ExtApplicationSubblock
	ExtComment
	ExtUnknown
)

func (k ExtensionKind) String() string {
	switch k {
	case ExtNone:
		return "none"
	case ExtPlainText:
		return "plain text"
	case ExtApplication:
		return "application"
	case ExtApplicationSubblock:
		return "application subblock"
	case ExtComment:
		return "comment"
	case ExtUnknown:
		return "unknown"
	}
	return fmt.Sprintf("extension(%d)", int(k))
}

// ExtensionEvent carries the text of one completed comment or plain text
// extension, one application identifier, or one application sub-block.
// Text is raw and may contain NUL bytes.
type ExtensionEvent struct {
	Kind ExtensionKind
	Text []byte
	// Offset of the 0x21 introducer of the owning extension.
	Offset int64
}

// Handler receives parser events. Calls happen synchronously on the
// goroutine driving the parser.
type Handler interface {
	OnExtension(ev ExtensionEvent)
	OnStateChange(s State)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are ignored.
type HandlerFuncs struct {
	Extension   func(ExtensionEvent)
	StateChange func(State)
}

func (h HandlerFuncs) OnExtension(ev ExtensionEvent) {
	if h.Extension != nil {
		h.Extension(ev)
	}
}

func (h HandlerFuncs) OnStateChange(s State) {
	if h.StateChange != nil {
		h.StateChange(s)
	}
}

// Recorder keeps every event it receives.
type Recorder struct {
	Events []ExtensionEvent
	States []State
}

func (r *Recorder) OnExtension(ev ExtensionEvent) {
	r.Events = append(r.Events, ev)
}

func (r *Recorder) OnStateChange(s State) {
	r.States = append(r.States, s)
}

// Reached reports whether s was ever entered.
func (r *Recorder) Reached(s State) bool {
	for _, st := range r.States {
		if st == s {
			return true
		}
	}
	return false
}

type multiHandler []Handler

// MultiHandler fans every event out to each handler in order.
func MultiHandler(hs ...Handler) Handler {
	return multiHandler(hs)
}

func (m multiHandler) OnExtension(ev ExtensionEvent) {
	for _, h := range m {
		h.OnExtension(ev)
	}
}

func (m multiHandler) OnStateChange(s State) {
	for _, h := range m {
		h.OnStateChange(s)
	}
}
