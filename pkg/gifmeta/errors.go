package gifmeta

import (
	"errors"
	"fmt"
)

// Fatal errors. The parse stops at the first one.
var (
	ErrInvalidSignature = errors.New("gif: invalid signature")
	ErrTruncatedHeader  = errors.New("gif: truncated header")
	ErrBufferOverflow   = errors.New("gif: scratch buffer overflow")

	ErrFinished = errors.New("gif: parser already finished")
)

// WarningKind classifies non-fatal anomalies.
type WarningKind int

const (
	WarnUnsupportedVersion WarningKind = iota + 1
	WarnUnknownByte
	WarnNoTrailer
	WarnTextTruncated
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnsupportedVersion:
		return "unsupported version"
	case WarnUnknownByte:
		return "unknown byte while searching"
	case WarnNoTrailer:
		return "no trailer observed"
	case WarnTextTruncated:
		return "text truncated"
	}
	return fmt.Sprintf("warning(%d)", int(k))
}

// Warning is reported in Result after the parse completes.
type Warning struct {
	Kind   WarningKind
	Offset int64
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at offset %d: %s", w.Kind, w.Offset, w.Detail)
}
