package gifmeta

import "fmt"

// State is a top-level state of the block state machine.
type State int

const (
	StateHeader State = iota
	StateLogicalScreenDescriptor
	StateGlobalColorTable
	StateSearching
	StateExtension
	StateKnownExtension
	StateUnknownExtension
	StateImageDescriptor
	StateLocalColorTable
	StateImageData
	StateTrailer
)

var stateNames = [...]string{
	StateHeader:                  "header",
	StateLogicalScreenDescriptor: "logical screen descriptor",
	StateGlobalColorTable:        "global color table",
	StateSearching:               "searching",
	StateExtension:               "extension",
	StateKnownExtension:          "known extension",
	StateUnknownExtension:        "unknown extension",
	StateImageDescriptor:         "image descriptor",
	StateLocalColorTable:         "local color table",
	StateImageData:               "image data",
	StateTrailer:                 "trailer",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// lsdField tracks progress through the logical screen descriptor.
type lsdField int

const (
	lsdWidth lsdField = iota
	lsdHeight
	lsdPacked
	lsdBackground
	lsdAspect
)
