package gifmeta

// Block introducers
const (
	EXTENSION_BLOCK  = 0x21
	IMAGE_DESCRIPTOR = 0x2C
	TRAILER          = 0x3B
)

// Extension labels
const (
	PLAINTEXT_BLOCK        = 0x01
	GRAPHICS_CONTROL_BLOCK = 0xF9
	COMMENT_BLOCK          = 0xFE
	APPLICATION_BLOCK      = 0xFF

	APPLICATION_BLOCK_SIZE = 0x0B
)

const (
	HEADER_SIZE           = 6
	IMAGE_DESCRIPTOR_SIZE = 9

	// sub-block lengths are a single byte, so one spare slot is enough
	SCRATCH_SIZE = 256
)

/*
ScreenPacked {
	0-2: 	GlobalColorTableSize
	  3: 	ColorTableSortFlag   | Only valid under 89a, 87a always sets it to 0
	4-6:	ColorResolution
	  7:	GlobalColorTableFlag
}
*/

/*
ImageDescriptorPacked {
	0-2: LocalColorTableSize
	3-4: Reserved
	  5: SortFlag
	  6: InterlaceFlag
	  7: LocalColorTableFlag
}
*/

const (
	colorTableFlag     = 1 << 7
	colorTableSizeMask = 7
	interlaceFlag      = 1 << 6
)

// ScreenDescriptor is the logical screen descriptor that follows the header.
type ScreenDescriptor struct {
	ScreenWidth     uint16
	ScreenHeight    uint16
	Packed          byte
	BackgroundColor byte // unused if GlobalColorTableFlag is unset
	AspectRatio     byte
}

// HasColorTable reports whether a global color table follows.
func (s ScreenDescriptor) HasColorTable() bool {
	return s.Packed&colorTableFlag != 0
}

// ImageDescriptor precedes every image's optional local color table and
// its LZW data.
type ImageDescriptor struct {
	Left   uint16 // X position of image
	Top    uint16 // Y position of image
	Width  uint16 // width of image in pixels
	Height uint16 // height of image in pixels
	Packed byte   // image and color table data information
}

// HasColorTable reports whether a local color table follows.
func (d ImageDescriptor) HasColorTable() bool {
	return d.Packed&colorTableFlag != 0
}

// Interlaced reports whether the image rows are stored interlaced.
func (d ImageDescriptor) Interlaced() bool {
	return d.Packed&interlaceFlag != 0
}

// ColorTableLength returns the byte length of the color table described by
// a packed field: 2^(size+1) RGB entries of three bytes each.
func ColorTableLength(packed byte) int {
	return 3 * (1 << ((packed & colorTableSizeMask) + 1))
}
