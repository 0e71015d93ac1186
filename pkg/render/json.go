package render

import (
	"encoding/json"
	"io"

	"github.com/illusionman1212/gifmetadata-go/pkg/gifmeta"
)

// ExtensionRecord is one line of JSON output per extension event.
type ExtensionRecord struct {
	File   string `json:"file"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Raw    []byte `json:"raw"`
	Offset int64  `json:"offset"`
}

// SummaryRecord closes the output of one file.
type SummaryRecord struct {
	File       string   `json:"file"`
	Version    string   `json:"version,omitempty"`
	Width      uint16   `json:"width"`
	Height     uint16   `json:"height"`
	Images     int      `json:"images"`
	SawTrailer bool     `json:"trailer"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// JSON writes newline-delimited JSON records.
type JSON struct {
	file string
	enc  *json.Encoder
	err  error
}

func NewJSON(w io.Writer, file string) *JSON {
	return &JSON{file: file, enc: json.NewEncoder(w)}
}

func (j *JSON) OnExtension(ev gifmeta.ExtensionEvent) {
	j.write(ExtensionRecord{
		File:   j.file,
		Kind:   ev.Kind.String(),
		Text:   string(cString(ev.Text)),
		Raw:    ev.Text,
		Offset: ev.Offset,
	})
}

func (j *JSON) OnStateChange(gifmeta.State) {}

// Summary writes the closing record; err is the fatal parse error, if any.
func (j *JSON) Summary(res *gifmeta.Result, err error) error {
	rec := SummaryRecord{File: j.file}
	if res != nil {
		rec.Version = res.Version
		rec.Width = res.Width
		rec.Height = res.Height
		rec.Images = res.Images
		rec.SawTrailer = res.SawTrailer
		for _, w := range res.Warnings {
			rec.Warnings = append(rec.Warnings, w.String())
		}
	}
	if err != nil {
		rec.Error = err.Error()
	}
	j.write(rec)
	return j.err
}

// write keeps the first encoding error; handlers cannot return one.
func (j *JSON) write(v any) {
	if j.err != nil {
		return
	}
	j.err = j.enc.Encode(v)
}
