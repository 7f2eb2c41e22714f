// Package config loads frame descriptor sidecars and window/level preset
// files from YAML. A sidecar describes the geometry and pixel metadata of
// a raw frame dump so the render pipeline can consume it without any
// DICOM parsing.
package config

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jpfielding/dcmrender.go/pkg/render"
)

// Window is a YAML window/level preset entry.
type Window struct {
	Center      float64 `yaml:"center"`
	Width       float64 `yaml:"width"`
	Function    string  `yaml:"function,omitempty"`
	Explanation string  `yaml:"explanation,omitempty"`
}

// FrameFile describes a raw frame dump and its pixel metadata.
type FrameFile struct {
	// Geometry
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`

	// Format is the element type of the raw dump: uint8, uint16, int32
	// or float32. Multi-byte samples are little-endian.
	Format string `yaml:"format"`

	// Pixel module metadata
	BitsAllocated       int    `yaml:"bitsAllocated"`
	BitsStored          int    `yaml:"bitsStored"`
	HighBit             int    `yaml:"highBit"`
	PixelRepresentation int    `yaml:"pixelRepresentation"`
	Photometric         string `yaml:"photometric"`
	EmbeddedOverlays    bool   `yaml:"embeddedOverlays"`

	// Padding; pointers so absence is distinguishable from zero
	PixelPaddingValue      *int `yaml:"pixelPaddingValue,omitempty"`
	PixelPaddingRangeLimit *int `yaml:"pixelPaddingRangeLimit,omitempty"`

	// Modality rescale line
	RescaleSlope     float64 `yaml:"rescaleSlope"`
	RescaleIntercept float64 `yaml:"rescaleIntercept"`

	// VOI module
	Windows        []Window `yaml:"windows,omitempty"`
	VOILUTFunction string   `yaml:"voiLutFunction,omitempty"`
}

// Presets is a named window/level preset file.
type Presets struct {
	Presets []Window `yaml:"presets"`
}

// LoadFrameFile reads a frame sidecar from a YAML file.
func LoadFrameFile(path string) (*FrameFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}
	var f FrameFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sidecar: %w", err)
	}
	if f.Rows <= 0 || f.Columns <= 0 {
		return nil, fmt.Errorf("sidecar must declare positive rows and columns")
	}
	if f.Format == "" {
		f.Format = "uint16"
	}
	if f.BitsAllocated == 0 {
		f.BitsAllocated = formatBits(f.Format)
	}
	if f.BitsStored == 0 {
		f.BitsStored = f.BitsAllocated
	}
	if f.HighBit == 0 {
		f.HighBit = f.BitsStored - 1
	}
	return &f, nil
}

// LoadPresets reads a preset file from YAML.
func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	return &p, nil
}

// WindowLevels converts preset entries to render windows.
func (p *Presets) WindowLevels() []render.WindowLevel {
	out := make([]render.WindowLevel, 0, len(p.Presets))
	for _, w := range p.Presets {
		out = append(out, render.WindowLevel{
			Center:      w.Center,
			Width:       w.Width,
			Function:    w.Function,
			Explanation: w.Explanation,
		})
	}
	return out
}

func formatBits(format string) int {
	switch format {
	case "uint8":
		return 8
	case "uint16":
		return 16
	default:
		return 32
	}
}

// Descriptor builds the render descriptor for the sidecar.
func (f *FrameFile) Descriptor() *render.FrameDescriptor {
	d := &render.FrameDescriptor{
		Rows:                      f.Rows,
		Columns:                   f.Columns,
		NumberOfFrames:            1,
		BitsAllocated:             f.BitsAllocated,
		BitsStored:                f.BitsStored,
		HighBit:                   f.HighBit,
		PixelRepresentation:       f.PixelRepresentation,
		PhotometricInterpretation: f.Photometric,
		EmbeddedOverlays:          f.EmbeddedOverlays,
		PixelPaddingValue:         f.PixelPaddingValue,
		PixelPaddingRangeLimit:    f.PixelPaddingRangeLimit,
		RescaleSlope:              f.RescaleSlope,
		RescaleIntercept:          f.RescaleIntercept,
		VOILUTFunction:            f.VOILUTFunction,
	}
	for _, w := range f.Windows {
		d.Windows = append(d.Windows, render.WindowLevel{
			Center:      w.Center,
			Width:       w.Width,
			Function:    w.Function,
			Explanation: w.Explanation,
		})
	}
	return d
}

// ReadFrame loads the raw little-endian frame dump described by the
// sidecar.
func (f *FrameFile) ReadFrame(path string) (*render.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	n := f.Rows * f.Columns
	var format render.SampleFormat
	switch f.Format {
	case "uint8":
		format = render.FormatUint8
	case "uint16":
		format = render.FormatUint16
	case "int32":
		format = render.FormatInt32
	case "float32":
		format = render.FormatFloat32
	default:
		return nil, fmt.Errorf("unsupported sample format %q", f.Format)
	}
	want := n * format.Bits() / 8
	if len(data) < want {
		return nil, fmt.Errorf("frame truncated: have %d bytes, need %d", len(data), want)
	}

	frame := render.NewFrame(f.Rows, f.Columns, format)
	switch format {
	case render.FormatUint8:
		copy(frame.Bytes, data[:n])
	case render.FormatUint16:
		for i := 0; i < n; i++ {
			frame.Words[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
	case render.FormatInt32:
		for i := 0; i < n; i++ {
			frame.Ints[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case render.FormatFloat32:
		for i := 0; i < n; i++ {
			frame.Floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	}
	return frame, nil
}
