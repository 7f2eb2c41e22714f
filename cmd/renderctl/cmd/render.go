package cmd

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmrender.go/pkg/config"
	"github.com/jpfielding/dcmrender.go/pkg/render"
)

// NewRenderCmd renders a raw frame dump to an 8-bit PNG.
func NewRenderCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render a raw frame to PNG",
		Long:  "render applies the full grayscale pipeline (or modality rescale only with --raw) to a raw frame dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			framePath, _ := cmd.Flags().GetString("input")
			sidecarPath, _ := cmd.Flags().GetString("descriptor")
			outPath, _ := cmd.Flags().GetString("output")

			ff, err := config.LoadFrameFile(sidecarPath)
			if err != nil {
				return err
			}
			frame, err := ff.ReadFrame(framePath)
			if err != nil {
				return err
			}
			desc := ff.Descriptor()

			params, err := windowParams(cmd, desc)
			if err != nil {
				return err
			}

			sess := render.NewSession()
			var out *render.Frame
			if rawOnly, _ := cmd.Flags().GetBool("raw"); rawOnly {
				out, err = sess.RawRender(frame, desc, params, 0)
			} else {
				out, err = sess.DefaultRender(frame, desc, params, 0)
			}
			if err != nil {
				return err
			}

			img := toImage(out)
			if preview, _ := cmd.Flags().GetUint("preview"); preview > 0 {
				img = resize.Thumbnail(preview, preview, img, resize.Lanczos3)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			return png.Encode(f, img)
		},
	}
	pf := cmd.Flags()
	pf.StringP("input", "i", "", "raw frame dump path")
	pf.StringP("descriptor", "d", "", "YAML sidecar describing the frame")
	pf.StringP("output", "o", "out.png", "output PNG path")
	pf.Float64P("window", "w", 0, "window width override")
	pf.Float64P("level", "l", 0, "window center override")
	pf.String("preset", "", "named preset to apply (e.g. BONE)")
	pf.String("presets-file", "", "YAML preset file merged with the built-in CT presets")
	pf.String("function", "", "VOI function (LINEAR, LINEAR_EXACT, SIGMOID)")
	pf.Bool("raw", false, "apply overlay masking and modality rescale only")
	pf.Bool("inverse", false, "invert the display output")
	pf.Bool("fill", false, "extend the VOI domain to the full allocated bit range")
	pf.Uint("preview", 0, "downscale output to fit the given square size")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("descriptor")
	return cmd
}

// windowParams resolves the window override from flags and preset files.
func windowParams(cmd *cobra.Command, desc *render.FrameDescriptor) (*render.WindowParams, error) {
	params := &render.WindowParams{}
	params.Inverse, _ = cmd.Flags().GetBool("inverse")
	params.FillOutsideLutRange, _ = cmd.Flags().GetBool("fill")

	width, _ := cmd.Flags().GetFloat64("window")
	level, _ := cmd.Flags().GetFloat64("level")
	function, _ := cmd.Flags().GetString("function")
	preset, _ := cmd.Flags().GetString("preset")

	switch {
	case width > 0:
		params.Window = &render.WindowLevel{Center: level, Width: width, Function: function}
	case preset != "":
		available := append(render.DefaultCTPresets(), desc.Windows...)
		if path, _ := cmd.Flags().GetString("presets-file"); path != "" {
			loaded, err := config.LoadPresets(path)
			if err != nil {
				return nil, err
			}
			available = append(available, loaded.WindowLevels()...)
		}
		w, ok := render.FindPreset(available, preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		params.Window = &w
	}
	return params, nil
}

// toImage converts a rendered frame to a grayscale image. Wide formats
// (raw renders of int32/float frames) are min/max normalized into 16 bits.
func toImage(f *render.Frame) image.Image {
	switch f.Format {
	case render.FormatUint8:
		img := image.NewGray(image.Rect(0, 0, f.Columns, f.Rows))
		copy(img.Pix, f.Bytes)
		return img
	case render.FormatUint16:
		img := image.NewGray16(image.Rect(0, 0, f.Columns, f.Rows))
		for i, v := range f.Words {
			img.Pix[i*2] = uint8(v >> 8)
			img.Pix[i*2+1] = uint8(v)
		}
		return img
	}
	min, max := f.FloatSample(0), f.FloatSample(0)
	for i := 1; i < f.Len(); i++ {
		v := f.FloatSample(i)
		if v < min {
			min = v
		} else if v > max {
			max = v
		}
	}
	if max == min {
		max = min + 1
	}
	img := image.NewGray16(image.Rect(0, 0, f.Columns, f.Rows))
	for i := 0; i < f.Len(); i++ {
		v := uint16((f.FloatSample(i) - min) / (max - min) * 65535)
		img.Pix[i*2] = uint8(v >> 8)
		img.Pix[i*2+1] = uint8(v)
	}
	return img
}
