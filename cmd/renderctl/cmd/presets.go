package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmrender.go/pkg/config"
	"github.com/jpfielding/dcmrender.go/pkg/render"
)

// NewPresetsCmd lists the effective window/level presets for a frame.
func NewPresetsCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list window/level presets for a frame",
		Long:  "presets lists the synthesized auto window followed by the descriptor's configured windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			framePath, _ := cmd.Flags().GetString("input")
			sidecarPath, _ := cmd.Flags().GetString("descriptor")

			ff, err := config.LoadFrameFile(sidecarPath)
			if err != nil {
				return err
			}
			frame, err := ff.ReadFrame(framePath)
			if err != nil {
				return err
			}
			desc := ff.Descriptor()

			sess := render.NewSession()
			presets := sess.PresetList(frame, desc, nil, 0)

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				for i, w := range presets {
					fmt.Printf("%d\t%s\tC=%g W=%g %s\n", i, w.Explanation, w.Center, w.Width, w.Shape())
				}
			default:
				j, _ := json.Marshal(presets)
				os.Stdout.Write(j)
			}
			return nil
		},
	}
	pf := cmd.Flags()
	pf.StringP("input", "i", "", "raw frame dump path")
	pf.StringP("descriptor", "d", "", "YAML sidecar describing the frame")
	pf.StringP("format", "f", "json", "output format (text|json)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("descriptor")
	return cmd
}
