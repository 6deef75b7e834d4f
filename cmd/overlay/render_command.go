package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"overlaytv/internal/fonts"
	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
	"overlaytv/internal/render"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		projectPath string
		token       string
		at          float64
		width       float64
		height      float64
		scale       float64
		out         string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the overlay layer at one playback time to a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 || scale <= 0 {
				return fmt.Errorf("width, height and scale must be positive")
			}
			p, err := ctx.loadProject(cmd.Context(), projectPath, token)
			if err != nil {
				return err
			}

			var visible []models.Annotation
			for _, a := range p.Annotations {
				if a.VisibleAt(at) {
					visible = append(visible, a)
				}
			}

			faces := fonts.NewRegistry()
			defer faces.Close()
			r := render.NewRenderer(faces, ctx.log())

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			sc := render.Scene{
				Viewport:    geometry.Viewport{Width: width, Height: height, PixelRatio: scale},
				Annotations: visible,
			}
			if err := r.WritePNG(f, sc); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			ctx.log().Info("rendered frame", "time", at, "visible", len(visible), "out", out)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d overlays visible at %vs\n", out, len(visible), len(p.Annotations), at)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project file (YAML or JSON)")
	cmd.Flags().StringVar(&token, "token", "", "Share token or link")
	cmd.Flags().Float64VarP(&at, "time", "t", 0, "Playback time in seconds")
	cmd.Flags().Float64Var(&width, "width", 800, "Viewport width in CSS pixels")
	cmd.Flags().Float64Var(&height, "height", 450, "Viewport height in CSS pixels")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Device pixel ratio")
	cmd.Flags().StringVarP(&out, "out", "o", "overlay.png", "Output PNG path")
	return cmd
}
