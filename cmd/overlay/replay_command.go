package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"overlaytv/internal/editor"
	"overlaytv/internal/fonts"
	"overlaytv/internal/logging"
	"overlaytv/internal/render"
	"overlaytv/internal/replay"
	"overlaytv/internal/timeline"
)

func newReplayCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptPath string
		out        string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Play a scripted editing session and export its frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := replay.LoadScript(scriptPath)
			if err != nil {
				return err
			}

			faces := fonts.NewRegistry()
			defer faces.Close()
			e := editor.New(script.NewPlayer(), render.NewRenderer(faces, ctx.log()),
				editor.WithLogger(logging.NewComponentLogger(ctx.log(), "editor")))
			defer e.Close()
			script.Run(e)

			project := e.Project()
			frames, err := replay.Export(cmd.Context(), project, script.Frames, replay.ExportOptions{
				Dir:      out,
				Viewport: script.Viewport.Geometry(),
				Workers:  workers,
				Logger:   logging.NewComponentLogger(ctx.log(), "export"),
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, timeline.CountLabel(len(project.Annotations)))
			for _, f := range frames {
				fmt.Fprintf(w, "%s\t%s\n", timeline.FormatTime(f.Time), f.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Replay script (YAML)")
	cmd.Flags().StringVarP(&out, "out", "o", "frames", "Output directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel render workers (0 = CPUs)")
	cmd.MarkFlagRequired("script")
	return cmd
}
