package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"overlaytv/internal/models"
	"overlaytv/internal/timeline"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var projectPath, token string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List a project's overlays",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.loadProject(cmd.Context(), projectPath, token)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Video: %s\n", p.VideoURL)
			fmt.Fprintln(w, timeline.CountLabel(len(p.Annotations)))
			if len(p.Annotations) == 0 {
				return nil
			}
			fmt.Fprintln(w, renderTable(
				[]string{"#", "ID", "Type", "Start", "End", "Content"},
				annotationRows(p.Annotations),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project file (YAML or JSON)")
	cmd.Flags().StringVar(&token, "token", "", "Share token or link")
	return cmd
}

func annotationRows(list []models.Annotation) [][]string {
	rows := make([][]string, 0, len(list))
	for i, a := range list {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.ID,
			string(a.Type),
			timeline.FormatTime(a.StartTime),
			timeline.FormatTime(a.EndTime),
			summarize(a),
		})
	}
	return rows
}

func summarize(a models.Annotation) string {
	if d, ok := a.Drawing(); ok {
		points := 0
		for _, p := range d.Paths {
			points += len(p.Points)
		}
		return fmt.Sprintf("%d paths, %d points", len(d.Paths), points)
	}
	if t, ok := a.Text(); ok {
		return strconv.Quote(t.Text)
	}
	return "-"
}
