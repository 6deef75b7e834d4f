package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"overlaytv/internal/share"
)

func newShareCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode share tokens",
	}
	cmd.AddCommand(newShareEncodeCommand(ctx))
	cmd.AddCommand(newShareDecodeCommand(ctx))
	cmd.AddCommand(newShareQRCommand(ctx))
	return cmd
}

func newShareEncodeCommand(ctx *commandContext) *cobra.Command {
	var projectPath string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Save a project and print its share token and link",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProjectFile(projectPath)
			if err != nil {
				return err
			}
			token, err := ctx.transport().Save(cmd.Context(), p)
			if err != nil {
				return err
			}
			link, err := share.Link(ctx.shareBase, token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Project file (YAML or JSON)")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newShareDecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decode TOKEN|LINK",
		Short: "Print the project a token or link holds as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.loadProject(cmd.Context(), "", args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newShareQRCommand(ctx *commandContext) *cobra.Command {
	var (
		out  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "qr TOKEN|LINK",
		Short: "Write a QR code PNG of a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := share.TokenFromLink(args[0])
			if err != nil {
				return err
			}
			link, err := share.Link(ctx.shareBase, token)
			if err != nil {
				return err
			}
			png, err := share.QRCode(link, size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "share.png", "Output PNG path")
	cmd.Flags().IntVar(&size, "size", 256, "Image side in pixels")
	return cmd
}
