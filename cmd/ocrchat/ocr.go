package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	ocrchat "github.com/kailas-cloud/ocrchat/pkg/sdk"
)

func newOCRCmd(flags *clientFlags) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "ocr <file>",
		Short: "Extract the text of an image, PDF or text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.newClient()
			if err != nil {
				return err
			}
			path, err := normalizePath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			ext, err := client.Ingest(cmd.Context(), ocrchat.Document{
				Filename: filepath.Base(path),
				Kind:     kind,
				Data:     data,
			}, flags.model)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ext.Text)
			if ext.Warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s (limit %d chars for %s)\n",
					ext.Warning, client.LimitFor(flags.model), flags.model)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "document kind: text, pdf or image (default: from extension)")
	return cmd
}

func newModelsCmd(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the chat provider's models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := flags.newClient()
			if err != nil {
				return err
			}
			models, err := client.Models(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range models {
				line := m.Name
				if m.ParameterSize != "" {
					line += "\t" + m.ParameterSize
				}
				fmt.Fprintf(out, "%s\t%d chars\n", line, client.LimitFor(m.Name))
			}
			return nil
		},
	}
}
