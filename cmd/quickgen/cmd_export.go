package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/quickgen/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "html", "output format: html or markdown")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to <workspace-name><ext>)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <workspace>",
	Short: "Export a workspace's latest generated page to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		ws, err := resolveWorkspace(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		artifact, err := store.LatestArtifact(cmd.Context(), ws.ID)
		if err != nil {
			return fmt.Errorf("load latest artifact: %w", err)
		}
		if artifact == nil {
			return fmt.Errorf("workspace %s has no generated page yet", ws.Name)
		}

		format := export.Format(exportFormat)
		data, err := export.Render(artifact, format)
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = ws.Name + format.Ext()
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stdout, "Exported %s to %s\n", ws.Name, out)
		return nil
	},
}
