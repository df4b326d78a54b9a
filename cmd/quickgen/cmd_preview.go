package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/user/quickgen/internal/preview"
)

var previewAddr string

func init() {
	previewCmd.Flags().StringVar(&previewAddr, "addr", "", "listen address (defaults to preview.addr from config)")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve generated pages in a local browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		addr := previewAddr
		if addr == "" {
			addr = cfg.Preview.Addr
		}

		slog.Info("preview server started", "addr", addr)
		fmt.Printf("Serving previews on http://%s\n", addr)
		return http.ListenAndServe(addr, preview.NewServer(store))
	},
}
