package cli

import (
	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ServeOptions{
			Addr: serveAddr,
		}

		return getApp().Serve(cmd.Context(), opts)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overriding config")
}
