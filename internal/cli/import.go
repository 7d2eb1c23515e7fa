package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var (
	importFile   string
	importNotify bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse an export file and store it as a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" {
			return fmt.Errorf("--file must be provided")
		}

		opts := app.ImportOptions{
			Path:   importFile,
			Notify: importNotify,
		}

		return getApp().Import(cmd.Context(), opts)
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Path to the marketplace export file")
	importCmd.Flags().BoolVar(&importNotify, "notify", false, "Send a regression digest after import")
}
