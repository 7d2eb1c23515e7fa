package cli

import (
	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var (
	keywordsSnapshot int64
	keywordsLimit    int
	keywordsSuggest  string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Rank keyword performance across a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.KeywordOptions{
			SnapshotID: keywordsSnapshot,
			Limit:      keywordsLimit,
			Suggest:    keywordsSuggest,
		}

		return getApp().Keywords(cmd.Context(), opts)
	},
}

func init() {
	keywordsCmd.Flags().Int64Var(&keywordsSnapshot, "snapshot", 0, "Snapshot id (default: latest)")
	keywordsCmd.Flags().IntVar(&keywordsLimit, "limit", 30, "Number of keywords to display")
	keywordsCmd.Flags().StringVar(&keywordsSuggest, "suggest", "", "Print related keywords for this term instead")
}
