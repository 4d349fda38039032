package cmd

import (
	"fmt"
	"io"

	"github.com/kozaktomas/lab-kiosk/internal/config"
	"github.com/kozaktomas/lab-kiosk/internal/constants"
	"github.com/spf13/cobra"
)

// Release metadata, injected with -ldflags -X at build time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lab-kiosk build and matching defaults",
	Long: `Print the lab-kiosk release, the commit it was built from and the
embedding model and match threshold the kiosk API will use.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), loadConfig(cmd))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "lab-kiosk %s (commit %s, built %s)\n", Version, CommitSHA, BuildDate)
	fmt.Fprintf(w, "  Embedding model:  %s\n", cfg.Embedding.Model)
	fmt.Fprintf(w, "  Match threshold:  %.2f\n", cfg.MatchThreshold(constants.DefaultMatchThreshold))
}
