package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	versionpkg "github.com/fairfund/fairfund/internal/version"
)

// Build information, set at link time via -ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

const (
	releaseOwner = "fairfund"
	releaseRepo  = "fairfund"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  runVersion,
}

// versionInfo is the JSON shape for version output.
type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	Latest  string `json:"latest,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	ctx := globalContext()

	info := versionInfo{
		Version: buildVersion,
		Commit:  buildCommit,
		Date:    buildDate,
		Go:      runtime.Version(),
	}

	if versionCheck {
		release, err := versionpkg.GetLatestRelease(cmd.Context(), releaseOwner, releaseRepo)
		if err != nil {
			ctx.Logger.Debug("release check failed", zap.Error(err))
		} else {
			info.Latest = release.TagName
		}
	}

	if ctx.Formatter.IsJSON() {
		return ctx.Formatter.Print(info)
	}

	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(w, "fairfund %s (commit %s, built %s, %s)\n",
		info.Version, info.Commit, info.Date, info.Go); err != nil {
		return err
	}
	if info.Latest != "" {
		if versionpkg.CompareVersions(info.Latest, info.Version) > 0 {
			_, err := fmt.Fprintf(w, "A newer release is available: %s\n", info.Latest)
			return err
		}
		_, err := fmt.Fprintln(w, "You are on the latest release.")
		return err
	}
	return nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for the latest release")
	rootCmd.AddCommand(versionCmd)
}
