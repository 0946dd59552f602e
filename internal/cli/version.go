package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X weighttracker/internal/cli.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// versionSummary returns the version with a short commit and build date.
func versionSummary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	var extra []string
	if Commit != "" {
		extra = append(extra, "commit="+Commit[:min(7, len(Commit))])
	}
	if Date != "" {
		extra = append(extra, "date="+Date)
	}
	if len(extra) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(extra, ", "))
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "weighttracker %s\n", versionSummary())
				return err
			}
			return encodeJSON(cmd.OutOrStdout(), map[string]any{
				"version": Version,
				"commit":  Commit,
				"date":    Date,
				"go":      runtime.Version(),
				"go_os":   runtime.GOOS,
				"go_arch": runtime.GOARCH,
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detailed JSON version info")
	return cmd
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
