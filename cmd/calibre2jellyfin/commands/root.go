package commands

import (
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shawn61cp/calibre2jellyfin/config"
	"github.com/shawn61cp/calibre2jellyfin/export"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
	opts       export.Options
)

var rootCmd = &cobra.Command{
	Use:   "calibre2jellyfin",
	Short: "Construct a Jellyfin ebook library from a Calibre library",
	Long: `calibre2jellyfin mirrors selected books from a Calibre library into a
Jellyfin-compatible folder tree of symlinks plus a (possibly series-mangled)
copy of each book's .opf metadata file. Which books are selected and how the
destination tree is nested is driven by [Construct...] sections in the
configuration file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&opts.UpdateAllMetadata, "update-all-metadata", false,
		"force a one-time update of all metadata files, for instance when "+
			"metadata mangling options have changed (normally metadata files are "+
			"only updated when missing or out-of-date)")
	rootCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false,
		"print planned destination paths without making any filesystem changes")
	rootCmd.Flags().BoolVar(&opts.ListOnly, "list", false,
		"print a sorted tab-separated selection report instead of exporting")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"emit per-book diagnostic dumps")
	rootCmd.Flags().StringVar(&configPath, "config", "",
		"configuration file (default ~/.config/calibre2jellyfin.cfg)")
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	constructs, err := config.Load(path)
	if err != nil {
		return err
	}
	log.Infof("using configuration %q", path)

	var report []string
	for _, construct := range constructs {
		exporter := export.NewExporter(construct, opts)
		if err := exporter.Run(); err != nil {
			log.Warnf("construct [%s]: %v", construct.Name, err)
			continue
		}
		report = append(report, exporter.ReportLines()...)
	}

	if opts.ListOnly {
		sort.Strings(report)
		for _, line := range report {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	return nil
}

// Execute runs the root command. Configuration and setup failures exit
// non-zero; per-book problems are warnings and do not affect the exit
// status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
