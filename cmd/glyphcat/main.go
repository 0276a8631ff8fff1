package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/esimov/glyphcat"
	"github.com/esimov/glyphcat/store"
	"github.com/esimov/glyphcat/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const helpBanner = `
┌─┐┬ ┬ ┬┌─┐┬ ┬┌─┐┌─┐┌┬┐
│ ┬│ └┬┘├─┘├─┤│  ├─┤ │
└─┘┴─┘┴ ┴  ┴ ┴└─┘┴ ┴ ┴

Glyph feature catalog.
    Version: %s
`

// Version indicates the current build version.
var Version string

var (
	// Global flags
	verbose bool
	cfgFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "glyphcat",
	Short: "Extract visual features from glyph images and publish them as a catalog",
	Long: `glyphcat analyzes a batch of transparent PNG glyphs (palette, edges, texture,
shape and a heuristic mood) and appends the records, together with the images,
to a git backed collection as a single commit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a batch of glyphs and publish it to the storage collection",
	Long: `Reads the glyphs from a local directory (--input) or from a folder of a source
collection (--source, --source-path), analyzes them and commits the images and
both catalogs to the storage collection. The collection is created when missing.

The access token used for remote collections is read from the environment
variable named by token_env (GLYPHCAT_TOKEN by default).`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file.png | url]",
	Short: "Print the catalog record of a single glyph",
	Args:  cobra.ExactArgs(1),
	RunE:  analyzeFile,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), helpBanner, Version)
	},
}

// runFlags holds the run command flags. They override the config file.
var runFlags struct {
	input        string
	source       string
	sourceBranch string
	sourcePath   string
	storage      string
	branch       string
	storageDir   string
	workers      int
	seed         int64
	dryRun       bool
}

// analyzeFlags holds the analyze command flags.
var analyzeFlags struct {
	storage string
	branch  string
	seed    int64
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")

	f := runCmd.Flags()
	f.StringVarP(&runFlags.input, "input", "i", "", "Local directory holding the glyphs")
	f.StringVar(&runFlags.source, "source", "", "Source collection (owner/name)")
	f.StringVar(&runFlags.sourceBranch, "source-branch", store.DefaultBranch, "Source collection branch")
	f.StringVar(&runFlags.sourcePath, "source-path", "", "Folder of the source collection holding the glyphs")
	f.StringVarP(&runFlags.storage, "storage", "s", "", "Storage collection (owner/name)")
	f.StringVarP(&runFlags.branch, "branch", "b", store.DefaultBranch, "Storage collection branch")
	f.StringVar(&runFlags.storageDir, "storage-dir", "", "Use a local bare repository as storage")
	f.IntVarP(&runFlags.workers, "workers", "w", glyphcat.DefaultWorkers, "Number of glyphs analyzed concurrently")
	f.Int64Var(&runFlags.seed, "seed", 0, "Seed making colors and ids reproducible (0 for random)")
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "Publish into a throwaway in-memory collection")

	af := analyzeCmd.Flags()
	af.StringVarP(&analyzeFlags.storage, "storage", "s", "", "Storage collection (owner/name) used to build the glyph URL")
	af.StringVarP(&analyzeFlags.branch, "branch", "b", store.DefaultBranch, "Storage collection branch")
	af.Int64Var(&analyzeFlags.seed, "seed", 0, "Seed making colors and ids reproducible (0 for random)")

	rootCmd.AddCommand(runCmd, analyzeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, utils.DecorateText(fmt.Sprintf("\n[✖] %v", err), utils.ErrorMessage))
		os.Exit(1)
	}
}

// analyzeFile prints the record of a single glyph as JSON, without storing it.
func analyzeFile(cmd *cobra.Command, args []string) error {
	src, name := args[0], filepath.Base(args[0])

	var (
		data []byte
		err  error
	)
	if utils.IsValidUrl(src) {
		data, err = utils.DownloadImage(cmd.Context(), src)
		if err != nil {
			return err
		}
		name = path.Base(strings.SplitN(src, "?", 2)[0])
	} else {
		data, err = os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	proc := &glyphcat.Processor{
		Seed:   analyzeFlags.seed,
		Logger: logger,
	}
	if analyzeFlags.storage != "" {
		owner, repo, err := parseRepo(analyzeFlags.storage)
		if err != nil {
			return err
		}
		proc.Location = store.Location{Owner: owner, Name: repo, Branch: analyzeFlags.branch}
	}

	res, err := proc.Analyze(name, data)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	out, err := json.MarshalIndent(res.Glyph, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
