package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esimov/glyphcat"
	"github.com/esimov/glyphcat/store"
	"github.com/esimov/glyphcat/utils"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// applyFlags copies the flags set on the command line over the config values.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input = runFlags.input
	}
	if f.Changed("source") {
		cfg.Source.Repo = runFlags.source
	}
	if f.Changed("source-branch") {
		cfg.Source.Branch = runFlags.sourceBranch
	}
	if f.Changed("source-path") {
		cfg.Source.Path = runFlags.sourcePath
	}
	if f.Changed("storage") {
		cfg.Storage.Repo = runFlags.storage
	}
	if f.Changed("branch") {
		cfg.Storage.Branch = runFlags.branch
	}
	if f.Changed("storage-dir") {
		cfg.Storage.Dir = runFlags.storageDir
	}
	if f.Changed("workers") {
		cfg.Workers = runFlags.workers
	}
	if f.Changed("seed") {
		cfg.Seed = runFlags.seed
	}
	if f.Changed("dry-run") {
		cfg.DryRun = runFlags.dryRun
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth := cfg.auth()
	opts, err := cfg.Storage.options(auth, cfg.DryRun)
	if err != nil {
		return err
	}
	dst, err := store.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("unable to open the storage collection: %w", err)
	}
	defer dst.Close()

	pub := &glyphcat.Publisher{Collection: dst, Logger: logger}
	if _, err := pub.Prepare(ctx); err != nil {
		return err
	}

	batch, mode, err := loadBatch(ctx, cfg, auth)
	if err != nil {
		return err
	}

	proc := &glyphcat.Processor{
		Workers:  cfg.Workers,
		Seed:     cfg.Seed,
		Location: dst.Location(),
		Logger:   logger,
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ GLYPHCAT", utils.StatusMessage),
		utils.DecorateText("is analyzing the glyphs...", utils.DefaultMessage))
	spinner := utils.NewSpinner(spinnerText, time.Millisecond*200, true)
	proc.OnProgress = func(done, total int) { spinner.Advance() }

	now := time.Now()
	spinner.Start(len(batch.Files))
	rep, err := proc.Execute(ctx, batch)
	spinner.Stop()
	if err != nil {
		return err
	}

	w := cmd.ErrOrStderr()
	if rep.Success() == 0 {
		printSkips(w, rep)
		return glyphcat.ErrNoGlyphs
	}

	out, err := pub.Publish(ctx, rep)
	if err != nil {
		return err
	}
	printSummary(w, rep, out, mode, dst.Location())
	fmt.Fprintf(w, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// loadBatch reads the input glyphs either from the local input directory or
// from the source collection. It also returns a description of the input.
func loadBatch(ctx context.Context, cfg *Config, auth transport.AuthMethod) (glyphcat.Batch, string, error) {
	if cfg.Input != "" {
		files, err := utils.ReadDir(cfg.Input)
		if err != nil {
			return glyphcat.Batch{}, "", err
		}
		return glyphcat.Batch{Files: files}, "local: " + cfg.Input, nil
	}

	opts, err := cfg.Source.options(auth, false)
	if err != nil {
		return glyphcat.Batch{}, "", err
	}
	src, err := store.Open(ctx, opts)
	if err != nil {
		return glyphcat.Batch{}, "", fmt.Errorf("unable to open the source collection: %w", err)
	}
	defer src.Close()

	res, err := store.Fetch(ctx, src, cfg.Source.Path, glyphcat.Validate)
	if err != nil {
		return glyphcat.Batch{}, "", fmt.Errorf("unable to list the source glyphs: %w", err)
	}

	prior := make([]glyphcat.Skip, 0, len(res.Failures))
	for _, f := range res.Failures {
		reason := glyphcat.SkipFetchError
		if f.Invalid {
			reason = glyphcat.SkipInvalidImage
		}
		prior = append(prior, glyphcat.Skip{Reason: reason, Filename: f.Name})
		logger.Debug("source glyph rejected", zap.String("file", f.Name), zap.Error(f.Err))
	}

	mode := fmt.Sprintf("repository: %s@%s:/%s", src.Location(), cfg.Source.Branch, cfg.Source.Path)
	return glyphcat.Batch{Files: res.Files, InputCount: res.Count, Prior: prior}, mode, nil
}

// printSummary displays the outcome of the run.
func printSummary(w io.Writer, rep *glyphcat.Report, out *glyphcat.Outcome, mode string, loc store.Location) {
	library := fmt.Sprintf("library: %d glyphs in total", out.After)
	catalogs := "catalogs: 2 generated"
	if out.Kind == glyphcat.KindExpanded {
		library = fmt.Sprintf("library: %d + %d = %d glyphs in total", out.Before, out.Added, out.After)
		catalogs = "catalogs: 2 updated"
	}

	fmt.Fprintf(w, "\n%s\n", utils.DecorateText("⟫⟫⟫ [COMPLETE] STREAM.SUCCESSFUL", utils.SuccessMessage))
	fmt.Fprintf(w, "    ├── total.input: %d\n", rep.Total)
	fmt.Fprintf(w, "    ├── status.success: %s\n", utils.DecorateText(fmt.Sprint(rep.Success()), utils.SuccessMessage))
	fmt.Fprintf(w, "    ├── status.skipped: %d\n", rep.Skipped())
	fmt.Fprintf(w, "    ├── commit.type: %s (%s)\n", out.Kind, out.Commit[:7])
	fmt.Fprintf(w, "    │   ├── %s\n", library)
	fmt.Fprintf(w, "    │   └── %s\n", catalogs)
	fmt.Fprintf(w, "    ├── input.mode: %s\n", mode)
	fmt.Fprintf(w, "    └── storage.location: %s@%s\n", loc, loc.Branch)
	printSkips(w, rep)
}

// printSkips lists the inputs which produced no record.
func printSkips(w io.Writer, rep *glyphcat.Report) {
	if rep.Skipped() == 0 {
		return
	}
	fmt.Fprintf(w, "\n    %s\n", utils.DecorateText(fmt.Sprintf("SKIPPED %d FILE(S):", rep.Skipped()), utils.ErrorMessage))
	for _, line := range rep.Summary() {
		fmt.Fprintf(w, "        >> %s\n", line)
	}
}
