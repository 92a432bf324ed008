package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tubegrab/internal/downloader"
	"tubegrab/internal/merger"
	"tubegrab/internal/model"
	"tubegrab/internal/pipeline"
	"tubegrab/internal/progress"
	"tubegrab/internal/resolver"
	"tubegrab/internal/ui"
	"tubegrab/internal/util"
	"tubegrab/internal/util/deps"
)

func newSeparateCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "separate",
		Short:         "Download video and audio streams separately and merge them with ffmpeg",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMode(cmd, model.ModeSeparate)
		},
	}
}

func newSingleCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "single",
		Short:         "Download one file that already contains video and audio",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMode(cmd, model.ModeSingle)
		},
	}
}

func runMode(cmd *cobra.Command, mode model.Mode) error {
	opts, err := optionsFrom(cmd)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	log := runLogger(mode)

	if mode == model.ModeSeparate {
		if _, err := deps.FindFFmpeg(); err != nil {
			log.WithError(err).Error("ffmpeg is required for separate mode")
			return &ExitError{Code: ExitMissingDep, Err: err}
		}
	}
	if opts.Resolver == model.ResolverYTDLP {
		if _, err := deps.FindYTDLP(); err != nil {
			log.WithError(err).Error("yt-dlp is required for the ytdlp resolver")
			return &ExitError{Code: ExitMissingDep, Err: err}
		}
	}
	if err := util.EnsureDir(opts.OutDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %w", err)}
	}

	res, err := resolver.New(opts.Resolver, resolver.Options{
		HTTPTimeout: time.Duration(opts.HTTPTimeout) * time.Second,
		Verbose:     opts.Verbose,
	})
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	asker, reporter := interaction(log)
	svcOpts := []pipeline.Option{
		pipeline.WithResolver(res),
		pipeline.WithFetcher(downloader.New(res, reporter, log)),
		pipeline.WithAsker(asker),
		pipeline.WithOutDir(opts.OutDir),
		pipeline.WithLogger(log),
	}
	if mode == model.ModeSeparate {
		muxer := &merger.FFmpegMuxer{
			AudioCodec: opts.AudioCodec,
			AudioKbps:  opts.AudioKbps,
			Verbose:    opts.Verbose,
			Log:        log,
		}
		svcOpts = append(svcOpts, pipeline.WithMerger(merger.New(muxer, reporter, log)))
	}
	svc, err := pipeline.NewService(svcOpts...)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	log.WithField("out_dir", opts.OutDir).Debug("starting")
	var out model.OutputFile
	switch mode {
	case model.ModeSeparate:
		out, err = svc.RunSeparate(cmd.Context())
	default:
		out, err = svc.RunSingle(cmd.Context())
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrNoFormats) {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching formats.")
			return nil
		}
		if errors.Is(err, ui.ErrAborted) {
			log.Info("aborted")
			return nil
		}
		log.WithError(err).Error("run failed")
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}

	log.WithFields(logrus.Fields{"path": out.Path, "bytes": out.Bytes}).Info("saved")
	fmt.Fprintln(cmd.OutOrStdout(), out.Path)
	return nil
}

// interaction picks terminal prompts and a redrawn bar when stdin and
// stdout are terminals, and line prompts with log progress otherwise.
func interaction(log *logrus.Entry) (ui.Asker, progress.Reporter) {
	if isTerminal() {
		return ui.NewTeaAsker(), ui.NewBar(os.Stdout)
	}
	return ui.NewLineAsker(os.Stdin, os.Stdout), progress.NewLogReporter(log)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// exitCodeFor maps a run error to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil, errors.Is(err, pipeline.ErrNoFormats):
		return ExitOK
	case errors.Is(err, deps.ErrMissing):
		return ExitMissingDep
	case errors.Is(err, pipeline.ErrResolve):
		return ExitResolveError
	case errors.Is(err, pipeline.ErrMerge), errors.Is(err, merger.ErrMissingInput):
		return ExitMergeError
	case errors.Is(err, pipeline.ErrFetch):
		return ExitDownloadError
	}
	return ExitCLIError
}
