package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tubegrab/internal/config"
	"tubegrab/internal/model"
)

const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitMissingDep    = 2
	ExitDownloadError = 3
	ExitMergeError    = 4
	ExitResolveError  = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

type ctxKey string

const optionsKey ctxKey = "options"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tubegrab",
		Short: "Interactive video downloader",
		Long: "tubegrab asks for a video URL, lists the available formats and downloads what you pick. " +
			"'separate' fetches the video and audio streams apart and merges them with ffmpeg; " +
			"'single' fetches one already-muxed file.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadOptions,
	}

	bindPersistentFlags(root.PersistentFlags())
	_ = root.RegisterFlagCompletionFunc("resolver", completeResolver)

	if err := config.Init(root); err != nil {
		logrus.WithError(err).Warn("config file ignored")
	}

	root.AddCommand(newSeparateCmd())
	root.AddCommand(newSingleCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// bindPersistentFlags declares the flags shared by every subcommand. Each
// one is bound to the viper key of the same name in config.Init.
func bindPersistentFlags(fs *pflag.FlagSet) {
	fs.StringP("out-dir", "o", "", "Output directory (default: downloads next to the executable)")
	fs.BoolP("verbose", "v", false, "Debug logging and ffmpeg output")
	fs.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.String("resolver", string(model.ResolverYouTube), "Format source: youtube or ytdlp")
}

func completeResolver(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(model.ResolverYouTube) + "\tin-process YouTube client",
		string(model.ResolverYTDLP) + "\tyt-dlp on PATH",
	}, cobra.ShellCompDirectiveNoFileComp
}

// loadOptions resolves the effective options once and stores them on the
// command context for RunE.
func loadOptions(cmd *cobra.Command, _ []string) error {
	opts, err := config.Load(viper.GetViper())
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if err := setupLogging(opts); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cmd.SetContext(context.WithValue(cmd.Context(), optionsKey, opts))
	return nil
}

func optionsFrom(cmd *cobra.Command) (model.CLIOptions, error) {
	if v, ok := cmd.Context().Value(optionsKey).(model.CLIOptions); ok {
		return v, nil
	}
	return model.CLIOptions{}, fmt.Errorf("options not loaded")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}
