package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tubegrab/internal/model"
	"tubegrab/internal/util"
	"tubegrab/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, yt-dlp)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFrom(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return doctor(cmd.Context(), cmd, util.NewDefaultRunner(), opts)
		},
	}
}

func doctor(ctx context.Context, cmd *cobra.Command, runner util.CmdRunner, opts model.CLIOptions) error {
	out := cmd.OutOrStdout()

	ff, ferr := deps.FindFFmpeg()
	switch {
	case ferr == nil:
		fmt.Fprintf(out, "FFmpeg:  %s\n", ff)
		if res, err := runner.Run(ctx, util.CmdSpec{Path: ff, Args: []string{"-version"}, Verbose: opts.Verbose}); err == nil {
			fmt.Fprintf(out, "         %s\n", util.FirstLine(res.Stdout))
		}
	default:
		fmt.Fprintln(out, "FFmpeg:  not found (needed for separate mode)")
	}

	yt, yerr := deps.FindYTDLP()
	switch {
	case yerr == nil:
		fmt.Fprintf(out, "yt-dlp:  %s\n", yt)
	case opts.Resolver == model.ResolverYTDLP:
		return &ExitError{Code: ExitMissingDep, Err: yerr}
	default:
		fmt.Fprintln(out, "yt-dlp:  not found (only needed for --resolver ytdlp)")
	}

	fmt.Fprintf(out, "Resolver: %s\n", opts.Resolver)
	fmt.Fprintf(out, "Output:   %s\n", opts.OutDir)
	return nil
}
