package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tubegrab/internal/dirs"
	"tubegrab/internal/model"
)

// Defaults applied when neither flags, env nor the config file set a key.
const (
	DefaultLogLevel   = "info"
	DefaultAudioCodec = "aac"
	DefaultAudioKbps  = 128
)

// Init wires Viper with config paths, env, defaults, and flag bindings.
// A missing config file is not an error; a malformed one is.
func Init(root *cobra.Command) error {
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: TUBEGRAB_*
	viper.SetEnvPrefix("TUBEGRAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	_ = viper.BindPFlag("out_dir", root.PersistentFlags().Lookup("out-dir"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("resolver", root.PersistentFlags().Lookup("resolver"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("resolver", string(model.ResolverYouTube))
	v.SetDefault("http_timeout", 0)
	v.SetDefault("audio_codec", DefaultAudioCodec)
	v.SetDefault("audio_kbps", DefaultAudioKbps)
}

// Load resolves the effective options from v. An empty out_dir falls back
// to the "downloads" directory next to the executable.
func Load(v *viper.Viper) (model.CLIOptions, error) {
	opts := model.CLIOptions{
		OutDir:      strings.TrimSpace(v.GetString("out_dir")),
		Verbose:     v.GetBool("verbose"),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		Resolver:    model.ResolverKind(strings.ToLower(strings.TrimSpace(v.GetString("resolver")))),
		HTTPTimeout: v.GetInt("http_timeout"),
		AudioCodec:  strings.TrimSpace(v.GetString("audio_codec")),
		AudioKbps:   v.GetInt("audio_kbps"),
	}

	if opts.OutDir == "" {
		d, err := dirs.DefaultOutputDir()
		if err != nil {
			return opts, err
		}
		opts.OutDir = d
	}
	if opts.LogLevel == "" {
		opts.LogLevel = DefaultLogLevel
	}
	if opts.Resolver == "" {
		opts.Resolver = model.ResolverYouTube
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = DefaultAudioCodec
	}

	switch opts.Resolver {
	case model.ResolverYouTube, model.ResolverYTDLP:
	default:
		return opts, fmt.Errorf("invalid resolver %q (want youtube or ytdlp)", opts.Resolver)
	}
	if opts.HTTPTimeout < 0 {
		return opts, fmt.Errorf("invalid http_timeout %d", opts.HTTPTimeout)
	}
	return opts, nil
}
