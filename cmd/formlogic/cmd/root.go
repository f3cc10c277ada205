package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/solatis/formlogic/internal/core/config"
	"github.com/solatis/formlogic/internal/core/logging"
	"github.com/solatis/formlogic/internal/rules"
)

const Version = "0.1.0"

// rootOptions carries the persistent flags and the state PersistentPreRunE
// derives from them. Subcommands read cfg and logger after it has run.
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCommand builds the formlogic command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "formlogic",
		Short: "Conditional logic engine for dynamic forms",
		Long: `formlogic evaluates the conditional rules of a form document (fields, rules
and optional initial data) and reports the resulting field states.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")

	rootCmd.AddCommand(
		newValidateCmd(opts),
		newEvalCmd(opts),
		newOrderCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override environment and config file
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = strings.ToLower(o.logLevel)
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = strings.ToLower(o.logFormat)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	if o.configFile != "" {
		logger.Debug().Str("path", o.configFile).Msg("using config file")
	}
	return nil
}

func (o *rootOptions) engineOptions() []rules.Option {
	return []rules.Option{
		rules.WithLogger(o.logger),
		rules.WithFormulaCostLimit(o.cfg.Engine.FormulaCostLimit),
		rules.WithRegexCacheSize(o.cfg.Engine.RegexCacheSize),
		rules.WithMaxPatternLength(o.cfg.Engine.MaxPatternLength),
	}
}
