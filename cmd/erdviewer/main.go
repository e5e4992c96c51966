package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tordrt/erdviewer"
	"github.com/tordrt/erdviewer/internal/config"
	"github.com/tordrt/erdviewer/internal/formatter"
	"github.com/tordrt/erdviewer/internal/logging"
	"github.com/tordrt/erdviewer/internal/server"
)

const defaultOutputDir = "output"

// options holds the flag values of the root command
type options struct {
	configPath string
	url        string
	database   string
	schemaName string
	theme      string
	outputDir  string
	outputFile string
	format     string
	mode       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "erdviewer",
		Short: "Render a database schema as DDL and entity-relationship diagrams",
		Long: `erdviewer reads table, column and key metadata from a Snowflake, PostgreSQL,
MySQL or SQLite catalog (or an offline YAML fixture) and writes a DDL script
plus Graphviz diagrams, with HTML pages that render them in the browser.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultFileName, "Profile file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	cmd.Flags().StringVar(&opts.url, "url", "", "Database URL (snowflake://, postgres://, mysql://, sqlite:// or fixture://)")
	cmd.Flags().StringVar(&opts.database, "database", "", "Database name (default: from the URL)")
	cmd.Flags().StringVarP(&opts.schemaName, "schema", "s", "", "Schema name (default: from the URL)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", fmt.Sprintf("Diagram theme (default: %s)", formatter.DefaultTheme))
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "d", "", "Write every artifact to this directory")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file for a single artifact (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", erdviewer.FormatSQL, "Single artifact format: sql, dot or html")
	cmd.Flags().StringVar(&opts.mode, "mode", "columns", "Diagram mode: relationships, columns or full")

	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

func newServeCmd(root *options) *cobra.Command {
	var dir, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated diagrams over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd, root.verbose)

			cfg, err := loadConfig(cmd, root.configPath)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = firstNonEmpty(cfg.OutputDir, defaultOutputDir)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(dir, addr, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to serve (default: output_dir from the profile, else output)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	logger := newLogger(cmd, opts.verbose)

	cfg, err := loadConfig(cmd, opts.configPath)
	if err != nil {
		return err
	}
	settings := merge(cfg, opts)

	if settings.url == "" {
		return fmt.Errorf("a database URL is required (--url or connection.url in %s)", opts.configPath)
	}
	if settings.outputDir != "" && opts.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	if settings.theme != "" && !formatter.IsTheme(settings.theme) {
		logger.Verbose("unknown theme %q, using %s", settings.theme, formatter.DefaultTheme)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := erdviewer.ExtractModel(ctx, settings.url, &erdviewer.Options{
		Database:   settings.database,
		SchemaName: settings.schemaName,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if settings.outputDir != "" {
		if err := erdviewer.FormatModel(m, &erdviewer.OutputOptions{OutputDir: settings.outputDir, Theme: settings.theme}); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("Wrote %d tables to %s", m.Len(), settings.outputDir)

		if !opts.verbose {
			return nil
		}
		// echo the script and the full diagram
		for _, format := range []string{erdviewer.FormatSQL, erdviewer.FormatDot} {
			if err := erdviewer.FormatModel(m, &erdviewer.OutputOptions{Writer: cmd.OutOrStdout(), Format: format, Theme: settings.theme}); err != nil {
				return err
			}
		}
		return nil
	}

	writer := cmd.OutOrStdout()
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Warn("failed to close output file: %v", err)
			}
		}()
		writer = f
	}

	if err := erdviewer.FormatModel(m, &erdviewer.OutputOptions{
		Writer: writer,
		Theme:  settings.theme,
		Format: opts.format,
		Mode:   opts.mode,
	}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return nil
}

// effective holds the values after applying flags over the profile
type effective struct {
	url        string
	database   string
	schemaName string
	theme      string
	outputDir  string
}

func merge(cfg *config.Config, opts *options) effective {
	return effective{
		url:        firstNonEmpty(opts.url, cfg.Connection.URL),
		database:   firstNonEmpty(opts.database, cfg.Connection.Database),
		schemaName: firstNonEmpty(opts.schemaName, cfg.Connection.Schema),
		theme:      firstNonEmpty(opts.theme, cfg.Theme),
		outputDir:  firstNonEmpty(opts.outputDir, outputDirFromConfig(cfg, opts)),
	}
}

// outputDirFromConfig applies the profile's output_dir unless the user asked
// for a single artifact on the command line
func outputDirFromConfig(cfg *config.Config, opts *options) string {
	if opts.outputFile != "" {
		return ""
	}
	return cfg.OutputDir
}

// loadConfig loads .env and the profile. A missing profile is only an error
// when --config was given explicitly.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	config.LoadEnv()

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !cmd.Flags().Changed("config") {
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, verbose bool) *logging.ConsoleLogger {
	w := cmd.ErrOrStderr()
	if w == io.Writer(os.Stderr) {
		return logging.NewConsoleLogger(verbose)
	}
	return logging.NewWriterLogger(w, verbose, false)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
