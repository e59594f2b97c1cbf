package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jacoelho/xsdcorpus"
	"github.com/jacoelho/xsdcorpus/internal/config"
	"github.com/jacoelho/xsdcorpus/internal/logging"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath   string
	allowMissing bool
	jobs         int
	logLevel     string

	cfg    *config.Config
	logger *slog.Logger
	color  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "xsdcorpus",
		Short: "Compile XML Schema documents into an integer-indexed corpus",
		Long: `xsdcorpus compiles XML Schema documents into the immutable corpus a binary
XML codec consumes, checking type derivations, facets, value constraints and
unique particle attribution on the way.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err: err} })

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.BoolVar(&a.allowMissing, "allow-missing-imports", false, "skip imports whose location cannot be found")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newCompileCmd(a), newDumpCmd(a), newCheckCmd(a))
	return root
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("allow-missing-imports") {
		cfg.AllowMissingImportLocations = a.allowMissing
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		cfg.Jobs = a.jobs
	}
	if err := config.Validate(cfg); err != nil {
		return usageError{err: err}
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: a.stderr})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.color = useColor(cfg.Color, a.stderr)
	return nil
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) options() xsdcorpus.Options {
	return xsdcorpus.NewOptions().
		WithLogger(a.logger).
		WithAllowMissingImportLocations(a.cfg.AllowMissingImportLocations)
}

// addRoot adds a schema path. Locations are absolute so that documents with
// the same base name in different directories keep distinct system IDs.
func addRoot(set *xsdcorpus.SchemaSet, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("schema path %s: %w", path, err)
	}
	vol := filepath.VolumeName(abs)
	location := strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(abs, vol)), "/")
	return set.AddFS(os.DirFS(vol+"/"), location)
}

func requireSchemas(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError{err: fmt.Errorf("at least one schema file is required")}
	}
	return nil
}
