package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/account"
	"github.com/hupe1980/roster/config"
	"github.com/hupe1980/roster/student"
	"github.com/spf13/cobra"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	// Global flags
	configPath string
	backend    string
	dataDir    string
	verbose    bool
	jsonOut    bool

	cfg      *config.Config
	logger   *roster.Logger
	students *student.Registry
	admins   *account.Directory

	studentMetrics *roster.BasicMetricsCollector
	adminMetrics   *roster.BasicMetricsCollector

	closers []func() error
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "Manage student records and administrator accounts",
		Long: `rosterctl keeps student records and administrator accounts in a durable
backend (local directory, S3, MinIO or DynamoDB) and serves every read from an
in-memory hash index loaded at startup.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a JSON config file")
	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Override the configured backend (local, memory, s3, minio, dynamodb)")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Override the local backend directory")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(newStudentCmd(a), newAdminCmd(a))
	return cmd
}

func (a *app) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if a.configPath != "" {
		loaded, err := config.LoadConfig(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		d := config.DefaultConfig()
		cfg = &d
	}

	cfg.Merge(&config.Config{
		Backend: a.backend,
		Local:   config.LocalConfig{Dir: a.dataDir},
	})
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *roster.Logger {
	if cfg.Format == "json" {
		return roster.NewJSONLogger(cfg.SlogLevel())
	}
	return roster.NewTextLogger(cfg.SlogLevel())
}

// open builds the backend and loads both record kinds.
func (a *app) open(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log)

	stores, err := openStores(ctx, cfg, a.logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, stores.close)

	a.studentMetrics = &roster.BasicMetricsCollector{}
	a.adminMetrics = &roster.BasicMetricsCollector{}

	studentIdx := student.NewIndex(hashtableCapacity[int](cfg.Table.StudentCapacity)...)
	a.students = student.NewRegistry(roster.New(stores.students, studentIdx,
		roster.WithLogger(&roster.Logger{Logger: a.logger.With(slog.String("records", "students"))}),
		roster.WithMetricsCollector(a.studentMetrics),
	))

	adminIdx := account.NewIndex(hashtableCapacity[string](cfg.Table.AdminCapacity)...)
	a.admins = account.NewDirectory(roster.New(stores.admins, adminIdx,
		roster.WithLogger(&roster.Logger{Logger: a.logger.With(slog.String("records", "admins"))}),
		roster.WithMetricsCollector(a.adminMetrics),
	))

	a.logger.Debug("loading records", slog.String("backend", cfg.Backend))
	if err := a.students.Load(ctx); err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	if err := a.admins.Load(ctx); err != nil {
		return fmt.Errorf("load admins: %w", err)
	}
	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// run executes the command tree with args and releases the backend.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func execute() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printJSON outputs data as JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
