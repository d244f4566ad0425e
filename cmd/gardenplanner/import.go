package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/machsheltie/gardenplanner/internal/config"
	"github.com/machsheltie/gardenplanner/internal/platform"
	"github.com/machsheltie/gardenplanner/pkg/core"
)

var (
	source     string
	target     string
	dryRun     bool
	addMissing bool
	fieldList  string
	format     string
	showDiff   bool
	patches    bool
	watch      bool
	configPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge crop fields from a planting-calendar page into the crop data file",
	Example: `  gardenplanner import --source "varieties/planting-calendar (1).html" --dry-run
  gardenplanner import -s "varieties/**/planting-calendar*.html" --add-missing --fields cn,tips,vars`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runImport,
}

func init() {
	bindImportFlags(importCmd)
	rootCmd.AddCommand(importCmd)
}

func bindImportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", "", "Planting-calendar page to import from (glob patterns pick the newest match)")
	f.StringVarP(&target, "target", "t", core.DefaultTarget, "Target data file")
	f.BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	f.BoolVar(&addMissing, "add-missing", false, "Append crops found in the source but missing in the target")
	f.StringVar(&fieldList, "fields", "", "Comma-separated fields to merge (default cn,tips,vars)")
	f.StringVar(&format, "format", "text", "Report format: text, json or yaml")
	f.BoolVar(&showDiff, "diff", false, "Include a unified diff of the target file in the report")
	f.BoolVar(&patches, "patches", false, "Include a JSON merge patch per changed crop in the report")
	f.BoolVar(&watch, "watch", false, "Re-run the import whenever the source file changes")
	f.StringVar(&configPath, "config", "", "Project config file (default: .gardenplanner.yaml at the project root)")
}

func runImport(cmd *cobra.Command, args []string) error {
	if source == "" {
		return errors.New("missing --source <path to updated planting-calendar html>")
	}
	reportFormat, err := core.ParseFormat(format)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}

	opts := []platform.Option{
		platform.WithLogger(slog.Default()),
		platform.WithBaseDir(cwd),
	}
	req := core.ImportRequest{
		Source:     source,
		Target:     target,
		Fields:     config.ParseFields(fieldList),
		AddMissing: addMissing,
		DryRun:     dryRun,
		Diff:       showDiff,
		Patches:    patches,
	}

	if cfg != nil {
		slog.Debug("using project config", "dir", cfg.Dir)
		if !cmd.Flags().Changed("target") && cfg.Target != "" {
			req.Target = cfg.ResolvePath(cfg.Target)
		}
		if !cmd.Flags().Changed("add-missing") && cfg.AddMissing != nil {
			req.AddMissing = *cfg.AddMissing
		}
		if len(cfg.Fields) > 0 {
			opts = append(opts, platform.WithFields(cfg.Fields...))
		}
		if cfg.Declaration != "" {
			opts = append(opts, platform.WithDeclaration(cfg.Declaration))
		}
		if cfg.Auxiliary != nil {
			opts = append(opts, platform.WithAuxiliary(cfg.Auxiliary...))
		}
		if cfg.Identity.Category != "" || cfg.Identity.Name != "" {
			opts = append(opts, platform.WithIdentity(cfg.Identity.Category, cfg.Identity.Name))
		}
		if cfg.EvalTimeout > 0 {
			opts = append(opts, platform.WithEvalTimeout(cfg.EvalTimeout))
		}
	}

	svc, err := platform.New(cwd, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !watch {
		report, err := svc.Import(contextOf(cmd), req)
		if err != nil {
			return err
		}
		return report.Encode(out, reportFormat)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()
	slog.Info("watching source for changes", "source", source)
	return platform.WatchImport(ctx, svc, req, func(report *core.Report, err error) {
		if err != nil {
			slog.Error("import failed", "error", err)
			return
		}
		if err := report.Encode(out, reportFormat); err != nil {
			slog.Error("failed to write report", "error", err)
		}
	})
}

// loadConfig reads --config, or discovers the project config above cwd.
func loadConfig(cwd string) (*config.File, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	root, err := platform.FindRoot(cwd)
	if err != nil {
		return nil, nil
	}
	return config.Discover(root)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
