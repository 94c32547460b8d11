package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	telcolcaexporter "github.com/carbonwise/telco-lca-exporter"
	"github.com/carbonwise/telco-lca-exporter/export"
	"github.com/carbonwise/telco-lca-exporter/internal/config"
	"github.com/carbonwise/telco-lca-exporter/model"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx := context.Background()

	flagConfig := ""
	flagOutDir := ""
	flagScenario := ""
	flagListen := ""
	flagRefresh := time.Duration(0)
	flagLogLevel := ""
	flagLogFormat := ""

	flag.StringVar(&flagConfig, "config", "", "yaml configuration file (defaults apply when empty)")
	flag.StringVar(&flagOutDir, "out.dir", ".", "directory receiving the csv and json report files")
	flag.StringVar(&flagScenario, "scenario", "", "print the annual table of a single scenario (fuzzy matched)")
	flag.StringVar(&flagListen, "listen", "", "serve openmetrics on this addr instead of writing report files")
	flag.DurationVar(&flagRefresh, "metrics.refresh", time.Minute, "openmetrics payload refresh interval")
	flag.StringVar(&flagLogLevel, "log.level", "info", "log severity (debug, info, warn, error)")
	flag.StringVar(&flagLogFormat, "log.format", "text", "log format (text, json)")

	flag.Parse()

	initLogging(flagLogLevel, flagLogFormat)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		slog.Error("failed to load configuration", "config", flagConfig, "err", err)
		os.Exit(1)
	}

	equipment := cfg.EquipmentProfile()
	slog.Info("configuration loaded",
		"lifetime_years", equipment.LifetimeYears,
		"annual_operational_energy_kwh", float64(equipment.BasePowerKW.AnnualEnergy()),
		"manufacturing_spread", cfg.ManufacturingSpread)

	if flagScenario != "" {
		printScenario(cfg, flagScenario)
		return
	}

	if flagListen != "" {
		serve(ctx, cfg, flagListen, flagRefresh)
		return
	}

	writeReport(cfg, flagOutDir)
}

func writeReport(cfg *config.Config, outDir string) {
	report, err := export.BuildReport(
		cfg.EquipmentProfile(),
		cfg.Factors(),
		cfg.ManufacturingSpread,
		cfg.ScenarioSet(),
		cfg.Sweep.RenewableSteps,
		cfg.Sweep.SleepSteps)
	if err != nil {
		slog.Error("failed to build report", "err", err)
		os.Exit(1)
	}

	for _, row := range report.SavingsSorted {
		slog.Info("lifetime totals",
			"scenario", row.Scenario,
			"total_kg_co2", row.TotalKgCO2,
			"savings_kg_co2", row.SavingsKgCO2,
			"savings_pct", row.SavingsPct)
	}

	written, err := export.WriteWorkbook(outDir, report)
	if err != nil {
		slog.Error("failed to write workbook", "err", err)
		os.Exit(1)
	}

	jsonPath := filepath.Join(outDir, report.Prefix()+"_report.json")
	jsonFile, err := os.Create(jsonPath)
	if err != nil {
		slog.Error("failed to create json report", "err", err)
		os.Exit(1)
	}
	defer jsonFile.Close()

	if err := export.WriteJSON(jsonFile, report); err != nil {
		slog.Error("failed to write json report", "err", err)
		os.Exit(1)
	}
	written = append(written, jsonPath)

	for _, path := range written {
		slog.Info("report file written", "path", path)
	}
}

func printScenario(cfg *config.Config, name string) {
	scenarios := cfg.ScenarioSet()
	scenario, found := scenarios.Lookup(name)
	if !found {
		slog.Error("no scenario matches", "scenario", name)
		os.Exit(1)
	}

	series, err := model.ComputeSeries(cfg.EquipmentProfile(), cfg.Factors(), scenario.Params, cfg.ManufacturingSpread)
	if err != nil {
		slog.Error("failed to compute scenario", "scenario", scenario.Name, "err", err)
		os.Exit(1)
	}

	fmt.Printf("scenario %s (sleep_frac=%g, renewable_share=%g)\n",
		scenario.Name, scenario.Params.SleepFrac, scenario.Params.RenewableShare)
	fmt.Printf("%4s %20s %20s %20s %20s\n", "year", "manufacturing_kgCO2", "operational_kgCO2", "eol_kgCO2", "total_kgCO2")
	for _, record := range series {
		fmt.Printf("%4d %20.2f %20.2f %20.2f %20.2f\n",
			record.Year, record.ManufacturingKgCO2, record.OperationalKgCO2, record.EOLKgCO2, record.TotalKgCO2)
	}

	summary := model.Summarize(scenario.Name, series)
	fmt.Printf("%4s %20.2f %20.2f %20.2f %20.2f\n", "life",
		summary.ManufacturingKgCO2, summary.OperationalKgCO2, summary.EOLKgCO2, summary.TotalKgCO2)
}

func serve(ctx context.Context, cfg *config.Config, listen string, refresh time.Duration) {
	collector := &model.Collector{
		Equipment:           cfg.EquipmentProfile(),
		Factors:             cfg.Factors(),
		Scenarios:           cfg.ScenarioSet(),
		ManufacturingSpread: cfg.ManufacturingSpread,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", telcolcaexporter.NewOpenMetricsHandler(ctx, collector, refresh))

	slog.Info("starting telco lca exporter", "listen", listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		slog.Error("failed to start telco lca exporter", "err", err)
		os.Exit(1)
	}
}

func initLogging(logLevel string, logFormat string) {
	switch logFormat {
	case "text":
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:   slogLevel(logLevel),
			NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
		})))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(logLevel),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				switch a.Key {
				case slog.LevelKey:
					a.Key = "severity"
					return a
				case slog.MessageKey:
					a.Key = "message"
					return a
				default:
					return a
				}
			},
		})))
	}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}
