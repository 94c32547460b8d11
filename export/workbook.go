package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/carbonwise/telco-lca-exporter/internal/must"
	"github.com/carbonwise/telco-lca-exporter/model"
	"gonum.org/v1/gonum/mat"
)

// WriteWorkbook writes every report table as a CSV file inside dir, file
// names prefixed with the report generation timestamp for version control.
// It returns the written paths.
func WriteWorkbook(dir string, report *Report) ([]string, error) {
	prefix := report.Prefix()

	tables := []struct {
		name    string
		records [][]string
	}{
		{"Annual_Results", annualRecords(report.Annual)},
		{"Cumulative_Results", cumulativeRecords(report.Cumulative)},
		{"Lifetime_Summary", summaryRecords(report.Summary)},
		{"Savings_kgCO2_grid", gridRecords(report.Grid, report.savingsAbs)},
		{"Savings_Sorted", summaryRecords(report.SavingsSorted)},
	}

	written := make([]string, 0, len(tables))
	for _, table := range tables {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, table.name))
		if err := writeCSV(path, table.records); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func annualRecords(rows []AnnualRow) [][]string {
	records := [][]string{{"scenario", "year", "manufacturing_kgCO2", "operational_kgCO2", "eol_kgCO2", "total_kgCO2"}}
	for _, row := range rows {
		records = append(records, []string{
			row.Scenario,
			strconv.Itoa(row.Year),
			formatFloat(row.ManufacturingKgCO2),
			formatFloat(row.OperationalKgCO2),
			formatFloat(row.EOLKgCO2),
			formatFloat(row.TotalKgCO2),
		})
	}
	return records
}

func cumulativeRecords(rows []CumulativeRow) [][]string {
	records := [][]string{{
		"scenario", "year",
		"cumulative_manufacturing_kgCO2", "cumulative_operational_kgCO2",
		"cumulative_eol_kgCO2", "cumulative_total_kgCO2",
	}}
	for _, row := range rows {
		records = append(records, []string{
			row.Scenario,
			strconv.Itoa(row.Year),
			formatFloat(row.CumulativeManufacturingKgCO2),
			formatFloat(row.CumulativeOperationalKgCO2),
			formatFloat(row.CumulativeEOLKgCO2),
			formatFloat(row.CumulativeTotalKgCO2),
		})
	}
	return records
}

func summaryRecords(rows []model.ScenarioSummary) [][]string {
	records := [][]string{{
		"scenario",
		"manufacturing_life_kgCO2", "operational_life_kgCO2", "eol_life_kgCO2",
		"total_life_kgCO2", "savings_kgCO2", "savings_pct",
	}}
	for _, row := range rows {
		records = append(records, []string{
			row.Scenario,
			formatFloat(row.ManufacturingKgCO2),
			formatFloat(row.OperationalKgCO2),
			formatFloat(row.EOLKgCO2),
			formatFloat(row.TotalKgCO2),
			formatFloat(row.SavingsKgCO2),
			formatFloat(row.SavingsPct),
		})
	}
	return records
}

// gridRecords lays the absolute savings matrix out with one row per sleep
// fraction and one column per renewable share.
func gridRecords(grid GridTable, savingsAbs *mat.Dense) [][]string {
	rows, cols := savingsAbs.Dims()
	must.Assert(rows == len(grid.SleepFracs) && cols == len(grid.RenewableShares), "savings matrix does not match the grid axes")

	header := []string{"sleep_frac/renewable_share"}
	for _, share := range grid.RenewableShares {
		header = append(header, formatFloat(share))
	}
	records := [][]string{header}

	for i, sleepFrac := range grid.SleepFracs {
		row := []string{formatFloat(sleepFrac)}
		for j := range grid.RenewableShares {
			row = append(row, formatFloat(savingsAbs.At(i, j)))
		}
		records = append(records, row)
	}

	return records
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
