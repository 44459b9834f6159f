package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Stock movement reports",
}

var exportReportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions in a date range as CSV",
	Long:  `Writes every stock transaction dated between --start and --end (inclusive, YYYY-MM-DD) to a CSV file.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies(configPath)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		var buf bytes.Buffer
		filename, err := deps.Services.Report.Export(context.Background(), &buf, reportStart, reportEnd)
		if err != nil {
			log.Fatalf("failed to export report: %v", err)
		}

		out := reportOut
		if out == "" {
			out = filename
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", out, err)
		}
		fmt.Printf("Report written to %s\n", out)
	},
}

var (
	reportStart string
	reportEnd   string
	reportOut   string
)

func init() {
	exportReportCmd.Flags().StringVar(&reportStart, "start", "", "first day of the range (YYYY-MM-DD)")
	exportReportCmd.Flags().StringVar(&reportEnd, "end", "", "last day of the range (YYYY-MM-DD)")
	exportReportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (defaults to stock-report-<start>-to-<end>.csv)")
	_ = exportReportCmd.MarkFlagRequired("start")
	_ = exportReportCmd.MarkFlagRequired("end")

	reportCmd.AddCommand(exportReportCmd)
}
