package global

import (
	"fmt"
	"strconv"
	"time"

	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/markusressel/twiddle/internal/util"
)

// PrintReport prints the summary of a tuning report followed by a plot of its window errors
func PrintReport(report tuning.Report) error {
	duration := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)

	headers := []string{"", ""}
	rows := [][]string{
		{"Controller", report.ControllerId},
		{"Plant", report.Plant},
		{"Status", string(report.Status)},
		{"Started", report.StartedAt.Format(time.RFC3339)},
		{"Duration", duration.String()},
		{"Iterations", strconv.Itoa(report.Iterations)},
		{"Initial Gains", report.InitialGains.String()},
		{"Gains", report.Gains.String()},
		{"Step Sizes", fmt.Sprintf("%.4f", report.StepSizes)},
		{"Best Error", fmt.Sprintf("%.4f", report.BestError)},
	}
	if windowErrors := report.Errors(); len(windowErrors) > 0 {
		rows = append(rows,
			[]string{"Min Window Error", fmt.Sprintf("%.4f", util.Min(windowErrors))},
			[]string{"Max Window Error", fmt.Sprintf("%.4f", util.Max(windowErrors))},
			[]string{"Avg Window Error", fmt.Sprintf("%.4f", util.Avg(windowErrors))},
		)
	}
	if err := PrintTable(headers, rows); err != nil {
		return err
	}

	PrintGraph(report.Errors(), "window error")
	return nil
}
