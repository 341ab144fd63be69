package history

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/markusressel/twiddle/cmd/global"
	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/spf13/cobra"
)

var showLatest bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored reports of a controller",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.DetectAndReadConfigFile()
		configuration.LoadConfig()

		pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
		if err := pers.Init(); err != nil {
			return err
		}
		reports, err := pers.LoadReports(controllerId)
		if errors.Is(err, os.ErrNotExist) {
			ui.Warning("No reports stored for controller %s", controllerId)
			return nil
		} else if err != nil {
			return err
		}

		headers := []string{"#", "Started", "Status", "Iterations", "Gains", "Best Error"}
		var rows [][]string
		for i, report := range reports {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				report.StartedAt.Local().Format(time.DateTime),
				string(report.Status),
				strconv.Itoa(report.Iterations),
				report.Gains.String(),
				fmt.Sprintf("%.4f", report.BestError),
			})
		}
		if err := global.PrintTable(headers, rows); err != nil {
			return err
		}

		if showLatest {
			return global.PrintReport(reports[len(reports)-1])
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&showLatest, "latest", "l", false, "Print details of the most recent report")
	Command.AddCommand(listCmd)
}
