package tune

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/markusressel/twiddle/cmd/global"
	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/spf13/cobra"
)

var (
	controllerId  string
	reportPath    string
	noSave        bool
	maxIterations int
)

var Command = &cobra.Command{
	Use:   "tune",
	Short: "Tune a single controller in the foreground",
	Long: `Runs the tuning session of the given controller until its step sizes
have converged and prints the resulting gains.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			return err
		}

		config, ok := configuration.GetController(controllerId)
		if !ok {
			return fmt.Errorf("no controller with id found: %s", controllerId)
		}
		if cmd.Flags().Changed("max-iterations") {
			config.Tuning.MaxIterations = maxIterations
		}

		session, err := tuning.NewSessionFromConfig(config)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ui.Info("Tuning controller %s...", controllerId)
		if err := session.Run(ctx); err != nil {
			return err
		}

		report := session.Report()
		if err := global.PrintReport(report); err != nil {
			return err
		}

		if reportPath != "" {
			if err := tuning.ExportReport(report, reportPath); err != nil {
				return fmt.Errorf("unable to export report: %w", err)
			}
			ui.Success("Report written to %s", reportPath)
		}

		if !noSave && report.Iterations > 0 {
			pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
			if err := pers.Init(); err != nil {
				return err
			}
			if err := pers.SaveReport(report); err != nil {
				return err
			}
		}

		if report.Converged() {
			ui.Success("Controller %s converged: %s", controllerId, report.Gains)
		} else {
			ui.Warning("Controller %s did not converge (%s)", controllerId, report.Status)
		}
		return nil
	},
}

func init() {
	Command.Flags().StringVarP(&controllerId, "id", "i", "", "Controller ID")
	_ = Command.MarkFlagRequired("id")
	Command.Flags().StringVarP(&reportPath, "report", "r", "", "Write the resulting report as yaml to the given file")
	Command.Flags().BoolVar(&noSave, "no-save", false, "Do not store the report in the database")
	Command.Flags().IntVarP(&maxIterations, "max-iterations", "m", 0, "Override the iteration limit of the controller (0 = no limit)")
}
