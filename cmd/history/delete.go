package history

import (
	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete all stored reports of a controller",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.DetectAndReadConfigFile()
		configuration.LoadConfig()

		pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
		if err := pers.Init(); err != nil {
			return err
		}
		deleted, err := pers.DeleteReports(controllerId)
		if err != nil {
			return err
		}
		ui.Success("Deleted %d report(s) of controller %s", deleted, controllerId)
		return nil
	},
}

func init() {
	Command.AddCommand(deleteCmd)
}
