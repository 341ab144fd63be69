package history

import (
	"github.com/spf13/cobra"
)

var controllerId string

var Command = &cobra.Command{
	Use:              "history",
	Short:            "Inspect stored tuning reports",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(&controllerId, "id", "i", "", "Controller ID")
	_ = Command.MarkPersistentFlagRequired("id")
}
