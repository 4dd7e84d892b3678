package volume

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timbermetrics/timbervol-go/internal/analysis"
	"github.com/timbermetrics/timbervol-go/internal/conf"
)

// Command creates the volume command for estimating gross volumes from a
// tree-list file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volume [treelist.csv]",
		Short: "Estimate gross tree volumes",
		Long: `Estimate gross volume for every tree in a tree-list CSV, in cubic feet or
board feet. Heights are taken from the height column when present and
estimated otherwise. Stems under 5 inches DBH have no defined volume and
yield empty result fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.VolumeAnalysis(settings, args[0])
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVarP(&settings.Estimate.VolumeType, "vol-type", "v",
		viper.GetString("estimate.volumetype"),
		"Volume units: "+conf.VolumeTypeCubic+" or "+conf.VolumeTypeBoard)

	if err := viper.BindPFlag("estimate.volumetype", cmd.Flags().Lookup("vol-type")); err != nil {
		panic(err)
	}
}
