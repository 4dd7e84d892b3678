package height

import (
	"github.com/spf13/cobra"

	"github.com/timbermetrics/timbervol-go/internal/analysis"
	"github.com/timbermetrics/timbervol-go/internal/conf"
)

// Command creates the height command for estimating usable heights from a
// tree-list file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "height [treelist.csv]",
		Short: "Estimate usable tree heights",
		Long: `Estimate usable height in feet to the merchantable top diameter for every
tree in a tree-list CSV. The file needs species_code and dbh columns;
site_index, top_dob and basal_area columns override the configured defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.HeightAnalysis(settings, args[0])
		},
	}

	return cmd
}
