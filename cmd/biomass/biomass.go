package biomass

import (
	"github.com/spf13/cobra"

	"github.com/timbermetrics/timbervol-go/internal/analysis"
	"github.com/timbermetrics/timbervol-go/internal/conf"
)

// Command creates the biomass command for estimating total green biomass
// from a tree-list file.
func Command(settings *conf.Settings) *cobra.Command {
	var components bool

	cmd := &cobra.Command{
		Use:   "biomass [treelist.csv]",
		Short: "Estimate total green tree biomass",
		Long: `Estimate total green biomass in tons for every tree in a tree-list CSV,
as bole plus top weight to a 4-inch top. Stems under 5 inches DBH use the
species-independent small-tree model instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.BiomassAnalysis(settings, args[0], components)
		},
	}

	cmd.Flags().BoolVar(&components, "components", false,
		"Write the per-tree pipeline breakdown instead of totals only")

	return cmd
}
