package species

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/timbermetrics/timbervol-go/internal/analysis"
	"github.com/timbermetrics/timbervol-go/internal/conf"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

// Command creates the species command with its list and resolve subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species",
		Short: "Inspect species groups and code resolution",
	}

	cmd.AddCommand(listCommand(settings), resolveCommand(settings))

	return cmd
}

// listCommand prints every species group with its coefficient coverage, or
// the full species reference with --codes.
func listCommand(settings *conf.Settings) *cobra.Command {
	var codes bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List species groups and their coefficient coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			estimator, err := analysis.NewEstimator(settings)
			if err != nil {
				return err
			}
			store := estimator.Store()

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			if codes {
				fmt.Fprintln(w, "CODE\tCOMMON NAME\tSCIENTIFIC NAME\tMAJOR GROUP")
				for _, code := range store.SpeciesCodes() {
					info, _ := store.Species(code)
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\n",
						info.Code, info.CommonName, info.ScientificName, info.MajorGroup)
				}
				return w.Flush()
			}
			fmt.Fprintln(w, "GROUP\tHEIGHT\tCUBIC\tBOARD\tBIOMASS")
			for _, group := range store.Groups() {
				_, heightErr := store.Height(group)
				_, cubicErr := store.Volume(group, refdata.CubicFeet)
				_, boardErr := store.Volume(group, refdata.BoardFeet)
				_, biomassErr := store.Biomass(group)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", group,
					mark(heightErr == nil), mark(cubicErr == nil),
					mark(boardErr == nil), mark(biomassErr == nil))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&codes, "codes", false, "List the species reference instead of groups")

	return cmd
}

// resolveCommand classifies species codes and prints the per-code outcome.
func resolveCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [code...]",
		Short: "Show how species codes classify into species groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := make([]int, len(args))
			for i, arg := range args {
				code, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid species code %q", arg)
				}
				codes[i] = code
			}

			estimator, err := analysis.NewEstimator(settings)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tGROUP\tKIND")
			for _, res := range estimator.Resolver().Resolutions(codes) {
				group := string(res.Group)
				if group == "" {
					group = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", res.Code, group, res.Kind)
			}
			return w.Flush()
		},
	}
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
