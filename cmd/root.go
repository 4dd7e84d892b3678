package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timbermetrics/timbervol-go/cmd/biomass"
	"github.com/timbermetrics/timbervol-go/cmd/height"
	"github.com/timbermetrics/timbervol-go/cmd/serve"
	"github.com/timbermetrics/timbervol-go/cmd/species"
	"github.com/timbermetrics/timbervol-go/cmd/volume"
	"github.com/timbermetrics/timbervol-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "timbervol",
		Short: "Tree height, volume and biomass estimation from species-group regression tables",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		panic(fmt.Sprintf("error setting up flags: %v", err))
	}

	subcommands := []*cobra.Command{
		height.Command(settings),
		volume.Command(settings),
		biomass.Command(settings),
		species.Command(settings),
		serve.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Parse the command line flags
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}

		// Sync the settings struct with viper's values so command-line
		// arguments take precedence over the config file
		conf.SyncViper(settings)

		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Refdata.Path, "refdata", viper.GetString("refdata.path"), "Directory of reference data CSVs overriding the embedded tables")
	rootCmd.PersistentFlags().Float64VarP(&settings.Estimate.SiteIndex, "site-index", "s", viper.GetFloat64("estimate.siteindex"), "Default site index (base age 50) for trees without one")
	rootCmd.PersistentFlags().Float64VarP(&settings.Estimate.BasalArea, "basal-area", "b", viper.GetFloat64("estimate.basalarea"), "Default stand basal area in sq ft/acre for trees without one")
	rootCmd.PersistentFlags().Float64VarP(&settings.Estimate.TopDiameter, "top-dob", "t", viper.GetFloat64("estimate.topdiameter"), "Default merchantable top diameter outside bark in inches")
	rootCmd.PersistentFlags().StringVarP(&settings.Output.Path, "output", "o", viper.GetString("output.path"), "Result CSV path, empty writes to stdout")
	rootCmd.PersistentFlags().BoolVar(&settings.Output.Summary, "summary", viper.GetBool("output.summary"), "Print batch summary statistics")
	rootCmd.PersistentFlags().BoolVar(&settings.Datastore.Enabled, "save", viper.GetBool("datastore.enabled"), "Persist the run to the run archive")

	// Bind each flag to its config key so SyncViper propagates flag values
	// into the nested settings structure.
	bindings := map[string]string{
		"debug":      "debug",
		"refdata":    "refdata.path",
		"site-index": "estimate.siteindex",
		"basal-area": "estimate.basalarea",
		"top-dob":    "estimate.topdiameter",
		"output":     "output.path",
		"summary":    "output.summary",
		"save":       "datastore.enabled",
	}
	for flag, key := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
