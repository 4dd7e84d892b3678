// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "timbervol")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "timbervol.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("estimate.volumetype", VolumeTypeCubic)
	viper.SetDefault("estimate.topdiameter", DefaultTopDiameter)
	viper.SetDefault("estimate.siteindex", 0.0)
	viper.SetDefault("estimate.basalarea", 0.0)

	viper.SetDefault("refdata.path", "")

	viper.SetDefault("http.host", "0.0.0.0")
	viper.SetDefault("http.port", 8090)

	viper.SetDefault("datastore.enabled", false)
	viper.SetDefault("datastore.path", "timbervol.db")

	viper.SetDefault("output.path", "")
	viper.SetDefault("output.summary", true)
}

// defaultSettings returns a Settings populated with the defaults above, used
// to render the initial config file.
func defaultSettings() *Settings {
	return &Settings{
		Main: MainSettings{
			Name: "timbervol",
			Log: LogConfig{
				Enabled:  true,
				Path:     "timbervol.log",
				Rotation: RotationDaily,
				MaxSize:  1048576,
			},
		},
		Estimate: EstimateSettings{
			VolumeType:  VolumeTypeCubic,
			TopDiameter: DefaultTopDiameter,
		},
		HTTP: HTTPSettings{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Datastore: DatastoreSettings{
			Enabled: false,
			Path:    "timbervol.db",
		},
		Output: OutputSettings{
			Summary: true,
		},
	}
}
