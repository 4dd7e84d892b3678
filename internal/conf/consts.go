// conf/consts.go hard coded constants
package conf

// LogRotationType defines the log rotation strategy
type LogRotationType string

const (
	RotationDaily  LogRotationType = "daily"
	RotationWeekly LogRotationType = "weekly"
	RotationSize   LogRotationType = "size"
)

const (
	// VolumeTypeCubic and VolumeTypeBoard name the two coefficient tables
	// selectable through configuration and the volume CLI/API.
	VolumeTypeCubic = "cubic-feet"
	VolumeTypeBoard = "board-feet"

	// DefaultTopDiameter is the merchantable top DOB assumed by the biomass
	// pipeline and used as the height default, in inches.
	DefaultTopDiameter = 4.0
)
