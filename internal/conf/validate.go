// conf/validate.go settings validation
package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks the loaded settings for values that would fail at
// first use, so configuration errors surface at startup.
func ValidateSettings(settings *Settings) error {
	var errs []error

	switch settings.Estimate.VolumeType {
	case VolumeTypeCubic, VolumeTypeBoard:
	default:
		errs = append(errs, fmt.Errorf("estimate.volumetype must be %q or %q, got %q",
			VolumeTypeCubic, VolumeTypeBoard, settings.Estimate.VolumeType))
	}

	if settings.Estimate.TopDiameter < 0 {
		errs = append(errs, fmt.Errorf("estimate.topdiameter must not be negative, got %v",
			settings.Estimate.TopDiameter))
	}
	if settings.Estimate.SiteIndex < 0 {
		errs = append(errs, fmt.Errorf("estimate.siteindex must not be negative, got %v",
			settings.Estimate.SiteIndex))
	}
	if settings.Estimate.BasalArea < 0 {
		errs = append(errs, fmt.Errorf("estimate.basalarea must not be negative, got %v",
			settings.Estimate.BasalArea))
	}

	if settings.HTTP.Port < 1 || settings.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d",
			settings.HTTP.Port))
	}

	if settings.Datastore.Enabled && settings.Datastore.Path == "" {
		errs = append(errs, errors.New("datastore.path must be set when the datastore is enabled"))
	}

	switch settings.Main.Log.Rotation {
	case RotationDaily, RotationWeekly, RotationSize:
	default:
		errs = append(errs, fmt.Errorf("main.log.rotation must be daily, weekly or size, got %q",
			settings.Main.Log.Rotation))
	}

	return errors.Join(errs...)
}
