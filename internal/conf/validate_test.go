package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSettingsDefaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(defaultSettings()))
}

func TestValidateSettingsRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown volume type", func(s *Settings) { s.Estimate.VolumeType = "cords" }},
		{"negative top diameter", func(s *Settings) { s.Estimate.TopDiameter = -4 }},
		{"negative site index", func(s *Settings) { s.Estimate.SiteIndex = -1 }},
		{"negative basal area", func(s *Settings) { s.Estimate.BasalArea = -80 }},
		{"port out of range", func(s *Settings) { s.HTTP.Port = 0 }},
		{"datastore without path", func(s *Settings) { s.Datastore.Enabled = true; s.Datastore.Path = "" }},
		{"unknown rotation", func(s *Settings) { s.Main.Log.Rotation = "hourly" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := defaultSettings()
			tt.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}
