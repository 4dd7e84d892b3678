// model.go defines the persisted shape of estimation runs
package datastore

import "time"

// Run is one persisted estimation batch.
type Run struct {
	ID         string `gorm:"primaryKey"`
	Operation  string `gorm:"index"` // height, volume or biomass
	VolumeType string // set for volume runs
	TreeCount  int
	Missing    int // stems below the merchantable limit
	DurationMS int64
	CreatedAt  time.Time `gorm:"index"`
	Results    []Result  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// Result is one per-tree estimate within a run. Value is nil for missing
// volume results.
type Result struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"index;not null"`
	Row         int
	SpeciesCode int
	DBH         float64
	Value       *float64
}
