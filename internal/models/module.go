package models

import "time"

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Module struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	Title            string    `bson:"title" json:"title"`
	Description      string    `bson:"description" json:"description"`
	Level            string    `bson:"level" json:"level"`
	AllowedDistricts []string  `bson:"allowedDistricts" json:"allowedDistricts"`
	CreatedBy        string    `bson:"createdBy" json:"createdBy"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}
