package models

import "time"

type DrillAsset struct {
	Name     string `bson:"name" json:"name"`
	Type     string `bson:"type" json:"type"`
	ImageURL string `bson:"imageURL" json:"imageURL"`
}

func ValidAssetType(t string) bool {
	switch t {
	case "model", "text", "raw":
		return true
	}
	return false
}

type VirtualDrill struct {
	ID           string       `bson:"_id,omitempty" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Description  string       `bson:"description" json:"description"`
	Assets       []DrillAsset `bson:"assets" json:"assets"`
	Targets      []string     `bson:"targets" json:"targets"`
	Instructions string       `bson:"instructions" json:"instructions"`
	Released     bool         `bson:"released" json:"released"`
	CreatedBy    string       `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
}
