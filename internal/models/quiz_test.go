package models

import (
	"testing"
	"time"
)

func TestQuestionPointValue(t *testing.T) {
	if got := (Question{Points: 5}).PointValue(); got != 5 {
		t.Errorf("explicit points: got %d, want 5", got)
	}
	if got := (Question{}).PointValue(); got != 1 {
		t.Errorf("default points: got %d, want 1", got)
	}
	if got := (Question{Points: -3}).PointValue(); got != 1 {
		t.Errorf("negative points: got %d, want 1", got)
	}
}

func TestQuizTotalPoints(t *testing.T) {
	quiz := Quiz{Questions: []Question{
		{Points: 2},
		{},
		{Points: 3},
	}}
	if got := quiz.TotalPoints(); got != 6 {
		t.Errorf("TotalPoints = %d, want 6", got)
	}

	empty := Quiz{}
	if got := empty.TotalPoints(); got != 0 {
		t.Errorf("empty quiz TotalPoints = %d, want 0", got)
	}
}

func TestAttemptIsCompleted(t *testing.T) {
	ongoing := Attempt{}
	if ongoing.IsCompleted() {
		t.Error("attempt without completedAt should be ongoing")
	}
	now := time.Now()
	done := Attempt{CompletedAt: &now}
	if !done.IsCompleted() {
		t.Error("attempt with completedAt should be completed")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleInstituteAdmin, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	if ValidRole("teacher") {
		t.Error("unknown role should be invalid")
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{LevelBeginner, LevelIntermediate, LevelAdvanced} {
		if !ValidLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if ValidLevel("expert") {
		t.Error("unknown level should be invalid")
	}
}

func TestValidAssetType(t *testing.T) {
	for _, typ := range []string{"model", "text", "raw"} {
		if !ValidAssetType(typ) {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	if ValidAssetType("video") {
		t.Error("unknown asset type should be invalid")
	}
}
