package models

import "time"

// GradedAnswer is the stored outcome of grading one submitted answer.
type GradedAnswer struct {
	QuestionID     string `bson:"questionId" json:"questionId"`
	SelectedOption int    `bson:"selectedOption" json:"selectedOption"`
	IsCorrect      bool   `bson:"isCorrect" json:"isCorrect"`
	PointsEarned   int    `bson:"pointsEarned" json:"pointsEarned"`
}

// Attempt is one student's run at one quiz. CompletedAt is absent while
// the attempt is ongoing; once set the attempt is immutable.
type Attempt struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	Quiz        string         `bson:"quiz" json:"quiz"`
	Student     string         `bson:"student" json:"student"`
	Answers     []GradedAnswer `bson:"answers" json:"answers"`
	Score       int            `bson:"score" json:"score"`
	TotalPoints int            `bson:"totalPoints" json:"totalPoints"`
	StartedAt   time.Time      `bson:"startedAt" json:"startedAt"`
	CompletedAt *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Duration    int            `bson:"duration,omitempty" json:"duration,omitempty"`
}

func (a *Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}
