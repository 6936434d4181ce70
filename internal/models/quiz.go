package models

import "time"

type Question struct {
	ID            string   `bson:"_id,omitempty" json:"id"`
	Text          string   `bson:"text" json:"text"`
	Options       []string `bson:"options" json:"options"`
	CorrectOption int      `bson:"correctOption" json:"correctOption"`
	Points        int      `bson:"points,omitempty" json:"points"`
}

// PointValue returns the question's point weight, defaulting to 1 when
// no explicit value was set.
func (q Question) PointValue() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

type Quiz struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	QuizID      string     `bson:"quizId" json:"quizId"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	LessonID    string     `bson:"lessonId,omitempty" json:"lessonId,omitempty"`
	Module      string     `bson:"module,omitempty" json:"module,omitempty"`
	CreatedBy   string     `bson:"createdBy" json:"createdBy"`
	Questions   []Question `bson:"questions" json:"questions"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

// TotalPoints sums the point values of all questions.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.PointValue()
	}
	return total
}
