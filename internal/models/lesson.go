package models

import "time"

type Lesson struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	LessonID  string    `bson:"lessonId" json:"lessonId"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Module    string    `bson:"module" json:"module"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
