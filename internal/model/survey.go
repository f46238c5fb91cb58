package model

import "time"

// SurveyResult is a finished document persisted for hosts
type SurveyResult struct {
	ID          string    `json:"id" bson:"-"`
	SessionID   string    `json:"sessionId" bson:"sessionId"`
	Document    *Document `json:"document" bson:"document"`
	CompletedAt time.Time `json:"completedAt" bson:"completedAt"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
