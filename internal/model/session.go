package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionAbandoned  SessionStatus = "ABANDONED"
)

// Terminal reports whether no further turns may be appended.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// Session is one complete interview attempt. At most one session per user may be
// IN_PROGRESS at any time; the repository enforces this with a partial unique index.
type Session struct {
	ID              string             `json:"id" bson:"_id"`
	UserID          string             `json:"userId" bson:"userId"`
	Role            string             `json:"role" bson:"role"`
	ExperienceLevel ExperienceLevel    `json:"experienceLevel" bson:"experienceLevel"`
	Mode            InterviewMode      `json:"mode" bson:"mode"`
	Status          SessionStatus      `json:"status" bson:"status"`
	MaxQuestions    int                `json:"maxQuestions" bson:"maxQuestions"`
	Turns           []QuestionTurn     `json:"turns" bson:"turns"`
	Aggregates      RunningAggregates  `json:"aggregates" bson:"aggregates"`
	CurrentQuestion *GeneratedQuestion `json:"currentQuestion,omitempty" bson:"currentQuestion,omitempty"`
	Report          *FinalReport       `json:"report,omitempty" bson:"report,omitempty"`
	Version         int64              `json:"-" bson:"version"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// QuestionTurn is one question/answer/evaluation triple. Immutable once written.
// Index is 1-based and strictly increasing with no gaps.
type QuestionTurn struct {
	Index      int               `json:"index" bson:"index"`
	Question   GeneratedQuestion `json:"question" bson:"question"`
	AnswerText string            `json:"answerText" bson:"answerText"`
	VoiceMeta  *VoiceMetadata    `json:"voiceMeta,omitempty" bson:"voiceMeta,omitempty"`
	Evaluation Evaluation        `json:"evaluation" bson:"evaluation"`
	AnsweredAt time.Time         `json:"answeredAt" bson:"answeredAt"`
}

// VoiceMetadata carries delivery metrics for voice/hybrid answers.
type VoiceMetadata struct {
	DurationSeconds float64 `json:"durationSeconds" bson:"durationSeconds"`
	FillerWordCount int     `json:"fillerWordCount" bson:"fillerWordCount"`
	PauseCount      int     `json:"pauseCount" bson:"pauseCount"`
	WordsPerMinute  float64 `json:"wordsPerMinute" bson:"wordsPerMinute"`
}
