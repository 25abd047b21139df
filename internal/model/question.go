package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "Junior"
	LevelMid    ExperienceLevel = "Mid"
	LevelSenior ExperienceLevel = "Senior"
)

// ValidExperienceLevel reports whether l is one of the known levels.
func ValidExperienceLevel(l ExperienceLevel) bool {
	return l == LevelJunior || l == LevelMid || l == LevelSenior
}

type InterviewMode string

const (
	ModeText   InterviewMode = "text"
	ModeVoice  InterviewMode = "voice"
	ModeHybrid InterviewMode = "hybrid"
)

// ValidInterviewMode reports whether m is one of the known modes.
func ValidInterviewMode(m InterviewMode) bool {
	return m == ModeText || m == ModeVoice || m == ModeHybrid
}

// GeneratedQuestion is what the question source returns for the next turn.
type GeneratedQuestion struct {
	Question   string     `json:"question" bson:"question"`
	Topic      string     `json:"topic" bson:"topic"`
	Difficulty Difficulty `json:"difficulty" bson:"difficulty"`
}
