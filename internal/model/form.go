package model

// QuestionKind distinguishes choice questions from free-text ones.
type QuestionKind string

const (
	QuestionKindMultipleChoice QuestionKind = "multiple_choice"
	QuestionKindFreeText       QuestionKind = "text"
)

// QuestionCategory separates identity fields (name, class, ...) from quiz items.
type QuestionCategory string

const (
	QuestionCategoryIdentity QuestionCategory = "identity"
	QuestionCategoryQuiz     QuestionCategory = "quiz"
)

// Question is a single prompt extracted from a form.
type Question struct {
	ID       string           `json:"id" binding:"required,max=32"`
	Text     string           `json:"question" binding:"required,min=1,max=2000"`
	Kind     QuestionKind     `json:"type" binding:"required,oneof=multiple_choice text"`
	Options  []string         `json:"options,omitempty" binding:"omitempty,max=50,dive,max=500"`
	Required bool             `json:"required"`
	Category QuestionCategory `json:"category,omitempty" binding:"omitempty,oneof=identity quiz"`
}

// IsMultipleChoice reports whether the question carries a usable option list.
func (q Question) IsMultipleChoice() bool {
	return q.Kind == QuestionKindMultipleChoice && len(q.Options) >= 2
}

// Answer is the resolved answer for one question.
type Answer struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"answer"`
	IsManual   bool   `json:"isManual"`
}

// Draft is a candidate answer pair produced by the answer generator.
type Draft struct {
	QuestionID string `json:"questionId" binding:"required,max=32"`
	Answer     string `json:"answer" binding:"max=5000"`
}

// UserContext carries profile data used to answer identity questions.
type UserContext struct {
	FullName string `json:"fullName" binding:"omitempty,max=255"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
}

// ParsedForm is the outcome of parsing one document.
type ParsedForm struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// ScrapeFormRequest is the payload for scraping a form by URL.
type ScrapeFormRequest struct {
	URL string `json:"url" binding:"required,max=2048,formurl"`
}

// ParseTextRequest is the payload for parsing already-scraped text.
type ParseTextRequest struct {
	Text string `json:"text" binding:"required,max=500000"`
	HTML string `json:"html" binding:"omitempty"`
}

// ManualParseRequest is the payload for parsing a pasted, numbered quiz.
type ManualParseRequest struct {
	Text string `json:"text" binding:"required,max=200000"`
}

// AnswerFormRequest is the payload for generating and reconciling answers.
//
// When Answers is empty the generator is asked for drafts.
type AnswerFormRequest struct {
	Questions        []Question  `json:"questions" binding:"required,min=1,max=200,dive"`
	Answers          []Draft     `json:"answers" binding:"omitempty,dive"`
	Overrides        []Draft     `json:"overrides" binding:"omitempty,dive"`
	WrongAnswerCount int         `json:"wrongAnswerCount" binding:"min=0,max=200"`
	UserContext      UserContext `json:"userContext"`
	FormURL          string      `json:"formUrl" binding:"omitempty,max=2048"`
	FormTitle        string      `json:"formTitle" binding:"omitempty,max=500"`
	Seed             *int64      `json:"seed"`
}

// AnswerFormResponse is returned after answers are reconciled.
type AnswerFormResponse struct {
	Answers   []Answer `json:"answers"`
	Missed    []string `json:"missed"`
	Unmatched []string `json:"unmatched"`
	HistoryID string   `json:"historyId,omitempty"`
}
