package models

import (
	"encoding/json"
	"strconv"
)

// SourceType is the kind of material a quiz is generated from.
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceImage SourceType = "image"
	SourceText  SourceType = "text"
)

// Output types offered by the generator. The backend receives them verbatim.
const (
	OutputQuiz               = "Quiz"
	OutputTestPaper          = "Test Paper"
	OutputImportantQuestions = "Important Questions"
)

var (
	OutputTypes  = []string{OutputQuiz, OutputTestPaper, OutputImportantQuestions}
	Languages    = []string{"English", "Hindi", "Spanish", "French"}
	Difficulties = []string{"Easy", "Medium", "Hard"}
)

// DefaultNumQuestions is the question count requested for every generation.
const DefaultNumQuestions = 10

// FlexID is an identifier the backend may send as a JSON string or number.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(f), 10, 64); err == nil {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

type Question struct {
	ID       FlexID   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type Quiz struct {
	OutputType     string     `json:"outputType"`
	Language       string     `json:"language"`
	Difficulty     string     `json:"difficulty"`
	TotalQuestions int        `json:"totalQuestions"`
	Questions      []Question `json:"questions"`
}

// GenerateRequest describes one generation attempt.
type GenerateRequest struct {
	Source       SourceType
	FilePath     string
	Text         string
	OutputType   string
	Language     string
	Difficulty   string
	NumQuestions int
}

// GenerateResult is a successful generation: the quiz and the balance the
// backend reports after charging for it.
type GenerateResult struct {
	Quiz             *Quiz
	CreditsRemaining int
}
