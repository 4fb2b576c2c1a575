package models

import "time"

// HistoryEntry is one locally recorded generation.
type HistoryEntry struct {
	ID             string
	CreatedAt      time.Time
	Source         SourceType
	OutputType     string
	Language       string
	Difficulty     string
	TotalQuestions int
	Quiz           *Quiz
}
