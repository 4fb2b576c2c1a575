package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() *models.HistoryEntry {
	return &models.HistoryEntry{
		ID:         "1a2b3c4d-0000-0000-0000-000000000000",
		CreatedAt:  time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC),
		OutputType: models.OutputTestPaper,
		Language:   "Spanish",
		Difficulty: "Hard",
		Quiz: &models.Quiz{
			OutputType:     models.OutputTestPaper,
			Language:       "Spanish",
			Difficulty:     "Hard",
			TotalQuestions: 2,
			Questions: []models.Question{
				{ID: "1", Question: "¿Qué es la fotosíntesis?", Options: []string{"A) uno", "B) dos"}, Answer: "A) uno"},
				{ID: "2", Question: "Second?", Options: []string{"A) x", "B) y"}, Answer: "B) y"},
			},
		},
	}
}

func TestBuildQuizPDF(t *testing.T) {
	data, err := BuildQuizPDF(sampleEntry(), Options{WithAnswers: true})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	without, err := BuildQuizPDF(sampleEntry(), Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(without, []byte("%PDF-")))
}

func TestBuildQuizPDF_Empty(t *testing.T) {
	_, err := BuildQuizPDF(nil, Options{})
	require.ErrorIs(t, err, ErrEmptyQuiz)

	e := sampleEntry()
	e.Quiz.Questions = nil
	_, err = BuildQuizPDF(e, Options{})
	require.ErrorIs(t, err, ErrEmptyQuiz)
}

func TestWriteQuizPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "quiz.pdf")
	require.NoError(t, WriteQuizPDF(path, sampleEntry(), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "quizera-test-paper-1a2b3c4d.pdf", DefaultFileName(sampleEntry()))
	assert.Equal(t, "quizera-quiz.pdf", DefaultFileName(&models.HistoryEntry{}))
}

func hindiEntry() *models.HistoryEntry {
	e := sampleEntry()
	e.Language = "Hindi"
	e.Quiz.Language = "Hindi"
	e.Quiz.Questions[0] = models.Question{
		ID:       "1",
		Question: "भारत की राजधानी क्या है?",
		Options:  []string{"A) नई दिल्ली", "B) मुंबई"},
		Answer:   "A) नई दिल्ली",
	}
	return e
}

func TestBuildQuizPDF_NonLatinScriptRefused(t *testing.T) {
	_, err := BuildQuizPDF(hindiEntry(), Options{WithAnswers: true})
	require.ErrorIs(t, err, ErrUnsupportedText)
	assert.Contains(t, err.Error(), "Hindi")

	path := filepath.Join(t.TempDir(), "hindi.pdf")
	require.ErrorIs(t, WriteQuizPDF(path, hindiEntry(), Options{}), ErrUnsupportedText)
	assert.NoFileExists(t, path, "nothing is written for a quiz that cannot be rendered")
}

func TestCheckSupported(t *testing.T) {
	require.NoError(t, CheckSupported(sampleEntry()))
	require.NoError(t, CheckSupported(nil))

	e := sampleEntry()
	e.Quiz.Questions[1].Question = "L’été “chaud” coûte 5 € – vrai?"
	require.NoError(t, CheckSupported(e), "Windows-1252 punctuation is drawable")

	e = sampleEntry()
	e.Quiz.Questions[1].Options = []string{"A) 東京", "B) x"}
	require.ErrorIs(t, CheckSupported(e), ErrUnsupportedText)
}
