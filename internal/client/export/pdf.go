// Package export renders generated quizzes to files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/filex"
	"github.com/phpdave11/gofpdf"
)

var ErrEmptyQuiz = errors.New("quiz has no questions")

// Options control what goes into the document.
type Options struct {
	// WithAnswers prints the answer under every question.
	WithAnswers bool
}

// BuildQuizPDF renders the quiz of e as an A4 document.
func BuildQuizPDF(e *models.HistoryEntry, opts Options) ([]byte, error) {
	if e == nil || e.Quiz == nil || len(e.Quiz.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	if err := CheckSupported(e); err != nil {
		return nil, err
	}
	q := e.Quiz

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := "Generated " + firstNonEmpty(q.OutputType, e.OutputType, models.OutputQuiz)
	pdf.SetTitle(title, true)
	pdf.SetCreator("QuizEra", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	total := q.TotalQuestions
	if total == 0 {
		total = len(q.Questions)
	}
	meta := [][2]string{
		{"Language", firstNonEmpty(q.Language, e.Language)},
		{"Difficulty", firstNonEmpty(q.Difficulty, e.Difficulty)},
		{"Total Questions", fmt.Sprint(total)},
	}
	if !e.CreatedAt.IsZero() {
		meta = append(meta, [2]string{"Generated", e.CreatedAt.Format("2006-01-02 15:04")})
	}
	for _, m := range meta {
		pdf.Cell(0, 6, tr(m[0]+": "+m[1]))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	for i, question := range q.Questions {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("Q%d. %s", i+1, question.Question)), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		for _, opt := range question.Options {
			pdf.MultiCell(0, 6, tr("    "+opt), "", "L", false)
		}
		if opts.WithAnswers && strings.TrimSpace(question.Answer) != "" {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 6, tr("Answer: "+question.Answer), "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteQuizPDF renders e and writes it to path atomically.
func WriteQuizPDF(path string, e *models.HistoryEntry, opts Options) error {
	data, err := BuildQuizPDF(e, opts)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DefaultFileName suggests a file name for e, such as
// "quizera-test-paper-1a2b3c4d.pdf".
func DefaultFileName(e *models.HistoryEntry) string {
	kind := "quiz"
	if e.Quiz != nil && e.Quiz.OutputType != "" {
		kind = e.Quiz.OutputType
	} else if e.OutputType != "" {
		kind = e.OutputType
	}
	kind = strings.ToLower(strings.Join(strings.Fields(kind), "-"))

	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := "quizera-" + kind
	if id != "" {
		name += "-" + id
	}
	return filepath.Clean(name + ".pdf")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
