package export

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/quizera/internal/client/models"
)

// ErrUnsupportedText is returned for quizzes the built-in PDF fonts cannot
// render. They cover the Windows-1252 repertoire only, so scripts such as
// Devanagari would come out as placeholder dots.
var ErrUnsupportedText = errors.New("PDF export supports Latin-script quizzes only")

// cp1252 code points outside Latin-1.
var cp1252Extra = map[rune]bool{
	'€': true, '‚': true, 'ƒ': true, '„': true, '…': true, '†': true, '‡': true,
	'ˆ': true, '‰': true, 'Š': true, '‹': true, 'Œ': true, 'Ž': true, '‘': true,
	'’': true, '“': true, '”': true, '•': true, '–': true, '—': true, '˜': true,
	'™': true, 'š': true, '›': true, 'œ': true, 'ž': true, 'Ÿ': true,
}

func encodable(s string) bool {
	for _, r := range s {
		// C1 controls have no cp1252 glyph either.
		if (r < 0x100 && (r < 0x80 || r > 0x9f)) || cp1252Extra[r] {
			continue
		}
		return false
	}
	return true
}

// CheckSupported reports ErrUnsupportedText when any text of e falls outside
// what the PDF fonts can draw.
func CheckSupported(e *models.HistoryEntry) error {
	if e == nil || e.Quiz == nil {
		return nil
	}
	q := e.Quiz
	texts := []string{q.OutputType, q.Language, q.Difficulty, e.OutputType, e.Language, e.Difficulty}
	for _, question := range q.Questions {
		texts = append(texts, question.Question, question.Answer)
		texts = append(texts, question.Options...)
	}
	for _, s := range texts {
		if !encodable(s) {
			lang := firstNonEmpty(q.Language, e.Language)
			if lang == "" {
				return ErrUnsupportedText
			}
			return fmt.Errorf("%w (quiz language: %s)", ErrUnsupportedText, lang)
		}
	}
	return nil
}
