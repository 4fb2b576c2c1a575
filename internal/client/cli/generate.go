package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quizera/internal/client/models"
)

var sourceOptions = []string{"Text", "PDF", "Image"}

var sourceTypes = map[string]models.SourceType{
	"Text":  models.SourceText,
	"PDF":   models.SourcePDF,
	"Image": models.SourceImage,
}

// getChoice is swapped in tests alongside getSimpleText.
var getChoice = GetChoice

// Generate walks the user through the generation form and prints the quiz.
func (a *App) Generate(ctx context.Context) error {
	return a.enter(ctx, ViewGenerate, func(ctx context.Context) error {
		req, err := a.readGenerateRequest()
		if err != nil {
			printlnFn(err.Error())
			return err
		}

		printlnFn("Generating, this can take a minute...")
		entry, res := a.quiz.Generate(ctx, req)
		if err := report(res); err != nil {
			return err
		}

		printQuiz(entry, true)
		printlnFn(fmt.Sprintf("Saved as %s. Use 'export' to save it as PDF.", shortID(entry.ID)))
		return nil
	})
}

func (a *App) readGenerateRequest() (models.GenerateRequest, error) {
	var req models.GenerateRequest

	src, err := getChoice(a.reader, "Generate from", sourceOptions, a.out)
	if err != nil {
		return req, err
	}
	req.Source = sourceTypes[src]

	if req.Source == models.SourceText {
		req.Text, err = GetMultiline(a.reader, "Paste the text content", a.out)
	} else {
		req.FilePath, err = getSimpleText(a.reader, "Path to the "+src+" file", a.out)
	}
	if err != nil {
		return req, err
	}

	if req.OutputType, err = getChoice(a.reader, "Output type", models.OutputTypes, a.out); err != nil {
		return req, err
	}
	if req.Language, err = getChoice(a.reader, "Language", models.Languages, a.out); err != nil {
		return req, err
	}
	if req.Difficulty, err = getChoice(a.reader, "Difficulty", models.Difficulties, a.out); err != nil {
		return req, err
	}
	req.NumQuestions = models.DefaultNumQuestions
	return req, nil
}

func printQuiz(e *models.HistoryEntry, withAnswers bool) {
	if e == nil || e.Quiz == nil {
		return
	}
	printlnFn(fmt.Sprintf("%s | %s | %s", e.OutputType, e.Language, e.Difficulty))
	for i, q := range e.Quiz.Questions {
		printlnFn(fmt.Sprintf("%d. %s", i+1, q.Question))
		for j, o := range q.Options {
			printlnFn(fmt.Sprintf("   %c) %s", 'a'+j, o))
		}
		if withAnswers && strings.TrimSpace(q.Answer) != "" {
			printlnFn("   Answer: " + q.Answer)
		}
	}
}
