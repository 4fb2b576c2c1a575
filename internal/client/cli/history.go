package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quizera/internal/client/export"
	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/client/services"
	"github.com/dmitrijs2005/quizera/internal/common"
)

var ErrAmbiguousID = errors.New("ambiguous id")

// History lists every quiz generated on this device, newest first.
func (a *App) History(ctx context.Context) error {
	return a.enter(ctx, ViewHistory, func(ctx context.Context) error {
		entries, err := a.quiz.Recent(ctx, 0)
		if err != nil {
			a.log.Warn(ctx, "load history", "error", err)
			printlnFn("Could not load history.")
			return err
		}
		if len(entries) == 0 {
			printlnFn("No quizzes yet.")
			return nil
		}
		printEntries(entries)
		return nil
	})
}

// Export writes a quiz to a PDF file. args may hold an id or id prefix; the
// default is the quiz generated last.
func (a *App) Export(ctx context.Context, args []string) error {
	return a.enter(ctx, ViewExport, func(ctx context.Context) error {
		var ref string
		if len(args) > 0 {
			ref = args[0]
		}

		entry, err := a.findEntry(ctx, ref)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorNotFound):
				printlnFn(services.MsgHistoryNotFound)
			case errors.Is(err, ErrAmbiguousID):
				printlnFn("Several quizzes match " + ref + ", use a longer id.")
			default:
				printlnFn("Could not load the quiz.")
			}
			return err
		}

		if err := export.CheckSupported(entry); err != nil {
			printlnFn("Export failed: " + err.Error())
			return err
		}

		def := export.DefaultFileName(entry)
		path, err := getSimpleText(a.reader, "Save as (default "+def+")", a.out)
		if err != nil {
			return err
		}
		if path == "" {
			path = def
		}

		withAnswers, err := GetConfirmation(a.reader, "Include answers?", a.out)
		if err != nil {
			return err
		}

		if err := export.WriteQuizPDF(path, entry, export.Options{WithAnswers: withAnswers}); err != nil {
			a.log.Error(ctx, "export pdf", "path", path, "error", err)
			printlnFn("Export failed: " + err.Error())
			return err
		}
		printlnFn(fmt.Sprintf("Saved %s", path))
		return nil
	})
}

// findEntry resolves a full id, a unique id prefix, or (when ref is empty)
// the latest quiz.
func (a *App) findEntry(ctx context.Context, ref string) (*models.HistoryEntry, error) {
	if ref == "" {
		if last := a.quiz.Last(); last != nil {
			return last, nil
		}
		recent, err := a.quiz.Recent(ctx, 1)
		if err != nil {
			return nil, err
		}
		if len(recent) == 0 {
			return nil, common.ErrorNotFound
		}
		ref = recent[0].ID
	}

	e, err := a.quiz.Get(ctx, ref)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	all, err := a.quiz.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}
	var match string
	for _, c := range all {
		if strings.HasPrefix(c.ID, ref) {
			if match != "" {
				return nil, ErrAmbiguousID
			}
			match = c.ID
		}
	}
	if match == "" {
		return nil, common.ErrorNotFound
	}
	return a.quiz.Get(ctx, match)
}
