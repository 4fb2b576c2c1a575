package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/client"
	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/client/repositories/history"
	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/logging"
	"github.com/google/uuid"
)

// DashboardHistorySize is how many recent generations the dashboard lists.
const DashboardHistorySize = 5

const opGenerate = "generate"

// QuizService generates quizzes for the signed-in user and keeps a local
// history of them.
//
// Contract:
//   - Generate: validate locally, call the backend, sync the credit balance
//     through AuthService.UpdateCredits and record the result.
//   - Recent, Get, Count: read the history; Clear empties it.
//   - Last: the quiz generated most recently in this process.
type QuizService interface {
	Generate(ctx context.Context, req models.GenerateRequest) (*models.HistoryEntry, Result)
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	Get(ctx context.Context, id string) (*models.HistoryEntry, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Last() *models.HistoryEntry
}

type quizService struct {
	client  client.Client
	auth    AuthService
	history history.Repository
	log     logging.Logger
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	inflight bool
	last     *models.HistoryEntry
}

// NewQuizService constructs a QuizService. timeout bounds a single
// generation request.
func NewQuizService(c client.Client, auth AuthService, hist history.Repository, log logging.Logger, timeout time.Duration) QuizService {
	return &quizService{
		client:  c,
		auth:    auth,
		history: hist,
		log:     log.With("component", "quiz_service"),
		timeout: timeout,
		now:     time.Now,
	}
}

func (q *quizService) begin() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inflight {
		return false
	}
	q.inflight = true
	return true
}

func (q *quizService) end() {
	q.mu.Lock()
	q.inflight = false
	q.mu.Unlock()
}

func (q *quizService) Generate(ctx context.Context, req models.GenerateRequest) (*models.HistoryEntry, Result) {
	user := q.auth.User()
	token := q.auth.Token()
	if q.auth.State() != StateAuthenticated || user == nil || token == "" {
		return nil, Failed(common.MsgNotLoggedIn)
	}

	if req.NumQuestions <= 0 {
		req.NumQuestions = models.DefaultNumQuestions
	}
	if err := ValidateGenerate(req); err != nil {
		return nil, Failed(err.Error())
	}
	if user.Credits <= 0 {
		return nil, Failed(MsgNoCredits)
	}

	if !q.begin() {
		return nil, Failed(common.MsgInProgress)
	}
	defer q.end()

	q.log.Info(ctx, "generating", "source", req.Source, "output_type", req.OutputType,
		"language", req.Language, "difficulty", req.Difficulty)

	var (
		reqCtx context.Context
		cancel context.CancelFunc
	)
	if q.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, q.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var (
		res *models.GenerateResult
		err error
	)
	if req.Source == models.SourceText {
		res, err = q.client.GenerateFromText(reqCtx, token, req)
	} else {
		res, err = q.client.GenerateFromFile(reqCtx, token, req)
	}
	if err != nil {
		return nil, q.failure(ctx, err)
	}

	q.auth.UpdateCredits(ctx, res.CreditsRemaining)

	total := res.Quiz.TotalQuestions
	if total == 0 {
		total = len(res.Quiz.Questions)
	}
	entry := &models.HistoryEntry{
		ID:             uuid.NewString(),
		CreatedAt:      q.now(),
		Source:         req.Source,
		OutputType:     firstNonEmpty(res.Quiz.OutputType, req.OutputType),
		Language:       firstNonEmpty(res.Quiz.Language, req.Language),
		Difficulty:     firstNonEmpty(res.Quiz.Difficulty, req.Difficulty),
		TotalQuestions: total,
		Quiz:           res.Quiz,
	}
	if err := q.history.Add(ctx, entry); err != nil {
		q.log.Warn(ctx, "record history", "error", err)
	}

	q.mu.Lock()
	q.last = entry
	q.mu.Unlock()

	q.log.Info(ctx, "generated", "id", entry.ID, "questions", total, "credits_remaining", res.CreditsRemaining)
	return entry, OK(fmt.Sprintf("%d questions generated. 1 credit used.", total))
}

func (q *quizService) failure(ctx context.Context, err error) Result {
	if errors.Is(err, client.ErrUnauthorized) {
		q.log.Info(ctx, "token rejected during generation, signing out")
		q.auth.Logout(ctx)
		return Failed(common.MsgSessionExpired)
	}

	var be *client.BackendError
	if errors.As(err, &be) && be.Message != "" {
		q.log.Info(ctx, "generation rejected", "status", be.Status, "error", be.Message)
		return Failed(be.Message)
	}

	q.log.Warn(ctx, "generation failed", "error", err)
	return Failed(MsgGenerateFailed)
}

func (q *quizService) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	return q.history.ListRecent(ctx, limit)
}

func (q *quizService) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	return q.history.GetByID(ctx, id)
}

func (q *quizService) Count(ctx context.Context) (int, error) {
	return q.history.Count(ctx)
}

func (q *quizService) Clear(ctx context.Context) error {
	q.mu.Lock()
	q.last = nil
	q.mu.Unlock()
	return q.history.Clear(ctx)
}

func (q *quizService) Last() *models.HistoryEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.last
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
