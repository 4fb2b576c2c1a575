// Package session persists the authenticated session between runs: the
// bearer token and a snapshot of the user record, stored under two fixed keys
// that are always written and removed together.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/client/repositories/kv"
	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/cryptox"
	"github.com/dmitrijs2005/quizera/internal/dbx"
	"github.com/dmitrijs2005/quizera/internal/logging"
)

// DB is a handle that can both run queries and start transactions, such as
// *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

// Store keeps the session in the local key/value table. Values are sealed
// with the configured Sealer; a nil Sealer stores them as is.
type Store struct {
	db     DB
	sealer *cryptox.Sealer
	log    logging.Logger

	newRepo func(dbx.DBTX) kv.Repository
}

func NewStore(db DB, sealer *cryptox.Sealer, log logging.Logger) *Store {
	return &Store{
		db:     db,
		sealer: sealer,
		log:    log.With("component", "session_store"),
		newRepo: func(tx dbx.DBTX) kv.Repository {
			return kv.NewSQLiteRepository(tx)
		},
	}
}

func (s *Store) seal(b []byte) []byte {
	if s.sealer == nil {
		return b
	}
	return s.sealer.Seal(b)
}

func (s *Store) open(b []byte) ([]byte, error) {
	if s.sealer == nil {
		return b, nil
	}
	return s.sealer.Open(b)
}

// Save writes the token and user in one transaction.
func (s *Store) Save(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("%w: token and user are both required", common.ErrorValidation)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	tokenBytes := []byte(token)
	sealedToken := s.seal(tokenBytes)
	sealedUser := s.seal(data)
	if s.sealer != nil {
		common.WipeByteArray(tokenBytes)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if err := repo.Set(ctx, common.TokenKey, sealedToken); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserKey, sealedUser)
	})
}

// Clear removes both keys in one transaction. Clearing an empty store is not
// an error.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if err := repo.Delete(ctx, common.TokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.UserKey)
	})
}

// DropToken removes only the token key. Load treats a store without a token
// as empty, so this is enough to end the session when Clear keeps failing.
func (s *Store) DropToken(ctx context.Context) error {
	return s.newRepo(s.db).Delete(ctx, common.TokenKey)
}

// Load returns the stored session, or ("", nil) when either key is missing or
// anything stored cannot be read back. It never fails.
func (s *Store) Load(ctx context.Context) (string, *models.User) {
	repo := s.newRepo(s.db)

	rawToken, err := repo.Get(ctx, common.TokenKey)
	if err != nil {
		s.log.Warn(ctx, "read stored token", "error", err)
		return "", nil
	}
	rawUser, err := repo.Get(ctx, common.UserKey)
	if err != nil {
		s.log.Warn(ctx, "read stored user", "error", err)
		return "", nil
	}
	if rawToken == nil || rawUser == nil {
		return "", nil
	}

	token, err := s.open(rawToken)
	if err != nil || len(token) == 0 {
		s.log.Warn(ctx, "stored token unreadable", "error", err)
		return "", nil
	}
	userJSON, err := s.open(rawUser)
	if err != nil {
		s.log.Warn(ctx, "stored user unreadable", "error", err)
		return "", nil
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil || user.Email == "" {
		s.log.Warn(ctx, "stored user malformed", "error", err)
		return "", nil
	}

	return string(token), &user
}
