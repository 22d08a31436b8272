package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/userauth-api/internal/domain/repository"
)

// Store реализует repository.Store поверх gorm.
type Store struct {
	db        *gorm.DB
	users     *UserRepo
	bindings  *AuthBindingRepo
	scopeSets *ScopeSetRepo
}

// NewStore wraps db; the same instance serves the non transactional repositories.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		users:     NewUserRepo(db),
		bindings:  NewAuthBindingRepo(db),
		scopeSets: NewScopeSetRepo(db),
	}
}

func (s *Store) Users() repository.UserRepository { return s.users }
func (s *Store) Bindings() repository.AuthBindingRepository { return s.bindings }
func (s *Store) ScopeSets() repository.ScopeSetRepository { return s.scopeSets }

// InTx runs fn in a database transaction. The transaction is rolled back when fn
// returns an error or ctx is cancelled before commit.
func (s *Store) InTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txUnit{
			users:     NewUserRepo(tx),
			bindings:  NewAuthBindingRepo(tx),
			scopeSets: NewScopeSetRepo(tx),
		})
	})
}

type txUnit struct {
	users     *UserRepo
	bindings  *AuthBindingRepo
	scopeSets *ScopeSetRepo
}

func (u *txUnit) Users() repository.UserRepository { return u.users }
func (u *txUnit) Bindings() repository.AuthBindingRepository { return u.bindings }
func (u *txUnit) ScopeSets() repository.ScopeSetRepository { return u.scopeSets }

// isUniqueViolation проверяет unique violation для pgconn, lib/pq и драйверов с TranslateError.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite without error translation
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
