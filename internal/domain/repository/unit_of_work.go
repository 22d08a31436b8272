package repository

import "context"

// UnitOfWork gives access to repositories bound to one transaction.
type UnitOfWork interface {
	Users() UserRepository
	Bindings() AuthBindingRepository
	ScopeSets() ScopeSetRepository
}

// Store exposes non transactional repositories and opens transactions.
// fn runs inside a single transaction: returning an error rolls it back.
type Store interface {
	UnitOfWork
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}
