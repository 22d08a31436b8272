package authprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

// CreateOrUpdate binds the external identity of payload to userID according to mode.
//
// The binding is resolved by userID, or by the payload's external id when userID is 0.
// Expected refusals (AlreadyBound, NotBound, failed login) are reported in the result;
// the error return is reserved for invalid input, hook failures, conflicts and store faults.
// The whole decision runs in one transaction and is retried once if a concurrent writer
// takes the same slot first.
func (p *Provider[P]) CreateOrUpdate(ctx context.Context, actorID, userID uint, payload P, mode Mode) (UCLResult, error) {
	if err := mode.Validate(); err != nil {
		return UCLResult{}, err
	}
	if err := p.codec.Validate(payload); err != nil {
		return UCLResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if mode.Bind == CreateOnly && userID == 0 {
		return UCLResult{}, fmt.Errorf("%w: CreateOnly requires a user id", ErrInvalidMode)
	}

	externalID := p.codec.ExternalID(payload)

	var (
		res     UCLResult
		written bool
	)
	attempt := func() error {
		return p.store.InTx(ctx, func(uow repository.UnitOfWork) error {
			var err error
			res, written, err = p.decide(ctx, uow, userID, externalID, payload, mode)
			return err
		})
	}

	err := attempt()
	if errors.Is(err, repository.ErrDuplicateBinding) {
		p.logger.Warn("binding conflict, retrying", "provider", p.name, "user_id", userID, "error", err)
		err = attempt()
		if errors.Is(err, repository.ErrDuplicateBinding) {
			err = fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
	if err != nil {
		p.logger.Error("binding request failed", "provider", p.name, "user_id", userID, "actor_id", actorID, "mode", mode.String(), "error", err)
		return UCLResult{}, err
	}

	// committed: the result is returned even if ctx is cancelled
	if written {
		p.invalidate(ctx, externalID)
	}
	p.logResult(actorID, userID, mode, res)
	return res, nil
}

// decide executes one attempt of the create/update/login decision inside uow.
// written reports whether any row was changed.
func (p *Provider[P]) decide(ctx context.Context, uow repository.UnitOfWork, userID uint, externalID string, payload P, mode Mode) (UCLResult, bool, error) {
	binding, err := p.resolve(ctx, uow, userID, externalID)
	if err != nil {
		return UCLResult{}, false, err
	}

	if binding == nil {
		if !mode.Bind.allowsCreate() || userID == 0 {
			return p.notBound(mode), false, nil
		}
		return p.create(ctx, uow, userID, externalID, payload, mode)
	}

	res := UCLResult{UserID: binding.UserID}
	if mode.Bind == CreateOnly || (mode.Bind != LoginOnly && binding.ExternalAccountID != externalID) {
		res.OperationResult = UCError
		res.Err = ErrAlreadyBound
		return res, false, nil
	}

	// challenge runs before any write: a failed login leaves the binding untouched
	if mode.Login != NoLogin && !p.codec.Challenge(binding, payload) {
		res.LoginResult = loginFailure(LoginInvalidCredentials, "payload does not match the bound account")
		return res, false, nil
	}

	written := false
	if mode.Bind.allowsUpdate() {
		p.codec.Apply(payload, binding)
		if err := uow.Bindings().Update(ctx, binding); err != nil {
			return UCLResult{}, false, err
		}
		res.OperationResult = UCUpdated
		written = true
	}

	if mode.Login != NoLogin {
		loggedIn, err := p.completeLogin(ctx, uow, binding, mode.Login)
		if err != nil {
			return UCLResult{}, false, err
		}
		res.LoginResult = loginSuccess(binding.UserID)
		written = written || loggedIn
	}
	return res, written, nil
}

func (p *Provider[P]) resolve(ctx context.Context, uow repository.UnitOfWork, userID uint, externalID string) (*entity.AuthBinding, error) {
	var (
		binding *entity.AuthBinding
		err     error
	)
	if userID != 0 {
		binding, err = uow.Bindings().GetByUserID(ctx, p.name, userID)
	} else {
		binding, err = uow.Bindings().GetByExternalID(ctx, p.name, externalID)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return binding, err
}

func (p *Provider[P]) notBound(mode Mode) UCLResult {
	var res UCLResult
	if mode.Bind != LoginOnly {
		res.OperationResult = UCError
		res.Err = ErrNotBound
	}
	if mode.Login != NoLogin {
		res.LoginResult = loginFailure(LoginUnregistered, "no account is bound to this identity")
	}
	return res
}

func (p *Provider[P]) create(ctx context.Context, uow repository.UnitOfWork, userID uint, externalID string, payload P, mode Mode) (UCLResult, bool, error) {
	taken, err := uow.Bindings().GetByExternalID(ctx, p.name, externalID)
	switch {
	case err == nil:
		return UCLResult{OperationResult: UCError, Err: ErrAlreadyBound, UserID: taken.UserID}, false, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return UCLResult{}, false, err
	}

	binding := &entity.AuthBinding{
		Provider:          p.name,
		ExternalAccountID: externalID,
		UserID:            userID,
		Payload:           entity.JSONMap{},
	}
	p.codec.Apply(payload, binding)
	if err := uow.Bindings().Create(ctx, binding); err != nil {
		return UCLResult{}, false, err
	}

	if p.ext != nil {
		if err := p.ext.OnCreated(ctx, uow, binding); err != nil {
			return UCLResult{}, false, fmt.Errorf("%w: %w", ErrExtensionHookFailed, err)
		}
	}

	res := UCLResult{OperationResult: UCCreated, UserID: userID}
	if mode.Login != NoLogin {
		// binding was built from this payload, the challenge cannot fail
		if _, err := p.completeLogin(ctx, uow, binding, mode.Login); err != nil {
			return UCLResult{}, false, err
		}
		res.LoginResult = loginSuccess(userID)
	}
	return res, true, nil
}

// completeLogin applies the side effects of a successful actual login.
func (p *Provider[P]) completeLogin(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding, policy LoginPolicy) (bool, error) {
	if policy != ActualLogin {
		return false, nil
	}
	now := p.now()
	binding.LastLoginTime = &now
	if err := uow.Bindings().Update(ctx, binding); err != nil {
		return false, fmt.Errorf("failed to record login of user %d: %w", binding.UserID, err)
	}
	return true, nil
}

func (p *Provider[P]) logResult(actorID, userID uint, mode Mode, res UCLResult) {
	attrs := []any{
		"provider", p.name,
		"user_id", res.UserID,
		"requested_user_id", userID,
		"actor_id", actorID,
		"mode", mode.String(),
		"result", res.OperationResult.String(),
	}
	if res.Err != nil {
		attrs = append(attrs, "refusal", res.Err.Error())
	}
	if res.LoginResult != nil {
		attrs = append(attrs, "login_success", res.LoginResult.Success)
		if !res.LoginResult.Success {
			attrs = append(attrs, "login_failure", string(res.LoginResult.FailureCode))
		}
	}
	p.logger.Info("binding request", attrs...)
}
