package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geniusbot/core/internal/domain"
)

// Register creates an account bound to the requesting origin, enforcing the
// one-account-per-origin policy. The optional channel handle links the
// external chat identity at creation time.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (domain.Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.Account{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		return domain.Account{}, fmt.Errorf("%w: origin is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return domain.Account{}, err
	}
	channel := strings.TrimSpace(req.ChannelHandle)
	if channel != "" {
		if err := domain.ValidateChannelHandle(channel); err != nil {
			return domain.Account{}, err
		}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	s.identityMu.Lock()
	defer s.identityMu.Unlock()

	if _, err := s.accounts.GetByOrigin(ctx, origin); err == nil {
		return domain.Account{}, domain.ErrDuplicateOrigin
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, err
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return domain.Account{}, fmt.Errorf("%w: username already taken", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, err
	}

	account := domain.Account{
		Username:        username,
		PasswordHash:    passwordHash,
		CreationOrigin:  origin,
		LinkedChannelID: channel,
		CreatedAt:       s.nowFn(),
	}

	// Collision on a short opaque ID is unlikely but not impossible; retry a
	// bounded number of times before giving up.
	for attempt := 0; attempt < s.cfg.IDAttempts; attempt++ {
		account.ID = newAccountID()
		if _, err := s.accounts.GetByID(ctx, account.ID); errors.Is(err, domain.ErrNotFound) {
			if err := s.accounts.Create(ctx, account); err != nil {
				return domain.Account{}, err
			}
			return account, nil
		} else if err != nil {
			return domain.Account{}, err
		}
	}
	return domain.Account{}, domain.ErrIDAllocationExhausted
}

// AccountByID looks an account up by its opaque ID.
func (s *Service) AccountByID(ctx context.Context, id string) (domain.Account, error) {
	return s.accounts.GetByID(ctx, strings.TrimSpace(id))
}

// AccountByOrigin looks an account up by its bound origin.
func (s *Service) AccountByOrigin(ctx context.Context, origin string) (domain.Account, error) {
	return s.accounts.GetByOrigin(ctx, strings.TrimSpace(origin))
}

// AccountByUsername resolves the web login identifier.
func (s *Service) AccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
}

// AccountByChannel resolves the chat front ends' identifier.
func (s *Service) AccountByChannel(ctx context.Context, channelHandle string) (domain.Account, error) {
	if err := domain.ValidateChannelHandle(channelHandle); err != nil {
		return domain.Account{}, err
	}
	return s.accounts.GetByChannel(ctx, strings.TrimSpace(channelHandle))
}

// LinkChannel binds or re-binds the external chat handle for an account.
func (s *Service) LinkChannel(ctx context.Context, accountID, channelHandle string) error {
	channelHandle = strings.TrimSpace(channelHandle)
	if err := domain.ValidateChannelHandle(channelHandle); err != nil {
		return err
	}

	s.identityMu.Lock()
	defer s.identityMu.Unlock()

	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return err
	}
	return s.accounts.SetChannel(ctx, accountID, channelHandle)
}
