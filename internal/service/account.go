package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finexus/tradedesk/internal/auth"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
)

// AccountService handles registration and login.
type AccountService struct {
	repo         repository.UserRepository
	startingCash decimal.Decimal
	logger       *logrus.Entry
}

func NewAccountService(repo repository.UserRepository, startingCash decimal.Decimal, logger *logrus.Logger) *AccountService {
	return &AccountService{
		repo:         repo,
		startingCash: startingCash,
		logger:       logger.WithField("component", "account-service"),
	}
}

// Register creates an account with the configured starting cash balance.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CashBalance:  s.startingCash,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithField("userId", user.ID).Info("user registered")
	return &user, nil
}

// Login verifies credentials and returns the user profile. Unknown emails
// and bad passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.UserByID(ctx, id)
}
