// Package service implements the application logic between the HTTP layer
// and persistence: accounts, trade execution, portfolio reporting, market
// data refresh, and recommendations.
package service

import (
	"errors"

	"github.com/finexus/tradedesk/internal/repository"
)

var (
	ErrValidation         = errors.New("validation_error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownStock       = errors.New("unknown stock")
	ErrNotFound           = repository.ErrNotFound
	ErrDuplicateEmail     = repository.ErrDuplicateEmail
	ErrInsufficientFunds  = repository.ErrInsufficientFunds
)
