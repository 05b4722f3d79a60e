package service

import (
	"time"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// UserInput is the inbound payload accepted for a user upsert.
type UserInput struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Address        *domain.Address
	PaymentMethods []domain.PaymentMethod
}

// TransactionInput is the inbound payload accepted for a transaction upsert.
type TransactionInput struct {
	ID          string
	FromUserID  string
	ToUserID    string
	Amount      float64
	Currency    string
	Status      string
	Timestamp   *time.Time
	IPAddress   string
	DeviceID    string
	Location    *domain.Location
	Description string
}

// ListUsersFilter narrows a user listing.
type ListUsersFilter struct {
	Email string
	Phone string
	Limit int
}

// ListTransactionsFilter narrows a transaction listing.
type ListTransactionsFilter struct {
	Status    string
	Currency  string
	MinAmount float64
	MaxAmount float64
	Limit     int
}
