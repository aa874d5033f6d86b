package dto

import (
	"time"

	"github.com/google/uuid"
)

type AccountResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

type BootstrapAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=255"`
}

type BalanceResponse struct {
	Credits int `json:"credits"`
}

type TransactionResponse struct {
	Id           uuid.UUID  `json:"id"`
	Amount       int        `json:"amount"`
	Type         string     `json:"type"`
	GenerationId *uuid.UUID `json:"generation_id,omitempty"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
}

type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type PagedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
