package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the person wallets belong to.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	NationalID string    `json:"national_id"`
	CreatedAt  time.Time `json:"created_at"`
}
