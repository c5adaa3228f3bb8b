package operator

import "time"

// Operator is a staff account allowed to trigger and inspect dispatches.
type Operator struct {
	ID           int
	Name         string
	Email        string
	HashPassword string
	Role         string // admin or operator
	Status       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	GetByID(id int) (*Operator, error)
	GetByEmail(email string) (*Operator, error)
	Create(op *Operator) (*Operator, error)
}
