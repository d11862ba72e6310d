package domain

import "time"

type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCustomer(id, name, email string) Customer {
	now := time.Now().UTC()
	return Customer{ID: id, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
}
