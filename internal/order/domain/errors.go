package domain

import "errors"

// Workflow outcomes. Adapters wrap these with %w so callers can match the
// kind with errors.Is while keeping the underlying detail in the message.
var (
	ErrCustomerNotFound  = errors.New("cannot create an order for a customer that does not exist")
	ErrProductNotFound   = errors.New("cannot create an order with a product that does not exist")
	ErrInsufficientStock = errors.New("cannot create an order with an unavailable product quantity")
	ErrOrderPersistence  = errors.New("order could not be persisted")
	ErrInventoryUpdate   = errors.New("stock could not be decremented for a persisted order")

	ErrOrderNotFound = errors.New("order does not exist")
	ErrInvalidInput  = errors.New("invalid request")
)
