package cart

import "context"

// Repository stores one cart per patient.
type Repository interface {
	// Get returns the user's cart. A user with no saved cart gets an
	// empty cart, not an error.
	Get(ctx context.Context, userID string) (*Cart, error)
	// Put replaces the user's cart. Last write wins.
	Put(ctx context.Context, c *Cart) error
}
