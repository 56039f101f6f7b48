package model

import "time"

// User is a back-office account as seen by this subsystem. User lifecycle is
// owned elsewhere; print jobs reference users by ID only, and a job survives
// deletion of its owner until orphan reconciliation removes it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
