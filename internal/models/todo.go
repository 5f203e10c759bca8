package models

import "time"

// Todo belongs to exactly one user through OwnerID.
type Todo struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoPatch is a partial update. Nil pointers leave the column unchanged;
// SetDescription with a nil Description clears it.
type TodoPatch struct {
	Title          *string
	Description    *string
	SetDescription bool
	IsCompleted    *bool
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && !p.SetDescription && p.IsCompleted == nil
}
