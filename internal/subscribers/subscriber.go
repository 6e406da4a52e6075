package subscribers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Subscriber is one row of the subscribers table.
type Subscriber struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Level        int       `json:"level"`
	Media        string    `json:"media"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// LevelDisplay renders the level for listings.
func (s Subscriber) LevelDisplay() string {
	return fmt.Sprintf("level %d", s.Level)
}

// NewSubscriber carries the fields required to add a subscriber.
type NewSubscriber struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"required,max=200"`
	Level int    `json:"level" validate:"gte=1,lte=3"`
	Media string `json:"media" validate:"max=200"`
}

// Patch names the fields to change; nil fields are left as they are.
type Patch struct {
	Email *string `json:"email" validate:"omitnil,email,max=254"`
	Name  *string `json:"name" validate:"omitnil,min=1,max=200"`
	Level *int    `json:"level" validate:"omitnil,gte=1,lte=3"`
	Media *string `json:"media" validate:"omitnil,max=200"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Level == nil && p.Media == nil
}

var (
	// ErrInvalidSubscriber wraps validation failures for new subscribers.
	ErrInvalidSubscriber = errors.New("invalid subscriber")
	// ErrInvalidPatch wraps validation failures for updates, including empty patches.
	ErrInvalidPatch = errors.New("invalid subscriber patch")
	// ErrNotFound is returned when no row matches an email.
	ErrNotFound = errors.New("subscriber not found")
)

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
