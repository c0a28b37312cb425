package domain

import "time"

type User struct {
	ID             int64
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	AvatarURL      string
	IsActive       bool
	CreatedAt      time.Time
}

// EmailToken — одноразовый токен подтверждения почты.
type EmailToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
}

type Subscriber struct {
	ID               int64
	Email            string
	Name             string
	CreatedAt        time.Time
	LastSubscribedAt time.Time
}

type SupportMessage struct {
	ID          int64
	Name        string
	Email       string
	Phone       string
	RequestType string
	Message     string
	CreatedAt   time.Time
}
