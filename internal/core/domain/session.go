package domain

import "time"

type Session struct {
	ID        string
	UserID    string
	Role      Role
	ExpiresAt time.Time
}
