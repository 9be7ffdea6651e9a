package models

import "time"

// Session is one logged-in device. At most one active row exists per (user, ip, user agent).
type Session struct {
	BaseModel
	UserID       string        `gorm:"size:36;not null;index:idx_session_device,priority:1" json:"userId"`
	IPAddress    string        `gorm:"size:64;not null;index:idx_session_device,priority:2" json:"ipAddress"`
	UserAgent    string        `gorm:"size:255;not null;index:idx_session_device,priority:3" json:"userAgent"`
	RefreshToken string        `gorm:"size:512;uniqueIndex;not null" json:"-"`
	Status       SessionStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ExpiresAt    time.Time     `gorm:"not null;index" json:"expiresAt"`
}

// Usable reports whether the session can still authenticate a refresh at now.
func (s *Session) Usable(now time.Time) bool {
	return s.Status == SessionStatusActive && s.ExpiresAt.After(now)
}
