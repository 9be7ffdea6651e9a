package models

import "time"

// OtpRetention is how long an OTP row outlives its expiry before it is purged.
const OtpRetention = 24 * time.Hour

type Otp struct {
	BaseModel
	Email  string    `gorm:"size:255;not null;uniqueIndex:idx_otp_email_kind,priority:1" json:"email"`
	Kind   OtpKind   `gorm:"column:type;type:varchar(20);not null;uniqueIndex:idx_otp_email_kind,priority:2" json:"type"`
	Code   string    `gorm:"size:6;not null" json:"-"`
	Link   string    `gorm:"size:255;index" json:"-"`
	Expiry time.Time `gorm:"not null;index" json:"expiry"`
}

// DeleteAt is the instant the row becomes eligible for purging.
func (o *Otp) DeleteAt() time.Time {
	return o.Expiry.Add(OtpRetention)
}
