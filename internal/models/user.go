package models

import "time"

const FreeQueryLimit = 5

type User struct {
	BaseModel
	FullName     string     `gorm:"size:120;not null" json:"fullName"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	IPAddress    string     `gorm:"size:64;index" json:"ipAddress"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	LastLogIn    *time.Time `json:"lastLogIn,omitempty"`

	Plan               Plan               `gorm:"type:varchar(20);not null;default:'free'" json:"plan"`
	BillingCycle       BillingCycle       `gorm:"type:varchar(20);not null;default:'none'" json:"billingCycle"`
	SubscriptionStatus SubscriptionStatus `gorm:"type:varchar(20);not null;default:'none';index" json:"subscriptionStatus"`
	PlanStartDate      *time.Time         `json:"planStartDate,omitempty"`
	PlanEndDate        *time.Time         `gorm:"index" json:"planEndDate,omitempty"`
	QueryLimit         int                `gorm:"not null;default:5" json:"queryLimit"`
	UsedQuery          int                `gorm:"not null;default:0" json:"usedQuery"`
}

// SubscriptionLapsed reports whether the paid window has ended at now without being marked expired.
func (u *User) SubscriptionLapsed(now time.Time) bool {
	return u.Plan.IsPaid() &&
		u.PlanEndDate != nil &&
		!u.PlanEndDate.After(now) &&
		u.SubscriptionStatus != SubscriptionStatusExpired
}

type Admin struct {
	BaseModel
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Key          int64      `gorm:"not null" json:"-"`
	IPAddress    string     `gorm:"size:64" json:"ipAddress"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'admin'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	LastLogIn    *time.Time `json:"lastLogIn,omitempty"`
}
