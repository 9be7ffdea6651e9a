package models

import "time"

// InvoiceRetention is how long an unpaid invoice is kept after it was issued.
const InvoiceRetention = 48 * time.Hour

type Invoice struct {
	BaseModel
	UserID          string        `gorm:"size:36;not null;index:idx_invoice_open,priority:1" json:"userId"`
	InvoiceNumber   string        `gorm:"size:64;uniqueIndex;not null" json:"invoiceNumber"`
	Plan            Plan          `gorm:"type:varchar(20);not null;index:idx_invoice_open,priority:2" json:"plan"`
	BillingCycle    BillingCycle  `gorm:"type:varchar(20);not null;index:idx_invoice_open,priority:3" json:"billingCycle"`
	Price           int64         `gorm:"not null;index:idx_invoice_open,priority:4" json:"price"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20);not null;index:idx_invoice_open,priority:5" json:"paymentMethod"`
	Status          InvoiceStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Signature       string        `gorm:"size:255" json:"signature,omitempty"`
	TransactionCode string        `gorm:"size:128" json:"transactionCode,omitempty"`
	IssuedDate      time.Time     `gorm:"not null;index" json:"issuedDate"`
}

// DeleteAt is the instant an unpaid invoice becomes eligible for deletion.
func (i *Invoice) DeleteAt() time.Time {
	return i.IssuedDate.Add(InvoiceRetention)
}
