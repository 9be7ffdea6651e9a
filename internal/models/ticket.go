package models

type Ticket struct {
	BaseModel
	Name    string       `gorm:"size:120;not null" json:"name"`
	Email   string       `gorm:"size:255;not null;index" json:"email"`
	Message string       `gorm:"type:text;not null" json:"message"`
	Status  TicketStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
}
