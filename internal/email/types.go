package email

// Attachment is a file sent alongside the message body.
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Email is a single outgoing message.
type Email struct {
	To          []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

// TemplateData holds values substituted into a template.
type TemplateData map[string]interface{}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}
