package email

import "context"

// Provider delivers a rendered message.
type Provider interface {
	Send(ctx context.Context, email *Email) error
	Validate() error
}

// TemplateRenderer renders named templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
