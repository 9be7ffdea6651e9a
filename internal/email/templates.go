package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const (
	TemplateOTP          = "otp"
	TemplateIPReset      = "ip_reset"
	TemplatePasswordLink = "password_link"
	TemplateInvoice      = "invoice"
)

// TemplateManager keeps parsed html templates by name.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		templates: make(map[string]*template.Template),
	}
}

// NewDefaultTemplateManager returns a manager preloaded with the built-in templates.
func NewDefaultTemplateManager() (*TemplateManager, error) {
	tm := NewTemplateManager()
	for name, body := range defaultTemplates {
		if err := tm.AddTemplate(name, body); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

var defaultTemplates = map[string]string{
	TemplateOTP: `<div style="font-family:sans-serif">
<h2>Your Sajilo AI verification code</h2>
<p>Use the code below to continue. It expires in {{.Minutes}} minutes.</p>
<p style="font-size:28px;letter-spacing:6px"><b>{{.Code}}</b></p>
</div>`,

	TemplateIPReset: `<div style="font-family:sans-serif">
<h2>New device sign-in</h2>
<p>We noticed a sign-in attempt for {{.Email}} from a new device.</p>
<p>Enter this code to confirm it was you: <b>{{.Code}}</b></p>
<p>The code expires in {{.Minutes}} minutes.</p>
</div>`,

	TemplatePasswordLink: `<div style="font-family:sans-serif">
<h2>Reset your password</h2>
<p><a href="{{.Link}}">Click here to choose a new password</a>.</p>
<p>The link expires in {{.Minutes}} minutes.</p>
</div>`,

	TemplateInvoice: `<div style="font-family:sans-serif">
<h2>Payment received</h2>
<p>Hi {{.Name}}, thank you for your purchase.</p>
<table cellpadding="4">
<tr><td>Invoice</td><td>{{.InvoiceNumber}}</td></tr>
<tr><td>Plan</td><td>{{.Plan}} ({{.BillingCycle}})</td></tr>
<tr><td>Amount</td><td>NPR {{.Price}}</td></tr>
<tr><td>Paid via</td><td>{{.PaymentMethod}}</td></tr>
<tr><td>Transaction</td><td>{{.TransactionCode}}</td></tr>
<tr><td>Date</td><td>{{.IssuedDate}}</td></tr>
</table>
</div>`,
}
