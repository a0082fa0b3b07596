// Package mailer renders and delivers the workflow's notification
// emails, preferring the Gmail API with an SMTP fallback.
package mailer

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/jonathan/cv-align/internal/workflow"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer renders the embedded HTML email templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates once.
func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

// RenderApproval renders the review-request email.
func (r *Renderer) RenderApproval(data workflow.ApprovalEmailData) (string, error) {
	return r.render("approval.html.tmpl", data)
}

// RenderCompletion renders the post-approval completion email.
func (r *Renderer) RenderCompletion(data workflow.CompletionEmailData) (string, error) {
	return r.render("completion.html.tmpl", data)
}

func (r *Renderer) render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return sb.String(), nil
}
