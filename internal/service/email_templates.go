package service

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const emailLayout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
{{template "content" .}}
</body>
</html>{{end}}`

var emailContent = map[string]string{
	"welcome": `{{define "content"}}<div style="text-align: center; margin-bottom: 30px;"><h1 style="color: #1a365d;">📚 HashEBooks</h1></div>
<div style="background-color: #f7fafc; border-radius: 8px; padding: 30px; margin-bottom: 20px;">
<h2 style="color: #2d3748; margin-top: 0;">Welcome{{if .Name}}, {{.Name}}{{end}}!</h2>
<p style="color: #4a5568; font-size: 16px;">Thank you for signing up in HashEBooks.</p>
<p style="color: #4a5568; font-size: 16px;">You can now upload, share, and read books for free. We're excited to have you as part of our reading community!</p>
</div>
<div style="text-align: center; color: #718096; font-size: 14px; margin-top: 30px;"><p>Regards,</p><p style="font-weight: bold; color: #2d3748;">ADMIN</p></div>{{end}}`,

	"book_approved": `{{define "content"}}<h1 style="color: #16a34a;">Great news, {{.Name}}! 🎉</h1>
<p style="font-size: 16px;">Your book <strong>"{{.Title}}"</strong> has been reviewed and approved by our team.</p>
<p style="font-size: 16px;">It's now live and available for everyone to read in our library!</p>
<div style="margin: 30px 0; padding: 20px; background: #f0fdf4; border-radius: 8px; border-left: 4px solid #16a34a;"><p style="margin: 0; color: #166534;">Thank you for contributing to our community. Keep sharing great content!</p></div>
<p style="font-size: 14px; color: #666;">Best regards,<br/>The HasheBooks Team</p>{{end}}`,

	"book_rejected": `{{define "content"}}<h1 style="color: #dc2626;">Update on your submission</h1>
<p style="font-size: 16px;">Hi {{.Name}},</p>
<p style="font-size: 16px;">Unfortunately, your book <strong>"{{.Title}}"</strong> was not approved after review.</p>
<div style="margin: 30px 0; padding: 20px; background: #fef2f2; border-radius: 8px; border-left: 4px solid #dc2626;"><p style="margin: 0; color: #991b1b;">This could be due to content guidelines, formatting issues, or other quality concerns.</p></div>
<p style="font-size: 16px;">You're welcome to make changes and resubmit your book for another review.</p>
<p style="font-size: 14px; color: #666;">Best regards,<br/>The HasheBooks Team</p>{{end}}`,

	"auth_code": `{{define "content"}}<h1 style="color: #1a365d;">📚 HashEBooks</h1>
<h2 style="color: #2d3748;">{{if .Name}}Hello {{.Name}}{{else}}Hello{{end}},</h2>
<p style="font-size: 16px;">{{.Intro}}</p>
<div style="background-color: #f7fafc; border-radius: 8px; padding: 20px; text-align: center; margin: 20px 0;"><span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #1a365d;">{{.Code}}</span></div>
<p style="font-size: 14px; color: #718096;">This code will expire in 1 hour.{{if .Notice}} {{.Notice}}{{end}}</p>
<p style="font-size: 14px; color: #718096;">Regards,<br/>HashEBooks Support</p>{{end}}`,
}

var emailTemplates = mustParseEmailTemplates()

func mustParseEmailTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(emailContent))
	for name, body := range emailContent {
		t := template.Must(template.New(name).Parse(emailLayout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}

type emailData struct {
	Name   string
	Title  string
	Code   string
	Intro  string
	Notice string
}

func renderEmail(name string, data emailData) (string, error) {
	t, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}

var plainTextPolicy = bluemonday.StrictPolicy()

// plainText strips markup from user-controlled text placed in headers such as
// the subject line.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(s)))
}

type authEmailContent struct {
	subject string
	intro   string
	notice  string
}

func authEmailFor(action string) authEmailContent {
	switch action {
	case "signup":
		return authEmailContent{
			subject: "Verify your HashEBooks account",
			intro:   "Thank you for signing up for HashEBooks! Please use the verification code below to complete your registration:",
			notice:  "If you didn't request this, please ignore this email.",
		}
	case "recovery", "magiclink":
		return authEmailContent{
			subject: "Reset your HashEBooks password",
			intro:   "We received a request to reset your password. Use the code below to set a new password:",
			notice:  "If you didn't request a password reset, please ignore this email.",
		}
	case "email_change":
		return authEmailContent{
			subject: "Confirm your new email for HashEBooks",
			intro:   "Please use the code below to confirm your new email address:",
			notice:  "If you didn't request this change, please contact support immediately.",
		}
	default:
		return authEmailContent{
			subject: "Your HashEBooks verification code",
			intro:   "Here is your verification code:",
		}
	}
}
