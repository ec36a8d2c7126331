package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
)

// Known template names.
const (
	ResetPassword = "reset_password"
	Welcome       = "welcome"
)

var tpls = template.Must(template.New("emails").Parse(`
{{define "reset_password"}}
<p>Hi {{.Username}},</p>
<p>You requested a password reset for your account.</p>
<p><a href="{{.ResetURL}}">Click here</a> to choose a new password.
The link expires in {{.ExpiresIn}}.</p>
<p>If you did not request this, you can ignore this email.</p>
{{end}}

{{define "welcome"}}
<p>Hi {{.Username}},</p>
<p>Welcome aboard! Your account is ready. Log in, set up your profile and
publish your first post.</p>
{{end}}
`))

var subjects = map[string]string{
	ResetPassword: "Reset your password",
	Welcome:       "Welcome to the platform",
}

// Render produces the subject, plain-text fallback and HTML body for a
// named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", "", errors.New("unknown email template: " + name)
	}
	var buf bytes.Buffer
	if err := tpls.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", "", err
	}
	html = buf.String()
	text = textFallback(name, data)
	return subject, text, html, nil
}

func textFallback(name string, data map[string]any) string {
	switch name {
	case ResetPassword:
		return fmt.Sprintf("Reset your password: %v (expires in %v)", data["ResetURL"], data["ExpiresIn"])
	case Welcome:
		return fmt.Sprintf("Welcome, %v!", data["Username"])
	}
	return ""
}
