package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindRegistrationPending: {
		subject: "Registration received",
		body: template.Must(template.New("registration_pending").Parse(`
<html>
<body>
    <p>Hello {{.Name}},</p>
    <p>Thank you for registering as an agent. Your account is under review
    and you will receive a confirmation email once an administrator has
    approved it.</p>
    <p>You cannot sign in until your account is approved.</p>
</body>
</html>`)),
	},
	KindApproved: {
		subject: "Account approved",
		body: template.Must(template.New("approved").Parse(`
<html>
<body>
    <p>Hello {{.Name}},</p>
    <p>Your agent account has been approved. You can now sign in with
    your registered email address {{.Email}} and start submitting
    student requests.</p>
</body>
</html>`)),
	},
	KindRejected: {
		subject: "Account not approved",
		body: template.Must(template.New("rejected").Parse(`
<html>
<body>
    <p>Hello {{.Name}},</p>
    <p>Unfortunately your agent registration was not approved. Please
    contact support if you believe this is a mistake.</p>
</body>
</html>`)),
	},
	KindBlocked: {
		subject: "Account blocked",
		body: template.Must(template.New("blocked").Parse(`
<html>
<body>
    <p>Hello {{.Name}},</p>
    <p>Your agent account has been blocked by an administrator. You will
    not be able to sign in until the account is unblocked.</p>
</body>
</html>`)),
	},
	KindUnblocked: {
		subject: "Account unblocked",
		body: template.Must(template.New("unblocked").Parse(`
<html>
<body>
    <p>Hello {{.Name}},</p>
    <p>Your agent account has been unblocked. You can sign in again with
    your registered email address {{.Email}}.</p>
</body>
</html>`)),
	},
}

// Render produces the subject and HTML body for a notification kind.
func Render(kind Kind, data TemplateData) (subject, body string, err error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s template: %w", kind, err)
	}
	return tmpl.subject, buf.String(), nil
}
