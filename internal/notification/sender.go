package notification

// Kind identifies the email template for a lifecycle transition.
type Kind string

const (
	KindRegistrationPending Kind = "registrationPending"
	KindApproved            Kind = "approved"
	KindRejected            Kind = "rejected"
	KindBlocked             Kind = "blocked"
	KindUnblocked           Kind = "unblocked"
)

// TemplateData carries the values rendered into a notification body.
type TemplateData struct {
	Name  string
	Email string
}

// Sender delivers a rendered notification to a recipient. It is
// injected into the notifier so tests can substitute a double and so
// the transport is constructed exactly once at process start.
type Sender interface {
	Send(kind Kind, recipientEmail string, data TemplateData) error
}
