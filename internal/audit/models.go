package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Subject    string            `json:"subject"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resource_id,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
}

type AuditEvent string

const (
	EventResumeSubmitted       AuditEvent = "resume_submitted"
	EventVerificationCompleted AuditEvent = "verification_completed"
	EventCredentialBound       AuditEvent = "credential_bound"
	EventTestStarted           AuditEvent = "test_started"
	EventTestCompleted         AuditEvent = "test_completed"
	EventCertificateIssued     AuditEvent = "certificate_issued"
	EventProfileUpdated        AuditEvent = "profile_updated"
)

func (e AuditEvent) String() string { return string(e) }
