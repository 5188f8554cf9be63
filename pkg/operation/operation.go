package operation

import (
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// Sentinel response codes. Network-level outcomes never surface to the
// caller as errors; they are normalized into these codes instead.
const (
	// CodeBusy reports the remote service was unavailable. Retrying is
	// the caller's decision.
	CodeBusy = "BUSY"
	// CodeFailed reports an unexpected send or parse failure.
	CodeFailed = "FAILED"
)

// CodeSuccess is the SMSP code a remote returns for a completed request.
const CodeSuccess = "SMSP-0000"

// Request is implemented by every operation request type.
type Request interface {
	// ConversationID returns the caller-supplied conversation id, empty
	// when the caller wants one generated.
	ConversationID() string
	// AuditID returns the caller's local audit identity.
	AuditID() string
}

// Response is implemented by every operation response type, whether built
// from a parsed wire payload or directly from a sentinel code.
type Response interface {
	// ResponseCode returns the remote's business code or a sentinel.
	ResponseCode() string
	ConversationID() string
}

// Correlation carries the correlation fields shared by every request.
type Correlation struct {
	// Conversation correlates the request with its response end to end.
	// Optional; a fresh id is generated when empty.
	Conversation string
	// LocalAudit is the caller's local audit identity, recorded in the
	// envelope's audit identity list and in the audit trail.
	LocalAudit string
}

// ConversationID implements Request.
func (c Correlation) ConversationID() string { return c.Conversation }

// AuditID implements Request.
func (c Correlation) AuditID() string { return c.LocalAudit }

// Capability is the per-operation step set invoked by the shared
// pipeline. One implementation exists per concrete operation.
type Capability interface {
	// Validate checks the request's business fields.
	Validate(req Request) error
	// Payload builds the business payload text for the request.
	Payload(req Request) (string, error)
	// AttachIdentities records the operation's patient identities on the
	// message properties.
	AttachIdentities(req Request, props *message.MessageProperties)
	// Marshal turns a received payload into the typed response.
	Marshal(conversationID, payload string) (Response, error)
	// MarshalSentinel builds the typed response directly from a sentinel
	// code.
	MarshalSentinel(code, conversationID string) Response
}
