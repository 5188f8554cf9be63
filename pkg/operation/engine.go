package operation

import (
	"context"

	"github.com/Inhealthcare/open-itk/pkg/audit"
	"github.com/Inhealthcare/open-itk/pkg/directory"
	"github.com/Inhealthcare/open-itk/pkg/envelope"
	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
	"github.com/Inhealthcare/open-itk/pkg/transport"
)

// DefaultGenderCodes is the gender code set used when the configuration
// does not supply one.
var DefaultGenderCodes = []string{"0", "1", "2", "9"}

// Config carries the per-operation settings. Completeness is verified on
// every invocation before the request is touched.
type Config struct {
	// RemoteAddress is the ITK address of the service provider.
	RemoteAddress string
	// ServiceID and ProfileID name the service and the payload shape
	// contract.
	ServiceID string
	ProfileID string
	// SenderAddress is the sender's own ITK address.
	SenderAddress string
	// TemplateName selects the payload transform template.
	TemplateName string
	// GenderCodes is the accepted gender code set. Optional;
	// DefaultGenderCodes applies when empty.
	GenderCodes []string
}

func (c Config) check() error {
	switch {
	case c.RemoteAddress == "":
		return itkerrors.NewConfiguration("remote address")
	case c.ServiceID == "":
		return itkerrors.NewConfiguration("service id")
	case c.ProfileID == "":
		return itkerrors.NewConfiguration("profile id")
	case c.SenderAddress == "":
		return itkerrors.NewConfiguration("sender identity")
	case c.TemplateName == "":
		return itkerrors.NewConfiguration("template name")
	}
	return nil
}

// Engine runs the shared operation pipeline over a fixed set of
// collaborators. The collaborators are read-mostly and safe for
// concurrent use; an Engine may serve many simultaneous invocations.
type Engine struct {
	cfg       Config
	resolver  directory.Resolver
	sender    *transport.Sender
	sink      audit.Sink
	transform envelope.Transform
}

// NewEngine creates an Engine. Collaborator completeness is checked on
// each Process call, not here, so partially wired engines fail loudly
// with the name of the missing piece.
func NewEngine(cfg Config, resolver directory.Resolver, sender *transport.Sender, sink audit.Sink, transform envelope.Transform) *Engine {
	return &Engine{
		cfg:       cfg,
		resolver:  resolver,
		sender:    sender,
		sink:      sink,
		transform: transform,
	}
}

// GenderCodes returns the configured gender code set or the default.
func (e *Engine) GenderCodes() []string {
	if len(e.cfg.GenderCodes) > 0 {
		return e.cfg.GenderCodes
	}
	return DefaultGenderCodes
}

// Process runs one operation invocation through the shared pipeline.
// Only configuration, validation and logging errors are returned; every
// network-level outcome is normalized into the response code.
func (e *Engine) Process(ctx context.Context, cap Capability, req Request) (Response, error) {
	if err := e.cfg.check(); err != nil {
		return nil, err
	}
	switch {
	case e.sink == nil:
		return nil, itkerrors.NewConfiguration("audit sink")
	case e.resolver == nil:
		return nil, itkerrors.NewConfiguration("directory of services")
	case e.sender == nil:
		return nil, itkerrors.NewConfiguration("transport sender")
	case e.transform == nil:
		return nil, itkerrors.NewConfiguration("payload transform")
	}
	// A missing request is a configuration failure, not a validation one:
	// the caller supplied nothing to validate.
	if req == nil || cap == nil {
		return nil, itkerrors.NewConfiguration("request")
	}

	msg := message.New("")
	if cid := req.ConversationID(); cid != "" {
		msg.ConversationID = cid
	}
	props := message.NewProperties()
	props.ServiceID = e.cfg.ServiceID
	props.ProfileID = e.cfg.ProfileID
	props.FromAddress = message.NewAddress(e.cfg.SenderAddress)
	props.ToAddress = message.NewAddress(e.cfg.RemoteAddress)
	if id := req.AuditID(); id != "" {
		props.AddAuditIdentity(message.NewIdentity(id))
	}
	msg.Properties = props

	if err := e.sink.AuditRequest(audit.NewProtocolDetails(msg, audit.TypeRequest, "OK")); err != nil {
		return nil, itkerrors.NewLogging(err)
	}

	if err := cap.Validate(req); err != nil {
		return nil, err
	}

	payload, err := cap.Payload(req)
	if err != nil {
		return nil, err
	}
	msg.BusinessPayload = payload
	cap.AttachIdentities(req, props)

	resp, err := e.exchange(ctx, cap, msg)
	if err != nil {
		return nil, err
	}

	if err := e.sink.AuditResponse(audit.NewProtocolDetails(msg, audit.TypeResponse, resp.ResponseCode())); err != nil {
		return nil, itkerrors.NewLogging(err)
	}
	return resp, nil
}

// exchange resolves the route, builds the envelope and performs the
// synchronous send, normalizing every network-level outcome into a
// response. A returned error is always configuration or logging class.
func (e *Engine) exchange(ctx context.Context, cap Capability, msg *message.Message) (Response, error) {
	sentinel := func(code string) Response {
		return cap.MarshalSentinel(code, msg.ConversationID)
	}

	svc, err := e.resolver.Service(e.cfg.ServiceID)
	if err != nil || !svc.SupportsSync {
		return sentinel(CodeFailed), nil
	}
	msg.Base64 = svc.Base64
	msg.MimeType = svc.MimeType

	route, err := e.resolver.ResolveDestination(e.cfg.ServiceID, e.cfg.RemoteAddress)
	if err != nil {
		return sentinel(CodeFailed), nil
	}

	wire, err := envelope.Build(msg, e.transform, e.cfg.TemplateName)
	if err != nil {
		if itkerrors.IsConfiguration(err) {
			return nil, err
		}
		return sentinel(CodeFailed), nil
	}

	result, err := e.sender.SendSync(ctx, route, msg, wire)
	if err != nil {
		if itkerrors.IsConfiguration(err) || itkerrors.IsLogging(err) {
			return nil, err
		}
		return sentinel(CodeFailed), nil
	}

	switch result.Status {
	case transport.StatusBusy:
		return sentinel(CodeBusy), nil
	case transport.StatusFault:
		return sentinel(CodeFailed), nil
	}

	resp, err := cap.Marshal(msg.ConversationID, result.Message.BusinessPayload)
	if err != nil {
		return sentinel(CodeFailed), nil
	}
	return resp, nil
}
