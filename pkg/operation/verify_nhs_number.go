package operation

import (
	"context"
	"strings"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/identity"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// VerifyNHSNumberRequest confirms a known NHS number against the
// patient's demographics.
type VerifyNHSNumberRequest struct {
	Correlation

	NHSNumber string
	Surname   string
	// DateOfBirth is required in full YYYYMMDD form.
	DateOfBirth string
}

// VerifyNHSNumberResponse is the verification result.
type VerifyNHSNumberResponse struct {
	Code         string
	Conversation string
	// Verified reports whether the remote confirmed the match.
	Verified bool
}

// ResponseCode implements Response.
func (r *VerifyNHSNumberResponse) ResponseCode() string { return r.Code }

// ConversationID implements Response.
func (r *VerifyNHSNumberResponse) ConversationID() string { return r.Conversation }

// VerifyNHSNumber is the verify-by-number operation.
type VerifyNHSNumber struct {
	engine *Engine
}

// NewVerifyNHSNumber creates the operation over a configured engine.
func NewVerifyNHSNumber(engine *Engine) *VerifyNHSNumber {
	return &VerifyNHSNumber{engine: engine}
}

// Process runs the operation through the shared pipeline.
func (o *VerifyNHSNumber) Process(ctx context.Context, req *VerifyNHSNumberRequest) (*VerifyNHSNumberResponse, error) {
	if req == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	resp, err := o.engine.Process(ctx, o, req)
	if err != nil {
		return nil, err
	}
	return resp.(*VerifyNHSNumberResponse), nil
}

func (o *VerifyNHSNumber) request(req Request) (*VerifyNHSNumberRequest, error) {
	r, ok := req.(*VerifyNHSNumberRequest)
	if !ok || r == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	return r, nil
}

// Validate implements Capability.
func (o *VerifyNHSNumber) Validate(req Request) error {
	r, err := o.request(req)
	if err != nil {
		return err
	}
	if err := identity.ValidateNHSNumber(r.NHSNumber); err != nil {
		return err
	}
	if err := identity.ValidateName("surname", r.Surname, identity.NameMandatoryWildcardAfter2); err != nil {
		return err
	}
	return identity.ValidateDateOfBirth(r.DateOfBirth, identity.DateStrict)
}

// Payload implements Capability.
func (o *VerifyNHSNumber) Payload(req Request) (string, error) {
	r, err := o.request(req)
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("verifyNHSNumberRequest")
	root.CreateElement("nhsNumber").SetText(r.NHSNumber)
	person := root.CreateElement("person")
	person.CreateElement("surname").SetText(r.Surname)
	person.CreateElement("dateOfBirth").SetText(r.DateOfBirth)
	return serialize(doc)
}

// AttachIdentities implements Capability.
func (o *VerifyNHSNumber) AttachIdentities(req Request, props *message.MessageProperties) {
	r, err := o.request(req)
	if err != nil {
		return
	}
	props.AddPatientIdentity(message.Identity{
		URI:  r.NHSNumber,
		Type: message.IdentityTypeNHSNumber,
	})
}

// Marshal implements Capability.
func (o *VerifyNHSNumber) Marshal(conversationID, payload string) (Response, error) {
	root, code, err := parseResponsePayload(payload, "verifyNHSNumberResponse")
	if err != nil {
		return nil, err
	}
	return &VerifyNHSNumberResponse{
		Code:         code,
		Conversation: conversationID,
		Verified:     strings.EqualFold(elementText(root, "verifiedIndicator"), "true"),
	}, nil
}

// MarshalSentinel implements Capability.
func (o *VerifyNHSNumber) MarshalSentinel(code, conversationID string) Response {
	return &VerifyNHSNumberResponse{Code: code, Conversation: conversationID}
}
