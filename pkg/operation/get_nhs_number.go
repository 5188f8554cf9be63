package operation

import (
	"context"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/identity"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// GetNHSNumberRequest traces a patient's NHS number from demographics.
type GetNHSNumberRequest struct {
	Correlation

	// Surname is required; a wildcard must follow at least two literal
	// characters.
	Surname string
	// GivenName is optional, same wildcard rule.
	GivenName string
	// DateOfBirth is required; YYYYMMDD, YYYYMM or YYYY.
	DateOfBirth string
	// Gender and Postcode are optional.
	Gender   string
	Postcode string
	// LocalPatientID is the caller's local identifier for the patient,
	// carried in the envelope's patient identity list.
	LocalPatientID string
}

// GetNHSNumberResponse is the trace result.
type GetNHSNumberResponse struct {
	Code         string
	Conversation string
	// NHSNumber is set only on a successful trace.
	NHSNumber string
}

// ResponseCode implements Response.
func (r *GetNHSNumberResponse) ResponseCode() string { return r.Code }

// ConversationID implements Response.
func (r *GetNHSNumberResponse) ConversationID() string { return r.Conversation }

// GetNHSNumber is the lookup-by-demographics operation.
type GetNHSNumber struct {
	engine *Engine
}

// NewGetNHSNumber creates the operation over a configured engine.
func NewGetNHSNumber(engine *Engine) *GetNHSNumber {
	return &GetNHSNumber{engine: engine}
}

// Process runs the operation through the shared pipeline.
func (o *GetNHSNumber) Process(ctx context.Context, req *GetNHSNumberRequest) (*GetNHSNumberResponse, error) {
	if req == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	resp, err := o.engine.Process(ctx, o, req)
	if err != nil {
		return nil, err
	}
	return resp.(*GetNHSNumberResponse), nil
}

func (o *GetNHSNumber) request(req Request) (*GetNHSNumberRequest, error) {
	r, ok := req.(*GetNHSNumberRequest)
	if !ok || r == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	return r, nil
}

// Validate implements Capability.
func (o *GetNHSNumber) Validate(req Request) error {
	r, err := o.request(req)
	if err != nil {
		return err
	}
	if err := identity.ValidateName("surname", r.Surname, identity.NameMandatoryWildcardAfter2); err != nil {
		return err
	}
	if err := identity.ValidateName("given name", r.GivenName, identity.NameWildcardAfter2); err != nil {
		return err
	}
	if err := identity.ValidateDateOfBirth(r.DateOfBirth, identity.DatePartial); err != nil {
		return err
	}
	if err := identity.ValidateGender(r.Gender, identity.GenderOptional, o.engine.GenderCodes()); err != nil {
		return err
	}
	return identity.ValidatePostcode(r.Postcode)
}

// Payload implements Capability.
func (o *GetNHSNumber) Payload(req Request) (string, error) {
	r, err := o.request(req)
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("getNHSNumberRequest")
	personElement(root, r.Surname, r.GivenName, r.DateOfBirth, r.Gender, r.Postcode)
	if r.LocalPatientID != "" {
		root.CreateElement("localIdentifier").SetText(r.LocalPatientID)
	}
	return serialize(doc)
}

// AttachIdentities implements Capability.
func (o *GetNHSNumber) AttachIdentities(req Request, props *message.MessageProperties) {
	r, err := o.request(req)
	if err != nil {
		return
	}
	if r.LocalPatientID != "" {
		props.AddPatientIdentity(message.Identity{
			URI:  r.LocalPatientID,
			Type: message.IdentityTypeLocalPatient,
		})
	}
}

// Marshal implements Capability.
func (o *GetNHSNumber) Marshal(conversationID, payload string) (Response, error) {
	root, code, err := parseResponsePayload(payload, "getNHSNumberResponse")
	if err != nil {
		return nil, err
	}
	return &GetNHSNumberResponse{
		Code:         code,
		Conversation: conversationID,
		NHSNumber:    elementText(root, "nhsNumber"),
	}, nil
}

// MarshalSentinel implements Capability.
func (o *GetNHSNumber) MarshalSentinel(code, conversationID string) Response {
	return &GetNHSNumberResponse{Code: code, Conversation: conversationID}
}
