package operation

import (
	"context"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/identity"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// GetPatientDetailsResponse is the result shape shared by both
// patient-details operations.
type GetPatientDetailsResponse struct {
	Code         string
	Conversation string
	// Patient is set only on a successful retrieval.
	Patient *PatientDetails
}

// ResponseCode implements Response.
func (r *GetPatientDetailsResponse) ResponseCode() string { return r.Code }

// ConversationID implements Response.
func (r *GetPatientDetailsResponse) ConversationID() string { return r.Conversation }

// GetPatientDetailsByNHSNumberRequest retrieves a patient's demographics
// by their known NHS number.
type GetPatientDetailsByNHSNumberRequest struct {
	Correlation

	NHSNumber string
	Surname   string
	// DateOfBirth is required in full YYYYMMDD form.
	DateOfBirth string
}

// GetPatientDetailsByNHSNumber is the lookup-by-number operation.
type GetPatientDetailsByNHSNumber struct {
	engine *Engine
}

// NewGetPatientDetailsByNHSNumber creates the operation over a configured
// engine.
func NewGetPatientDetailsByNHSNumber(engine *Engine) *GetPatientDetailsByNHSNumber {
	return &GetPatientDetailsByNHSNumber{engine: engine}
}

// Process runs the operation through the shared pipeline.
func (o *GetPatientDetailsByNHSNumber) Process(ctx context.Context, req *GetPatientDetailsByNHSNumberRequest) (*GetPatientDetailsResponse, error) {
	if req == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	resp, err := o.engine.Process(ctx, o, req)
	if err != nil {
		return nil, err
	}
	return resp.(*GetPatientDetailsResponse), nil
}

func (o *GetPatientDetailsByNHSNumber) request(req Request) (*GetPatientDetailsByNHSNumberRequest, error) {
	r, ok := req.(*GetPatientDetailsByNHSNumberRequest)
	if !ok || r == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	return r, nil
}

// Validate implements Capability.
func (o *GetPatientDetailsByNHSNumber) Validate(req Request) error {
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
func (o *GetPatientDetailsByNHSNumber) Payload(req Request) (string, error) {
	r, err := o.request(req)
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("getPatientDetailsByNHSNumberRequest")
	root.CreateElement("nhsNumber").SetText(r.NHSNumber)
	person := root.CreateElement("person")
	person.CreateElement("surname").SetText(r.Surname)
	person.CreateElement("dateOfBirth").SetText(r.DateOfBirth)
	return serialize(doc)
}

// AttachIdentities implements Capability.
func (o *GetPatientDetailsByNHSNumber) AttachIdentities(req Request, props *message.MessageProperties) {
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
func (o *GetPatientDetailsByNHSNumber) Marshal(conversationID, payload string) (Response, error) {
	return marshalPatientDetails(conversationID, payload, "getPatientDetailsByNHSNumberResponse")
}

// MarshalSentinel implements Capability.
func (o *GetPatientDetailsByNHSNumber) MarshalSentinel(code, conversationID string) Response {
	return &GetPatientDetailsResponse{Code: code, Conversation: conversationID}
}

// GetPatientDetailsBySearchRequest retrieves a patient's demographics by
// a demographic search.
type GetPatientDetailsBySearchRequest struct {
	Correlation

	Surname     string
	GivenName   string
	DateOfBirth string
	Gender      string
	Postcode    string
	// LocalPatientID is the caller's local identifier for the patient.
	LocalPatientID string
}

// GetPatientDetailsBySearch is the lookup-by-search operation.
type GetPatientDetailsBySearch struct {
	engine *Engine
}

// NewGetPatientDetailsBySearch creates the operation over a configured
// engine.
func NewGetPatientDetailsBySearch(engine *Engine) *GetPatientDetailsBySearch {
	return &GetPatientDetailsBySearch{engine: engine}
}

// Process runs the operation through the shared pipeline.
func (o *GetPatientDetailsBySearch) Process(ctx context.Context, req *GetPatientDetailsBySearchRequest) (*GetPatientDetailsResponse, error) {
	if req == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	resp, err := o.engine.Process(ctx, o, req)
	if err != nil {
		return nil, err
	}
	return resp.(*GetPatientDetailsResponse), nil
}

func (o *GetPatientDetailsBySearch) request(req Request) (*GetPatientDetailsBySearchRequest, error) {
	r, ok := req.(*GetPatientDetailsBySearchRequest)
	if !ok || r == nil {
		return nil, itkerrors.NewConfiguration("request")
	}
	return r, nil
}

// Validate implements Capability.
func (o *GetPatientDetailsBySearch) Validate(req Request) error {
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
func (o *GetPatientDetailsBySearch) Payload(req Request) (string, error) {
	r, err := o.request(req)
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("getPatientDetailsBySearchRequest")
	personElement(root, r.Surname, r.GivenName, r.DateOfBirth, r.Gender, r.Postcode)
	if r.LocalPatientID != "" {
		root.CreateElement("localIdentifier").SetText(r.LocalPatientID)
	}
	return serialize(doc)
}

// AttachIdentities implements Capability.
func (o *GetPatientDetailsBySearch) AttachIdentities(req Request, props *message.MessageProperties) {
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
func (o *GetPatientDetailsBySearch) Marshal(conversationID, payload string) (Response, error) {
	return marshalPatientDetails(conversationID, payload, "getPatientDetailsBySearchResponse")
}

// MarshalSentinel implements Capability.
func (o *GetPatientDetailsBySearch) MarshalSentinel(code, conversationID string) Response {
	return &GetPatientDetailsResponse{Code: code, Conversation: conversationID}
}

func marshalPatientDetails(conversationID, payload, wantRoot string) (Response, error) {
	root, code, err := parseResponsePayload(payload, wantRoot)
	if err != nil {
		return nil, err
	}
	return &GetPatientDetailsResponse{
		Code:         code,
		Conversation: conversationID,
		Patient:      parsePatient(root),
	}, nil
}
