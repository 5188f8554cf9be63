package message

import (
	"time"

	"github.com/google/uuid"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
)

// Message is the unit of exchange: an opaque business payload plus the
// properties needed to envelope and route it.
type Message struct {
	// ConversationID correlates request and response. It is generated once
	// and never regenerated, even across caller retries.
	ConversationID string

	// BusinessPayload is the opaque payload text.
	BusinessPayload string

	// Properties are the envelope-level properties. They may be nil until
	// send time, at which point they are required.
	Properties *MessageProperties

	// Transport holds the per-hop transport properties. Set only after a
	// transport hop.
	Transport *TransportProperties

	// IsResponse marks a message that came back from a transport hop.
	IsResponse bool

	// Base64 and MimeType are set from the directory's service capability
	// lookup, not by the caller.
	Base64   bool
	MimeType string
}

// New creates a Message around a business payload with a fresh
// conversation id.
func New(payload string) *Message {
	return &Message{
		ConversationID:  uuid.New().String(),
		BusinessPayload: payload,
	}
}

// CheckSendable verifies the message carries everything an envelope build
// needs. It fails if the properties or the service id are unset.
func (m *Message) CheckSendable() error {
	if m.Properties == nil {
		return itkerrors.NewConfiguration("message properties")
	}
	if m.Properties.ServiceID == "" {
		return itkerrors.NewConfiguration("service id")
	}
	return nil
}

// MessageProperties carries the envelope-level addressing, identity and
// correlation values for one message.
type MessageProperties struct {
	// FromAddress and ToAddress are the business sender and the single
	// supported recipient.
	FromAddress Address
	ToAddress   Address

	// AuditIdentities and PatientIdentities are ordered; lookups are by
	// type, not position.
	AuditIdentities   []Identity
	PatientIdentities []Identity

	ServiceID string
	ProfileID string

	// ITKPayloadID identifies the manifest/payload pair. TrackingID is
	// transport correlation only and must never appear in the business
	// payload.
	ITKPayloadID string
	TrackingID   string

	// HandlingSpecs is an open key/value map, e.g. ack requested.
	HandlingSpecs map[string]string
}

// NewProperties creates MessageProperties with fresh payload and tracking
// ids.
func NewProperties() *MessageProperties {
	return &MessageProperties{
		ITKPayloadID:  uuid.New().String(),
		TrackingID:    uuid.New().String(),
		HandlingSpecs: make(map[string]string),
	}
}

// AuditIdentityByType returns the first audit identity of the given type.
func (p *MessageProperties) AuditIdentityByType(idType string) (Identity, bool) {
	return identityByType(p.AuditIdentities, idType)
}

// PatientIdentityByType returns the first patient identity of the given
// type.
func (p *MessageProperties) PatientIdentityByType(idType string) (Identity, bool) {
	return identityByType(p.PatientIdentities, idType)
}

// AddAuditIdentity appends an audit identity, defaulting its type.
func (p *MessageProperties) AddAuditIdentity(id Identity) {
	p.AuditIdentities = append(p.AuditIdentities, defaultIdentityType(id))
}

// AddPatientIdentity appends a patient identity, defaulting its type.
func (p *MessageProperties) AddPatientIdentity(id Identity) {
	p.PatientIdentities = append(p.PatientIdentities, defaultIdentityType(id))
}

// SetHandlingSpec records a handling specification.
func (p *MessageProperties) SetHandlingSpec(key, value string) {
	if p.HandlingSpecs == nil {
		p.HandlingSpecs = make(map[string]string)
	}
	p.HandlingSpecs[key] = value
}

// HandlingSpec returns a handling specification value, if present.
func (p *MessageProperties) HandlingSpec(key string) (string, bool) {
	v, ok := p.HandlingSpecs[key]
	return v, ok
}

func identityByType(ids []Identity, idType string) (Identity, bool) {
	for _, id := range ids {
		if id.Type == idType {
			return id, true
		}
	}
	return Identity{}, false
}

func defaultIdentityType(id Identity) Identity {
	if id.Type == "" {
		id.Type = IdentityTypeITK
	}
	return id
}

// NewTransportProperties creates fresh per-hop transport properties for a
// send over the given route. The message id is new for every hop; created
// is now and expires is created plus the route's time to live.
func NewTransportProperties(route *TransportRoute, serviceID, username string) *TransportProperties {
	ttl := route.TimeToLive
	if ttl == 0 {
		ttl = DefaultTimeToLive
	}
	now := time.Now().UTC()
	return &TransportProperties{
		MessageID: uuid.New().String(),
		Action:    serviceID,
		To:        route.PhysicalAddress,
		ReplyTo:   route.ReplyToAddress,
		FaultTo:   route.ExceptionToAddress,
		Username:  username,
		Created:   now,
		Expires:   now.Add(ttl),
	}
}
