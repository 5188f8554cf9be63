package audit

import (
	"time"

	"github.com/Inhealthcare/open-itk/pkg/message"
)

// Type classifies an audit record.
type Type string

const (
	TypeRequest  Type = "REQUEST"
	TypeResponse Type = "RESPONSE"
	TypeFailure  Type = "FAILURE"
)

// Details is the base shape shared by all audit records. Timestamps are
// GMT with millisecond precision.
type Details struct {
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	Type           Type      `bson:"type" json:"type"`
	Status         string    `bson:"status" json:"status"`
}

// Base returns the record base, implementing Record.
func (d *Details) Base() *Details { return d }

// Record is any audit record shape accepted by a Sink.
type Record interface {
	Base() *Details
}

// ProtocolDetails is the protocol-level audit record shape.
type ProtocolDetails struct {
	Details `bson:",inline"`

	TrackingID         string `bson:"tracking_id,omitempty" json:"trackingId,omitempty"`
	PayloadID          string `bson:"payload_id,omitempty" json:"payloadId,omitempty"`
	ServiceID          string `bson:"service_id,omitempty" json:"serviceId,omitempty"`
	ProfileID          string `bson:"profile_id,omitempty" json:"profileId,omitempty"`
	NHSNumber          string `bson:"nhs_number,omitempty" json:"nhsNumber,omitempty"`
	LocalPatientID     string `bson:"local_patient_id,omitempty" json:"localPatientId,omitempty"`
	LocalAuditID       string `bson:"local_audit_id,omitempty" json:"localAuditId,omitempty"`
	SpineUserID        string `bson:"spine_user_id,omitempty" json:"spineUserId,omitempty"`
	SpineRoleProfileID string `bson:"spine_role_profile_id,omitempty" json:"spineRoleProfileId,omitempty"`
	SpineRoleID        string `bson:"spine_role_id,omitempty" json:"spineRoleId,omitempty"`
	SenderAddress      string `bson:"sender_address,omitempty" json:"senderAddress,omitempty"`
}

// TransportDetails is the transport-level audit record shape.
type TransportDetails struct {
	Details `bson:",inline"`

	MessageID    string    `bson:"message_id" json:"messageId"`
	CreationTime time.Time `bson:"creation_time" json:"creationTime"`
	To           string    `bson:"to" json:"to"`
	Action       string    `bson:"action" json:"action"`
	UserID       string    `bson:"user_id,omitempty" json:"userId,omitempty"`
}

// Sink is the audit contract. Each method may fail; callers must escalate
// a failure as a logging error. Implementations must be append-only and
// safe for concurrent use.
type Sink interface {
	AuditRequest(r Record) error
	AuditResponse(r Record) error
	AuditFailure(r Record) error
}

// Now returns the current GMT time at millisecond precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewProtocolDetails builds a protocol-level record from a message. The
// identity fields are filled from the typed identity lookups.
func NewProtocolDetails(msg *message.Message, t Type, status string) *ProtocolDetails {
	d := &ProtocolDetails{
		Details: Details{
			ConversationID: msg.ConversationID,
			Timestamp:      Now(),
			Type:           t,
			Status:         status,
		},
	}
	p := msg.Properties
	if p == nil {
		return d
	}
	d.TrackingID = p.TrackingID
	d.PayloadID = p.ITKPayloadID
	d.ServiceID = p.ServiceID
	d.ProfileID = p.ProfileID
	d.SenderAddress = p.FromAddress.URI
	if id, ok := p.PatientIdentityByType(message.IdentityTypeNHSNumber); ok {
		d.NHSNumber = id.URI
	}
	if id, ok := p.PatientIdentityByType(message.IdentityTypeLocalPatient); ok {
		d.LocalPatientID = id.URI
	}
	if id, ok := p.AuditIdentityByType(message.IdentityTypeITK); ok {
		d.LocalAuditID = id.URI
	}
	if id, ok := p.AuditIdentityByType(message.IdentityTypeSpineUUID); ok {
		d.SpineUserID = id.URI
	}
	if id, ok := p.AuditIdentityByType(message.IdentityTypeSpineRoleProfile); ok {
		d.SpineRoleProfileID = id.URI
	}
	if id, ok := p.AuditIdentityByType(message.IdentityTypeSpineRole); ok {
		d.SpineRoleID = id.URI
	}
	return d
}

// NewTransportDetails builds a transport-level record from per-hop
// transport properties.
func NewTransportDetails(conversationID string, tp *message.TransportProperties, t Type, status string) *TransportDetails {
	return &TransportDetails{
		Details: Details{
			ConversationID: conversationID,
			Timestamp:      Now(),
			Type:           t,
			Status:         status,
		},
		MessageID:    tp.MessageID,
		CreationTime: tp.Created,
		To:           tp.To,
		Action:       tp.Action,
		UserID:       tp.Username,
	}
}
