package message

import (
	"time"
)

// Namespace constants for the ITK distribution envelope and its transport
// frame.
const (
	NsDistributionEnvelope = "urn:nhs-itk:ns:201005"
	NsSOAPEnv              = "http://schemas.xmlsoap.org/soap/envelope/"
	NsWSA                  = "http://www.w3.org/2005/08/addressing"
	NsWSSE                 = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	NsWSU                  = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
)

// Well-known ITK address and identity type OIDs, applied when a type is
// omitted.
const (
	// AddressTypeITK is the default type for sender/recipient addresses.
	AddressTypeITK = "2.16.840.1.113883.2.1.3.2.4.18.22"
	// IdentityTypeITK is the default type for audit identities.
	IdentityTypeITK = "2.16.840.1.113883.2.1.3.2.4.18.27"
	// IdentityTypeSpineUUID identifies a Spine user id.
	IdentityTypeSpineUUID = "2.16.840.1.113883.2.1.3.2.4.18.26"
	// IdentityTypeSpineRoleProfile identifies a Spine role profile id.
	IdentityTypeSpineRoleProfile = "2.16.840.1.113883.2.1.3.2.4.18.28"
	// IdentityTypeSpineRole identifies a Spine role id.
	IdentityTypeSpineRole = "2.16.840.1.113883.2.1.3.2.4.18.29"
	// IdentityTypeNHSNumber identifies a patient by NHS Number.
	IdentityTypeNHSNumber = "2.16.840.1.113883.2.1.4.1"
	// IdentityTypeLocalPatient identifies a patient by a local identifier.
	IdentityTypeLocalPatient = "2.16.840.1.113883.2.1.3.2.4.18.24"
)

// SMSP service identifiers.
const (
	ServiceGetNHSNumber                 = "urn:nhs-itk:services:201005:getNHSNumber-v1-0"
	ServiceVerifyNHSNumber              = "urn:nhs-itk:services:201005:verifyNHSNumber-v1-0"
	ServiceGetPatientDetailsByNHSNumber = "urn:nhs-itk:services:201005:getPatientDetailsByNHSNumber-v1-0"
	ServiceGetPatientDetailsBySearch    = "urn:nhs-itk:services:201005:getPatientDetailsBySearch-v1-0"
)

// SMSP payload profile identifiers.
const (
	ProfileGetNHSNumberRequest                 = "urn:nhs-en:profile:getNHSNumberRequest-v1-0"
	ProfileVerifyNHSNumberRequest              = "urn:nhs-en:profile:verifyNHSNumberRequest-v1-0"
	ProfileGetPatientDetailsByNHSNumberRequest = "urn:nhs-en:profile:getPatientDetailsByNHSNumberRequest-v1-0"
	ProfileGetPatientDetailsBySearchRequest    = "urn:nhs-en:profile:getPatientDetailsBySearchRequest-v1-0"
)

// HandlingKeyAckRequested is the handling-specification key requesting a
// business acknowledgement.
const HandlingKeyAckRequested = "urn:nhs-itk:ns:201005:ackrequested"

// Transport route failsafe defaults, used when the directory has no value
// configured for a channel.
const (
	DefaultTimeToLive = 1800 * time.Second
	DefaultTimeout    = 30000 * time.Millisecond
)

// TransportTypeWS marks a route reachable over the web-service transport.
const (
	TransportTypeWS      = "WS"
	TransportTypeUnknown = "unknown"
)

// Address is a logical ITK address: a URI plus an address type.
type Address struct {
	URI  string
	Type string
}

// NewAddress creates an Address with the default ITK address type.
func NewAddress(uri string) Address {
	return Address{URI: uri, Type: AddressTypeITK}
}

// Identity is an audit or patient identity: a URI plus an identity type.
type Identity struct {
	URI  string
	Type string
}

// NewIdentity creates an Identity with the default ITK identity type.
func NewIdentity(uri string) Identity {
	return Identity{URI: uri, Type: IdentityTypeITK}
}

// TransportRoute is the output of directory resolution: where and how to
// physically deliver a message.
type TransportRoute struct {
	TransportType      string
	PhysicalAddress    string
	ReplyToAddress     string
	ExceptionToAddress string
	TimeToLive         time.Duration
	Timeout            time.Duration
}

// TransportProperties are the per-hop addressing values. They are
// regenerated for every physical send and never reused across retries.
type TransportProperties struct {
	MessageID string
	Action    string
	To        string
	From      string
	ReplyTo   string
	FaultTo   string
	RelatesTo string
	Username  string
	Created   time.Time
	Expires   time.Time
}
