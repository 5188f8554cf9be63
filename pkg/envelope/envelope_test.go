package envelope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

func newOutboundMessage() *message.Message {
	msg := message.New("<verifyNHSNumberRequest/>")
	props := message.NewProperties()
	props.ServiceID = message.ServiceVerifyNHSNumber
	props.ProfileID = message.ProfileVerifyNHSNumberRequest
	props.FromAddress = message.NewAddress("urn:nhs-uk:addressing:ods:SENDER")
	props.ToAddress = message.NewAddress("urn:nhs-uk:addressing:ods:TESTORGS")
	props.AddAuditIdentity(message.Identity{URI: "urn:org:audit:local"})
	props.SetHandlingSpec(message.HandlingKeyAckRequested, "true")
	msg.Properties = props
	msg.MimeType = "text/xml"
	return msg
}

func TestBuildRequiresProperties(t *testing.T) {
	msg := message.New("<payload/>")

	_, err := Build(msg, Passthrough, "")
	require.Error(t, err)
	assert.True(t, itkerrors.IsConfiguration(err))
}

func TestBuildRequiresServiceID(t *testing.T) {
	msg := newOutboundMessage()
	msg.Properties.ServiceID = ""

	_, err := Build(msg, Passthrough, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service id")
}

func TestBuildCanonicalShape(t *testing.T) {
	msg := newOutboundMessage()

	wire, err := Build(msg, Passthrough, "")
	require.NoError(t, err)

	assert.Contains(t, wire, `service="`+message.ServiceVerifyNHSNumber+`"`)
	assert.Contains(t, wire, `trackingid="`+msg.Properties.TrackingID+`"`)
	assert.Contains(t, wire, `id="uuid_`+msg.Properties.ITKPayloadID+`"`)
	assert.Contains(t, wire, `profileid="`+message.ProfileVerifyNHSNumberRequest+`"`)
	assert.Contains(t, wire, `key="`+message.HandlingKeyAckRequested+`"`)
	// One manifest entry, one payload.
	assert.Equal(t, 1, strings.Count(wire, "<itk:manifestitem"))
	assert.Equal(t, 1, strings.Count(wire, "<itk:payload "))
	// The tracking id must never leak into the business payload.
	payloadStart := strings.Index(wire, "<itk:payloads")
	assert.NotContains(t, wire[payloadStart:], msg.Properties.TrackingID)
}

func TestBuildBase64Flag(t *testing.T) {
	msg := newOutboundMessage()
	msg.Base64 = true

	wire, err := Build(msg, Passthrough, "")
	require.NoError(t, err)
	assert.Contains(t, wire, `base64="true"`)
}

func TestBuildUsesTemplateFallback(t *testing.T) {
	templates := NewTemplateSet()
	require.NoError(t, templates.Register(DefaultTemplate, "<wrapped>{{.}}</wrapped>"))

	wire, err := Build(newOutboundMessage(), templates.Transform, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(wire, "<wrapped>"))
}

func TestTemplateSetUnknownTemplate(t *testing.T) {
	templates := NewTemplateSet()

	_, err := templates.Transform("missing", "<x/>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRoundTrip(t *testing.T) {
	msg := newOutboundMessage()

	wire, err := Build(msg, Passthrough, "")
	require.NoError(t, err)

	parsed, err := Parse(wire)
	require.NoError(t, err)

	assert.Equal(t, msg.Properties.ServiceID, parsed.Properties.ServiceID)
	assert.Equal(t, msg.Properties.ProfileID, parsed.Properties.ProfileID)
	assert.Equal(t, msg.Properties.TrackingID, parsed.Properties.TrackingID)
	// The uuid marker prefix is stripped on parse.
	assert.Equal(t, msg.Properties.ITKPayloadID, parsed.Properties.ITKPayloadID)
	assert.Equal(t, msg.BusinessPayload, parsed.BusinessPayload)
	assert.Equal(t, "text/xml", parsed.MimeType)
	assert.True(t, parsed.IsResponse)

	v, ok := parsed.Properties.HandlingSpec(message.HandlingKeyAckRequested)
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestParseDefaultsAddressAndIdentityTypes(t *testing.T) {
	wire := `<itk:DistributionEnvelope xmlns:itk="urn:nhs-itk:ns:201005">
  <itk:header service="svc" trackingid="track-1">
    <itk:addresslist><itk:address uri="urn:to"/></itk:addresslist>
    <itk:auditIdentity><itk:id uri="urn:auditor"/></itk:auditIdentity>
    <itk:manifest count="1"><itk:manifestitem mimetype="text/xml" id="uuid_p1" profileid="prof"/></itk:manifest>
    <itk:senderAddress uri="urn:from"/>
  </itk:header>
  <itk:payloads count="1"><itk:payload id="uuid_p1">&lt;x/&gt;</itk:payload></itk:payloads>
</itk:DistributionEnvelope>`

	msg, err := Parse(wire)
	require.NoError(t, err)

	assert.Equal(t, message.AddressTypeITK, msg.Properties.ToAddress.Type)
	assert.Equal(t, message.AddressTypeITK, msg.Properties.FromAddress.Type)
	require.Len(t, msg.Properties.AuditIdentities, 1)
	assert.Equal(t, message.IdentityTypeITK, msg.Properties.AuditIdentities[0].Type)
	assert.Equal(t, "p1", msg.Properties.ITKPayloadID)
}

func TestParseRejectsMultiplePayloads(t *testing.T) {
	wire := `<DistributionEnvelope xmlns="urn:nhs-itk:ns:201005">
  <header service="svc" trackingid="t"/>
  <payloads count="2"><payload id="a">one</payload><payload id="b">two</payload></payloads>
</DistributionEnvelope>`

	_, err := Parse(wire)
	require.Error(t, err)

	var msgErr *itkerrors.MessagingError
	require.ErrorAs(t, err, &msgErr)
	assert.False(t, msgErr.Retryable())
	assert.Contains(t, err.Error(), "exactly one")
}

func TestParseRejectsNonEnvelope(t *testing.T) {
	_, err := Parse("<other/>")
	assert.Error(t, err)

	_, err = Parse("not xml at all")
	assert.Error(t, err)
}
