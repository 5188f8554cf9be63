package operation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inhealthcare/open-itk/pkg/audit"
	"github.com/Inhealthcare/open-itk/pkg/directory"
	"github.com/Inhealthcare/open-itk/pkg/envelope"
	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
	"github.com/Inhealthcare/open-itk/pkg/transport"
)

// fakeWire scripts the physical transport outcome seen by the sender.
type fakeWire struct {
	body  []byte
	err   error
	sends int
}

func (f *fakeWire) Send(_ context.Context, _ string, _ *message.TransportRoute, _ map[string]string) ([]byte, error) {
	f.sends++
	return f.body, f.err
}

type fakeResolver struct{}

func (fakeResolver) ResolveDestination(serviceID, toAddress string) (*message.TransportRoute, error) {
	return &message.TransportRoute{
		TransportType:   message.TransportTypeWS,
		PhysicalAddress: "https://smsp.example.nhs.uk/smsp",
	}, nil
}

func (fakeResolver) Service(serviceID string) (*directory.ServiceCapability, error) {
	return &directory.ServiceCapability{SupportsSync: true, MimeType: "text/xml"}, nil
}

func (fakeResolver) IsProfileSupported(profileID string) bool { return true }

// responseOnlySink fails audit writes selectively.
type responseOnlySink struct {
	audit.MemorySink
	failResponses bool
}

func (s *responseOnlySink) AuditResponse(r audit.Record) error {
	if s.failResponses {
		return errors.New("sink closed")
	}
	return s.MemorySink.AuditResponse(r)
}

func testConfig() Config {
	return Config{
		RemoteAddress: "urn:nhs-uk:addressing:ods:TESTORGS",
		ServiceID:     message.ServiceGetNHSNumber,
		ProfileID:     message.ProfileGetNHSNumberRequest,
		SenderAddress: "urn:nhs-uk:addressing:ods:SENDER",
		TemplateName:  envelope.DefaultTemplate,
	}
}

// newTestEngine wires an engine with separate protocol and transport
// sinks so each layer's audit writes can be asserted on independently.
func newTestEngine(cfg Config, wire transport.Transport, protocolSink audit.Sink, transportSink audit.Sink) *Engine {
	sender := transport.NewSender(wire, transportSink, "https://sender.example.nhs.uk", "smsp-user")
	return NewEngine(cfg, fakeResolver{}, sender, protocolSink, envelope.Passthrough)
}

// smspFrame wraps an SMSP response payload in a distribution envelope and
// a SOAP response frame, the shape a remote service provider returns.
func smspFrame(t *testing.T, payload string) []byte {
	t.Helper()
	respMsg := message.New(payload)
	respMsg.MimeType = "text/xml"
	props := message.NewProperties()
	props.ServiceID = message.ServiceGetNHSNumber
	respMsg.Properties = props

	inner, err := envelope.Build(respMsg, envelope.Passthrough, "")
	require.NoError(t, err)

	frame := fmt.Sprintf(`<soap:Envelope xmlns:soap="%s" xmlns:wsa="%s">
  <soap:Header>
    <wsa:MessageID>response-message-id</wsa:MessageID>
    <wsa:Action>%s</wsa:Action>
  </soap:Header>
  <soap:Body>%s</soap:Body>
</soap:Envelope>`, message.NsSOAPEnv, message.NsWSA, message.ServiceGetNHSNumber, inner)
	return []byte(frame)
}

func validGetNHSNumberRequest() *GetNHSNumberRequest {
	return &GetNHSNumberRequest{
		Correlation: Correlation{
			Conversation: "11111111-2222-3333-4444-555555555555",
			LocalAudit:   "urn:nhs-uk:identity:local:auditor",
		},
		Surname:        "SMITH",
		GivenName:      "JOHN",
		DateOfBirth:    "19700630",
		Gender:         "1",
		Postcode:       "LS1 4HT",
		LocalPatientID: "MRN-001234",
	}
}

func TestGetNHSNumberSuccess(t *testing.T) {
	wire := &fakeWire{body: smspFrame(t, `<getNHSNumberResponse>
  <responseCode>SMSP-0000</responseCode>
  <nhsNumber>9449310602</nhsNumber>
</getNHSNumberResponse>`)}
	protocolSink := audit.NewMemorySink()
	transportSink := audit.NewMemorySink()
	op := NewGetNHSNumber(newTestEngine(testConfig(), wire, protocolSink, transportSink))

	req := validGetNHSNumberRequest()
	resp, err := op.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "9449310602", resp.NHSNumber)
	assert.Equal(t, req.Conversation, resp.Conversation)

	// Each layer audits the request and the response exactly once.
	require.Len(t, protocolSink.Requests(), 1)
	require.Len(t, protocolSink.Responses(), 1)
	assert.Len(t, transportSink.Requests(), 1)
	assert.Len(t, transportSink.Responses(), 1)

	reqRecord, ok := protocolSink.Requests()[0].(*audit.ProtocolDetails)
	require.True(t, ok)
	assert.Equal(t, req.Conversation, reqRecord.ConversationID)
	assert.Equal(t, message.ServiceGetNHSNumber, reqRecord.ServiceID)
	assert.Equal(t, req.LocalAudit, reqRecord.LocalAuditID)

	respRecord, ok := protocolSink.Responses()[0].(*audit.ProtocolDetails)
	require.True(t, ok)
	assert.Equal(t, CodeSuccess, respRecord.Status)
	// Patient identities attached during the call show up in the
	// response-side record.
	assert.Equal(t, req.LocalPatientID, respRecord.LocalPatientID)
}

func TestGetNHSNumberBusy(t *testing.T) {
	wire := &fakeWire{err: itkerrors.NewBusy()}
	protocolSink := audit.NewMemorySink()
	transportSink := audit.NewMemorySink()
	op := NewGetNHSNumber(newTestEngine(testConfig(), wire, protocolSink, transportSink))

	resp, err := op.Process(context.Background(), validGetNHSNumberRequest())
	require.NoError(t, err)

	assert.Equal(t, CodeBusy, resp.Code)
	assert.Empty(t, resp.NHSNumber)

	// One transport-layer failure record, one business-layer response
	// record carrying the sentinel code.
	failures := transportSink.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "FAIL:BUSY", failures[0].Base().Status)

	responses := protocolSink.Responses()
	require.Len(t, responses, 1)
	assert.Equal(t, CodeBusy, responses[0].Base().Status)
}

func TestGetNHSNumberCommsFailure(t *testing.T) {
	wire := &fakeWire{err: itkerrors.NewComms("connection refused", errors.New("dial tcp"))}
	op := NewGetNHSNumber(newTestEngine(testConfig(), wire, audit.NewMemorySink(), audit.NewMemorySink()))

	resp, err := op.Process(context.Background(), validGetNHSNumberRequest())
	require.NoError(t, err)
	assert.Equal(t, CodeFailed, resp.Code)
}

func TestGetNHSNumberUnexpectedPayloadShape(t *testing.T) {
	wire := &fakeWire{body: smspFrame(t, "<somethingElse/>")}
	op := NewGetNHSNumber(newTestEngine(testConfig(), wire, audit.NewMemorySink(), audit.NewMemorySink()))

	resp, err := op.Process(context.Background(), validGetNHSNumberRequest())
	require.NoError(t, err)
	assert.Equal(t, CodeFailed, resp.Code)
}

func TestGetNHSNumberValidationFailureMakesNoNetworkCall(t *testing.T) {
	wire := &fakeWire{}
	protocolSink := audit.NewMemorySink()
	op := NewGetNHSNumber(newTestEngine(testConfig(), wire, protocolSink, audit.NewMemorySink()))

	req := validGetNHSNumberRequest()
	req.Surname = "S*"
	_, err := op.Process(context.Background(), req)

	require.Error(t, err)
	assert.True(t, itkerrors.IsValidation(err))
	assert.Zero(t, wire.sends)
	// The attempt itself was audited before validation ran.
	assert.Len(t, protocolSink.Requests(), 1)
	assert.Empty(t, protocolSink.Responses())
}

func TestProcessMissingConfigurationFailsBeforeAnyAudit(t *testing.T) {
	cfg := testConfig()
	cfg.SenderAddress = ""
	protocolSink := audit.NewMemorySink()
	transportSink := audit.NewMemorySink()
	op := NewGetNHSNumber(newTestEngine(cfg, &fakeWire{}, protocolSink, transportSink))

	_, err := op.Process(context.Background(), validGetNHSNumberRequest())
	require.Error(t, err)
	assert.True(t, itkerrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "sender identity")

	assert.Empty(t, protocolSink.Requests())
	assert.Empty(t, transportSink.Requests())
}

func TestProcessNilRequest(t *testing.T) {
	op := NewGetNHSNumber(newTestEngine(testConfig(), &fakeWire{}, audit.NewMemorySink(), audit.NewMemorySink()))

	_, err := op.Process(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, itkerrors.IsConfiguration(err))
}

func TestProcessResponseAuditFailureEscalates(t *testing.T) {
	wire := &fakeWire{body: smspFrame(t, `<getNHSNumberResponse>
  <responseCode>SMSP-0000</responseCode>
  <nhsNumber>9449310602</nhsNumber>
</getNHSNumberResponse>`)}
	sink := &responseOnlySink{failResponses: true}
	op := NewGetNHSNumber(newTestEngine(testConfig(), wire, sink, audit.NewMemorySink()))

	_, err := op.Process(context.Background(), validGetNHSNumberRequest())
	require.Error(t, err)
	assert.True(t, itkerrors.IsLogging(err))
	// The exchange itself completed before the audit write failed.
	assert.Equal(t, 1, wire.sends)
}

func TestVerifyNHSNumberSuccess(t *testing.T) {
	wire := &fakeWire{body: smspFrame(t, `<verifyNHSNumberResponse>
  <responseCode>SMSP-0000</responseCode>
  <verifiedIndicator>true</verifiedIndicator>
</verifyNHSNumberResponse>`)}
	cfg := testConfig()
	cfg.ServiceID = message.ServiceVerifyNHSNumber
	cfg.ProfileID = message.ProfileVerifyNHSNumberRequest
	protocolSink := audit.NewMemorySink()
	op := NewVerifyNHSNumber(newTestEngine(cfg, wire, protocolSink, audit.NewMemorySink()))

	resp, err := op.Process(context.Background(), &VerifyNHSNumberRequest{
		NHSNumber:   "9449310602",
		Surname:     "SMITH",
		DateOfBirth: "19700630",
	})
	require.NoError(t, err)

	assert.Equal(t, CodeSuccess, resp.Code)
	assert.True(t, resp.Verified)

	// The NHS number travels in the patient identity list, never loose.
	respRecord, ok := protocolSink.Responses()[0].(*audit.ProtocolDetails)
	require.True(t, ok)
	assert.Equal(t, "9449310602", respRecord.NHSNumber)
}

func TestVerifyNHSNumberRejectsBadChecksum(t *testing.T) {
	op := NewVerifyNHSNumber(newTestEngine(testConfig(), &fakeWire{}, audit.NewMemorySink(), audit.NewMemorySink()))

	_, err := op.Process(context.Background(), &VerifyNHSNumberRequest{
		NHSNumber:   "9449310603",
		Surname:     "SMITH",
		DateOfBirth: "19700630",
	})
	require.Error(t, err)
	assert.True(t, itkerrors.IsValidation(err))
}

func TestGetPatientDetailsBySearchSuccess(t *testing.T) {
	wire := &fakeWire{body: smspFrame(t, `<getPatientDetailsBySearchResponse>
  <responseCode>SMSP-0000</responseCode>
  <patient>
    <nhsNumber>9449310602</nhsNumber>
    <surname>SMITH</surname>
    <givenName>JOHN</givenName>
    <dateOfBirth>19700630</dateOfBirth>
    <gender>1</gender>
    <address>
      <line>1 High Street</line>
      <line>Leeds</line>
      <postcode>LS1 4HT</postcode>
    </address>
  </patient>
</getPatientDetailsBySearchResponse>`)}
	cfg := testConfig()
	cfg.ServiceID = message.ServiceGetPatientDetailsBySearch
	cfg.ProfileID = message.ProfileGetPatientDetailsBySearchRequest
	op := NewGetPatientDetailsBySearch(newTestEngine(cfg, wire, audit.NewMemorySink(), audit.NewMemorySink()))

	resp, err := op.Process(context.Background(), &GetPatientDetailsBySearchRequest{
		Surname:     "SM*",
		DateOfBirth: "197006",
	})
	require.NoError(t, err)

	assert.Equal(t, CodeSuccess, resp.Code)
	require.NotNil(t, resp.Patient)
	assert.Equal(t, "9449310602", resp.Patient.NHSNumber)
	assert.Equal(t, "SMITH", resp.Patient.Surname)
	assert.Equal(t, []string{"1 High Street", "Leeds"}, resp.Patient.AddressLines)
	assert.Equal(t, "LS1 4HT", resp.Patient.Postcode)
}

func TestGetPatientDetailsByNHSNumberSentinalOnFault(t *testing.T) {
	fault := []byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Client</faultcode>
      <faultstring>processing failed</faultstring>
      <detail>
        <itk:ToolkitErrorInfo xmlns:itk="urn:nhs-itk:ns:201005">
          <itk:ErrorID>2cfd2d4e-6546-4f51-a1b2-8e4bcbb2b326</itk:ErrorID>
          <itk:ErrorCode>1000</itk:ErrorCode>
          <itk:ErrorText>Processing error</itk:ErrorText>
        </itk:ToolkitErrorInfo>
      </detail>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`)
	cfg := testConfig()
	cfg.ServiceID = message.ServiceGetPatientDetailsByNHSNumber
	cfg.ProfileID = message.ProfileGetPatientDetailsByNHSNumberRequest
	op := NewGetPatientDetailsByNHSNumber(newTestEngine(cfg, &fakeWire{body: fault}, audit.NewMemorySink(), audit.NewMemorySink()))

	resp, err := op.Process(context.Background(), &GetPatientDetailsByNHSNumberRequest{
		NHSNumber:   "9449310602",
		Surname:     "SMITH",
		DateOfBirth: "19700630",
	})
	require.NoError(t, err)
	assert.Equal(t, CodeFailed, resp.Code)
	assert.Nil(t, resp.Patient)
}

func TestPayloadShape(t *testing.T) {
	op := NewGetNHSNumber(newTestEngine(testConfig(), &fakeWire{}, audit.NewMemorySink(), audit.NewMemorySink()))

	payload, err := op.Payload(validGetNHSNumberRequest())
	require.NoError(t, err)

	assert.Contains(t, payload, "<getNHSNumberRequest>")
	assert.Contains(t, payload, "<surname>SMITH</surname>")
	assert.Contains(t, payload, "<dateOfBirth>19700630</dateOfBirth>")
	assert.Contains(t, payload, "<localIdentifier>MRN-001234</localIdentifier>")
	// The tracking id is transport correlation only; it must never leak
	// into the business payload.
	assert.NotContains(t, payload, "trackingid")
}
