package transport

import (
	"context"
	"strconv"

	"github.com/beevik/etree"

	"github.com/Inhealthcare/open-itk/pkg/audit"
	"github.com/Inhealthcare/open-itk/pkg/envelope"
	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// Status is the classified outcome of a synchronous send.
type Status int

const (
	// StatusSuccess means the remote returned a business response.
	StatusSuccess Status = iota
	// StatusBusy means the remote signalled it is unavailable.
	StatusBusy
	// StatusFault means the remote returned a structured SOAP fault.
	StatusFault
)

// Result is the outcome of a synchronous send. Busy and fault are result
// variants, not errors: only malformed wire data, missing configuration
// and audit failures surface as errors.
type Result struct {
	Status  Status
	Message *message.Message
	Fault   *Fault
}

// Sender performs synchronous sends: frame, audit, transmit, classify,
// audit, return. Safe for concurrent use.
type Sender struct {
	transport  Transport
	sink       audit.Sink
	ownAddress string
	username   string
}

// NewSender creates a sender. ownAddress is used as the addressing From
// value; username, when non-empty, is carried in the security header.
func NewSender(transport Transport, sink audit.Sink, ownAddress, username string) *Sender {
	return &Sender{
		transport:  transport,
		sink:       sink,
		ownAddress: ownAddress,
		username:   username,
	}
}

// SendSync sends an enveloped message over the route and classifies the
// response. The message's transport properties are regenerated for this
// hop. The returned response message carries the request's conversation
// id and the remote's transport properties.
func (s *Sender) SendSync(ctx context.Context, route *message.TransportRoute, msg *message.Message, envelopeText string) (*Result, error) {
	if route == nil {
		return nil, itkerrors.NewConfiguration("transport route")
	}
	if msg == nil {
		return nil, itkerrors.NewConfiguration("message")
	}
	if err := msg.CheckSendable(); err != nil {
		return nil, err
	}

	tp := message.NewTransportProperties(route, msg.Properties.ServiceID, s.username)
	tp.From = s.ownAddress
	msg.Transport = tp

	frame, err := BuildFrame(tp, envelopeText)
	if err != nil {
		return nil, err
	}

	if err := s.sink.AuditRequest(audit.NewTransportDetails(msg.ConversationID, tp, audit.TypeRequest, "OK")); err != nil {
		return nil, itkerrors.NewLogging(err)
	}

	body, sendErr := s.transport.Send(ctx, frame, route, map[string]string{
		"SOAPAction": msg.Properties.ServiceID,
	})

	switch {
	case itkerrors.IsBusy(sendErr):
		if err := s.auditFailure(msg.ConversationID, tp, "FAIL:BUSY"); err != nil {
			return nil, err
		}
		return &Result{Status: StatusBusy}, nil

	case sendErr != nil:
		if err := s.auditFailure(msg.ConversationID, tp, "FAIL:COMMS"); err != nil {
			return nil, err
		}
		return nil, sendErr

	case body == nil:
		// The caller asked for a synchronous answer; an accepted-without-
		// body reply cannot satisfy that.
		if err := s.auditFailure(msg.ConversationID, tp, "202"); err != nil {
			return nil, err
		}
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"remote accepted the message but returned no synchronous response", nil)
	}

	parsed, err := parseFrame(body)
	if err != nil {
		if auditErr := s.auditFailure(msg.ConversationID, tp, "FAIL:PARSE"); auditErr != nil {
			return nil, auditErr
		}
		return nil, err
	}

	if parsed.Fault != nil {
		if err := s.auditFailure(msg.ConversationID, tp, strconv.Itoa(parsed.Fault.Code)); err != nil {
			return nil, err
		}
		return &Result{Status: StatusFault, Fault: parsed.Fault}, nil
	}

	response, err := s.responseMessage(msg, parsed)
	if err != nil {
		if auditErr := s.auditFailure(msg.ConversationID, tp, "FAIL:PARSE"); auditErr != nil {
			return nil, auditErr
		}
		return nil, err
	}

	if err := s.sink.AuditResponse(audit.NewTransportDetails(msg.ConversationID, response.Transport, audit.TypeResponse, "OK")); err != nil {
		return nil, itkerrors.NewLogging(err)
	}

	return &Result{Status: StatusSuccess, Message: response}, nil
}

// auditFailure writes a transport-level failure record, escalating a
// sink failure as a logging error.
func (s *Sender) auditFailure(conversationID string, tp *message.TransportProperties, status string) error {
	if err := s.sink.AuditFailure(audit.NewTransportDetails(conversationID, tp, audit.TypeFailure, status)); err != nil {
		return itkerrors.NewLogging(err)
	}
	return nil
}

// responseMessage turns a parsed response frame into a response Message
// correlated with the request.
func (s *Sender) responseMessage(request *message.Message, parsed *frameResponse) (*message.Message, error) {
	envDoc := etree.NewDocument()
	envDoc.AddChild(parsed.Envelope.Copy())
	wire, err := envDoc.WriteToString()
	if err != nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"serializing response envelope", err)
	}

	response, err := envelope.Parse(wire)
	if err != nil {
		return nil, err
	}

	response.ConversationID = request.ConversationID
	tp := parsed.Transport
	response.Transport = &tp
	return response, nil
}
