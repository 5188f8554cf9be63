package audit

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// LogSink writes audit records as structured log entries. It is the
// default sink: constructed once at process start and passed by
// interface, never reached through global state.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a sink over the given logger.
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// AuditRequest implements Sink.
func (s *LogSink) AuditRequest(r Record) error { return s.write(r) }

// AuditResponse implements Sink.
func (s *LogSink) AuditResponse(r Record) error { return s.write(r) }

// AuditFailure implements Sink.
func (s *LogSink) AuditFailure(r Record) error { return s.write(r) }

func (s *LogSink) write(r Record) error {
	base := r.Base()
	fields := logrus.Fields{
		"conversationId": base.ConversationID,
		"timestamp":      base.Timestamp,
		"type":           base.Type,
		"status":         base.Status,
	}
	switch d := r.(type) {
	case *ProtocolDetails:
		fields["trackingId"] = d.TrackingID
		fields["payloadId"] = d.PayloadID
		fields["serviceId"] = d.ServiceID
		fields["profileId"] = d.ProfileID
		if d.NHSNumber != "" {
			fields["nhsNumber"] = d.NHSNumber
		}
		if d.LocalAuditID != "" {
			fields["localAuditId"] = d.LocalAuditID
		}
		if d.SenderAddress != "" {
			fields["senderAddress"] = d.SenderAddress
		}
	case *TransportDetails:
		fields["messageId"] = d.MessageID
		fields["creationTime"] = d.CreationTime
		fields["to"] = d.To
		fields["action"] = d.Action
		if d.UserID != "" {
			fields["userId"] = d.UserID
		}
	}
	s.logger.WithFields(fields).Info("audit")
	return nil
}

// MemorySink records audit writes in memory. Intended for tests.
type MemorySink struct {
	mu        sync.Mutex
	requests  []Record
	responses []Record
	failures  []Record

	// Fail, when set, is returned from every write.
	Fail error
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// AuditRequest implements Sink.
func (s *MemorySink) AuditRequest(r Record) error {
	return s.append(&s.requests, r)
}

// AuditResponse implements Sink.
func (s *MemorySink) AuditResponse(r Record) error {
	return s.append(&s.responses, r)
}

// AuditFailure implements Sink.
func (s *MemorySink) AuditFailure(r Record) error {
	return s.append(&s.failures, r)
}

func (s *MemorySink) append(dst *[]Record, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	*dst = append(*dst, r)
	return nil
}

// Requests returns a copy of the recorded request records.
func (s *MemorySink) Requests() []Record { return s.copyOf(&s.requests) }

// Responses returns a copy of the recorded response records.
func (s *MemorySink) Responses() []Record { return s.copyOf(&s.responses) }

// Failures returns a copy of the recorded failure records.
func (s *MemorySink) Failures() []Record { return s.copyOf(&s.failures) }

func (s *MemorySink) copyOf(src *[]Record) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(*src))
	copy(out, *src)
	return out
}
