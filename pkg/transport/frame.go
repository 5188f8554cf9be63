package transport

import (
	"strconv"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// wsuTimeFormat is the timestamp format used in the security header.
const wsuTimeFormat = "2006-01-02T15:04:05Z"

// Fault is a structured SOAP fault extracted from a response frame.
type Fault struct {
	// Code is the numeric toolkit error code from the fault detail.
	Code int
	// Text is the short fault description.
	Text string
	// Diagnostic is the extended diagnostic text, if present.
	Diagnostic string
	// CorrelationID is the error id from the fault detail, used for
	// cross-log tracing.
	CorrelationID string
}

// BuildFrame wraps a distribution envelope document in a SOAP frame
// carrying the per-hop WS-Addressing and security headers.
func BuildFrame(tp *message.TransportProperties, envelopeText string) (string, error) {
	inner := etree.NewDocument()
	if err := inner.ReadFromString(envelopeText); err != nil || inner.Root() == nil {
		return "", itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"distribution envelope is not well-formed XML", err)
	}

	doc := etree.NewDocument()
	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", message.NsSOAPEnv)
	env.CreateAttr("xmlns:wsa", message.NsWSA)

	header := env.CreateElement("soap:Header")
	header.CreateElement("wsa:MessageID").SetText(tp.MessageID)
	header.CreateElement("wsa:Action").SetText(tp.Action)
	header.CreateElement("wsa:To").SetText(tp.To)
	if tp.From != "" {
		header.CreateElement("wsa:From").CreateElement("wsa:Address").SetText(tp.From)
	}
	if tp.ReplyTo != "" {
		header.CreateElement("wsa:ReplyTo").CreateElement("wsa:Address").SetText(tp.ReplyTo)
	}
	if tp.FaultTo != "" {
		header.CreateElement("wsa:FaultTo").CreateElement("wsa:Address").SetText(tp.FaultTo)
	}
	if tp.RelatesTo != "" {
		header.CreateElement("wsa:RelatesTo").SetText(tp.RelatesTo)
	}

	security := header.CreateElement("wsse:Security")
	security.CreateAttr("xmlns:wsse", message.NsWSSE)
	security.CreateAttr("xmlns:wsu", message.NsWSU)
	timestamp := security.CreateElement("wsu:Timestamp")
	timestamp.CreateElement("wsu:Created").SetText(tp.Created.UTC().Format(wsuTimeFormat))
	timestamp.CreateElement("wsu:Expires").SetText(tp.Expires.UTC().Format(wsuTimeFormat))
	if tp.Username != "" {
		token := security.CreateElement("wsse:UsernameToken")
		token.CreateElement("wsse:Username").SetText(tp.Username)
	}

	body := env.CreateElement("soap:Body")
	body.AddChild(inner.Root().Copy())

	doc.Indent(2)
	return doc.WriteToString()
}

// frameResponse is the parsed shape of a response frame.
type frameResponse struct {
	// Envelope is the distribution envelope element, nil on a fault.
	Envelope *etree.Element
	// Fault is set when the body carries a SOAP fault.
	Fault *Fault
	// Transport holds the addressing values echoed by the remote.
	Transport message.TransportProperties
}

// parseFrame extracts the response body and addressing values from a
// received SOAP frame.
func parseFrame(data []byte) (*frameResponse, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"response frame is not well-formed XML", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Envelope" {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"response is not a SOAP envelope", nil)
	}

	resp := &frameResponse{}

	if header := childByTag(root, "Header"); header != nil {
		resp.Transport.MessageID = childText(header, "MessageID")
		resp.Transport.Action = childText(header, "Action")
		resp.Transport.RelatesTo = childText(header, "RelatesTo")
		resp.Transport.To = childText(header, "To")
	}

	body := childByTag(root, "Body")
	if body == nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"response frame has no body", nil)
	}

	if faultEl := childByTag(body, "Fault"); faultEl != nil {
		resp.Fault = parseFault(faultEl)
		return resp, nil
	}

	envelope := childByTag(body, "DistributionEnvelope")
	if envelope == nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"response frame carries no distribution envelope", nil)
	}
	resp.Envelope = envelope
	return resp, nil
}

// parseFault extracts the toolkit error detail from a SOAP fault element.
func parseFault(faultEl *etree.Element) *Fault {
	fault := &Fault{Text: childText(faultEl, "faultstring")}

	detail := childByTag(faultEl, "detail")
	if detail == nil {
		return fault
	}
	info := childByTag(detail, "ToolkitErrorInfo")
	if info == nil {
		return fault
	}

	fault.CorrelationID = childText(info, "ErrorID")
	fault.Diagnostic = childText(info, "ErrorDiagnosticText")
	if text := childText(info, "ErrorText"); text != "" {
		fault.Text = text
	}
	if code, err := strconv.Atoi(childText(info, "ErrorCode")); err == nil {
		fault.Code = code
	}
	return fault
}

func childByTag(parent *etree.Element, tag string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func childText(parent *etree.Element, tag string) string {
	if el := childByTag(parent, tag); el != nil {
		// Addressing elements may nest the value in an Address child.
		if addr := childByTag(el, "Address"); addr != nil {
			return addr.Text()
		}
		return el.Text()
	}
	return ""
}
