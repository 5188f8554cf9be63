package envelope

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// Parse extracts a Message from a received distribution envelope document.
// An envelope whose payload count is anything other than one is rejected
// as a non-retryable processing error; handling multiple payloads is a
// documented limitation of this toolkit.
func Parse(wire string) (*message.Message, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(wire); err != nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"distribution envelope is not well-formed XML", err)
	}

	env := doc.Root()
	if env == nil || env.Tag != "DistributionEnvelope" {
		return nil, itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"document is not a distribution envelope", nil)
	}

	payloadsEl := childByTag(env, "payloads")
	if payloadsEl == nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"distribution envelope has no payloads element", nil)
	}
	payloadEls := childrenByTag(payloadsEl, "payload")
	if len(payloadEls) != 1 {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			fmt.Sprintf("distribution envelope carries %d payloads, exactly one is supported", len(payloadEls)), nil)
	}
	payloadEl := payloadEls[0]

	msg := message.New(payloadEl.Text())
	msg.IsResponse = true
	props := &message.MessageProperties{HandlingSpecs: make(map[string]string)}
	msg.Properties = props

	props.ITKPayloadID = strings.TrimPrefix(payloadEl.SelectAttrValue("id", ""), payloadIDMarker)

	header := childByTag(env, "header")
	if header == nil {
		return msg, nil
	}

	props.ServiceID = header.SelectAttrValue("service", "")
	props.TrackingID = header.SelectAttrValue("trackingid", "")

	if manifest := childByTag(header, "manifest"); manifest != nil {
		if item := childByTag(manifest, "manifestitem"); item != nil {
			props.ProfileID = item.SelectAttrValue("profileid", "")
			msg.MimeType = item.SelectAttrValue("mimetype", "")
			msg.Base64 = item.SelectAttrValue("base64", "") == "true"
		}
	}

	if auditIdentity := childByTag(header, "auditIdentity"); auditIdentity != nil {
		if id := childByTag(auditIdentity, "id"); id != nil {
			props.AddAuditIdentity(message.Identity{
				URI:  id.SelectAttrValue("uri", ""),
				Type: id.SelectAttrValue("type", ""),
			})
		}
	}

	if sender := childByTag(header, "senderAddress"); sender != nil {
		props.FromAddress = addressFromElement(sender)
	}
	if list := childByTag(header, "addresslist"); list != nil {
		if addr := childByTag(list, "address"); addr != nil {
			props.ToAddress = addressFromElement(addr)
		}
	}

	if handling := childByTag(header, "handlingSpecification"); handling != nil {
		for _, spec := range childrenByTag(handling, "spec") {
			key := spec.SelectAttrValue("key", "")
			if key == message.HandlingKeyAckRequested {
				props.SetHandlingSpec(key, spec.SelectAttrValue("value", ""))
			}
		}
	}

	return msg, nil
}

func addressFromElement(el *etree.Element) message.Address {
	addr := message.Address{
		URI:  el.SelectAttrValue("uri", ""),
		Type: el.SelectAttrValue("type", ""),
	}
	if addr.Type == "" {
		addr.Type = message.AddressTypeITK
	}
	return addr
}

// childByTag returns the first child with the given local tag, ignoring
// namespace prefixes.
func childByTag(parent *etree.Element, tag string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func childrenByTag(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}
