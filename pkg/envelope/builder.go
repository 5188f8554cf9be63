package envelope

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// payloadIDMarker prefixes manifest and payload ids on the wire.
const payloadIDMarker = "uuid_"

// Build constructs the canonical distribution envelope document for a
// message and runs it through the transform. The message must carry its
// properties and service id; the recipient is optional, everything else
// in the header is written from the properties as-is.
func Build(msg *message.Message, transform Transform, templateName string) (string, error) {
	if err := msg.CheckSendable(); err != nil {
		return "", err
	}
	if transform == nil {
		return "", itkerrors.NewConfiguration("payload transform")
	}
	if templateName == "" {
		templateName = DefaultTemplate
	}

	canonical, err := buildCanonical(msg)
	if err != nil {
		return "", err
	}

	wire, err := transform(templateName, canonical)
	if err != nil {
		return "", fmt.Errorf("transforming envelope: %w", err)
	}
	return wire, nil
}

func buildCanonical(msg *message.Message) (string, error) {
	props := msg.Properties

	doc := etree.NewDocument()
	env := doc.CreateElement("itk:DistributionEnvelope")
	env.CreateAttr("xmlns:itk", message.NsDistributionEnvelope)

	header := env.CreateElement("itk:header")
	header.CreateAttr("service", props.ServiceID)
	header.CreateAttr("trackingid", props.TrackingID)

	if props.ToAddress.URI != "" {
		list := header.CreateElement("itk:addresslist")
		addr := list.CreateElement("itk:address")
		addr.CreateAttr("uri", props.ToAddress.URI)
		if props.ToAddress.Type != "" && props.ToAddress.Type != message.AddressTypeITK {
			addr.CreateAttr("type", props.ToAddress.Type)
		}
	}

	if len(props.AuditIdentities) > 0 {
		auditIdentity := header.CreateElement("itk:auditIdentity")
		for _, id := range props.AuditIdentities {
			el := auditIdentity.CreateElement("itk:id")
			el.CreateAttr("uri", id.URI)
			if id.Type != "" && id.Type != message.IdentityTypeITK {
				el.CreateAttr("type", id.Type)
			}
		}
	}

	payloadID := payloadIDMarker + props.ITKPayloadID

	manifest := header.CreateElement("itk:manifest")
	manifest.CreateAttr("count", "1")
	item := manifest.CreateElement("itk:manifestitem")
	item.CreateAttr("mimetype", msg.MimeType)
	item.CreateAttr("id", payloadID)
	item.CreateAttr("profileid", props.ProfileID)
	if msg.Base64 {
		item.CreateAttr("base64", "true")
	}

	if props.FromAddress.URI != "" {
		sender := header.CreateElement("itk:senderAddress")
		sender.CreateAttr("uri", props.FromAddress.URI)
		if props.FromAddress.Type != "" && props.FromAddress.Type != message.AddressTypeITK {
			sender.CreateAttr("type", props.FromAddress.Type)
		}
	}

	if len(props.HandlingSpecs) > 0 {
		handling := header.CreateElement("itk:handlingSpecification")
		for _, key := range sortedKeys(props.HandlingSpecs) {
			spec := handling.CreateElement("itk:spec")
			spec.CreateAttr("key", key)
			spec.CreateAttr("value", props.HandlingSpecs[key])
		}
	}

	payloads := env.CreateElement("itk:payloads")
	payloads.CreateAttr("count", "1")
	payload := payloads.CreateElement("itk:payload")
	payload.CreateAttr("id", payloadID)
	payload.SetText(msg.BusinessPayload)

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing envelope: %w", err)
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
