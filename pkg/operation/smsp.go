package operation

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
)

// PatientDetails is the demographic block carried by the patient-details
// responses.
type PatientDetails struct {
	NHSNumber    string
	Surname      string
	GivenName    string
	DateOfBirth  string
	Gender       string
	AddressLines []string
	Postcode     string
}

// parseResponsePayload parses a received business payload and returns its
// root element plus the mandatory response code.
func parseResponsePayload(payload, wantRoot string) (*etree.Element, string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(payload); err != nil {
		return nil, "", itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"response payload is not well-formed XML", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != wantRoot {
		return nil, "", itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			fmt.Sprintf("response payload is not a %s", wantRoot), nil)
	}
	code := elementText(root, "responseCode")
	if code == "" {
		return nil, "", itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"response payload carries no response code", nil)
	}
	return root, code, nil
}

// parsePatient extracts the patient demographic block, nil when absent.
func parsePatient(root *etree.Element) *PatientDetails {
	p := childElement(root, "patient")
	if p == nil {
		return nil
	}
	d := &PatientDetails{
		NHSNumber:   elementText(p, "nhsNumber"),
		Surname:     elementText(p, "surname"),
		GivenName:   elementText(p, "givenName"),
		DateOfBirth: elementText(p, "dateOfBirth"),
		Gender:      elementText(p, "gender"),
	}
	if addr := childElement(p, "address"); addr != nil {
		for _, child := range addr.ChildElements() {
			if child.Tag == "line" {
				d.AddressLines = append(d.AddressLines, strings.TrimSpace(child.Text()))
			}
		}
		d.Postcode = elementText(addr, "postcode")
	}
	return d
}

// personElement writes the demographic search fields shared by the
// trace-style request payloads. Empty optional fields are omitted.
func personElement(root *etree.Element, surname, givenName, dateOfBirth, gender, postcode string) {
	person := root.CreateElement("person")
	person.CreateElement("surname").SetText(surname)
	if givenName != "" {
		person.CreateElement("givenName").SetText(givenName)
	}
	person.CreateElement("dateOfBirth").SetText(dateOfBirth)
	if gender != "" {
		person.CreateElement("gender").SetText(gender)
	}
	if postcode != "" {
		person.CreateElement("postcode").SetText(postcode)
	}
}

func serialize(doc *etree.Document) (string, error) {
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"serializing request payload", err)
	}
	return out, nil
}

func childElement(parent *etree.Element, tag string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func elementText(parent *etree.Element, tag string) string {
	if child := childElement(parent, tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}
