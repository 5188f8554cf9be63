package identity

import (
	"strings"
	"time"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
)

// DateMode selects the accepted date-of-birth granularity.
type DateMode int

const (
	// DateStrict accepts only a full YYYYMMDD calendar date.
	DateStrict DateMode = iota
	// DatePartial additionally accepts YYYYMM and YYYY.
	DatePartial
)

// NameMode selects the name validation rule set.
type NameMode int

const (
	// NameOptionalMinLength3 allows an absent value; a present value must
	// be at least three characters and contain no wildcard.
	NameOptionalMinLength3 NameMode = iota
	// NameWildcardAfter2 allows an absent value; a wildcard in a present
	// value must be preceded by at least two literal characters.
	NameWildcardAfter2
	// NameMandatoryWildcardAfter2 is NameWildcardAfter2 with a required
	// value.
	NameMandatoryWildcardAfter2
)

// GenderMode selects whether a gender code is required.
type GenderMode int

const (
	// GenderMandatory requires a value from the configured code set.
	GenderMandatory GenderMode = iota
	// GenderOptional allows an absent value.
	GenderOptional
)

const nhsNumberLength = 10

// ValidateNHSNumber checks that s is exactly ten ASCII digits and that the
// Mod-11 check digit holds.
func ValidateNHSNumber(s string) error {
	fail := func() error {
		return itkerrors.NewValidation("NHS number is invalid", s)
	}
	if len(s) != nhsNumberLength {
		return fail()
	}
	sum := 0
	for i := 0; i < nhsNumberLength-1; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return fail()
		}
		sum += int(c-'0') * (nhsNumberLength - i)
	}
	last := s[nhsNumberLength-1]
	if last < '0' || last > '9' {
		return fail()
	}
	check := 11 - sum%11
	if check == 11 {
		check = 0
	}
	if check == 10 || check != int(last-'0') {
		return fail()
	}
	return nil
}

// dateLayouts maps input length to the layout accepted at that granularity.
var dateLayouts = map[int]string{
	8: "20060102",
	6: "200601",
	4: "2006",
}

// ValidateDateOfBirth checks that s is a calendar-valid date at a
// granularity permitted by mode. Blank always fails.
func ValidateDateOfBirth(s string, mode DateMode) error {
	fail := func() error {
		return itkerrors.NewValidation("date of birth is invalid", s)
	}
	if s == "" {
		return fail()
	}
	if mode == DateStrict && len(s) != 8 {
		return fail()
	}
	layout, ok := dateLayouts[len(s)]
	if !ok {
		return fail()
	}
	if _, err := time.Parse(layout, s); err != nil {
		return fail()
	}
	return nil
}

// ValidateName checks a person name component under the given mode. The
// label names the field in the failure prefix (e.g. "surname").
func ValidateName(label, s string, mode NameMode) error {
	fail := func() error {
		return itkerrors.NewValidation(label+" is invalid", s)
	}
	if s == "" {
		if mode == NameMandatoryWildcardAfter2 {
			return fail()
		}
		return nil
	}
	switch mode {
	case NameOptionalMinLength3:
		if len(s) < 3 || strings.ContainsRune(s, '*') {
			return fail()
		}
	case NameWildcardAfter2, NameMandatoryWildcardAfter2:
		if !wildcardAfter(s, 2) {
			return fail()
		}
	}
	return nil
}

const postcodeMaxLength = 8

// ValidatePostcode checks an optional postcode: at most eight characters,
// letters, digits, at most one space, and a wildcard only after at least
// two literal characters.
func ValidatePostcode(s string) error {
	fail := func() error {
		return itkerrors.NewValidation("postcode is invalid", s)
	}
	if s == "" {
		return nil
	}
	if len(s) > postcodeMaxLength {
		return fail()
	}
	spaces := 0
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == ' ':
			spaces++
		case r == '*':
		default:
			return fail()
		}
	}
	if spaces > 1 {
		return fail()
	}
	if !wildcardAfter(s, 2) {
		return fail()
	}
	return nil
}

// ValidateGender checks a gender code against the configured code set.
func ValidateGender(s string, mode GenderMode, codes []string) error {
	fail := func() error {
		return itkerrors.NewValidation("gender is invalid", s)
	}
	if s == "" {
		if mode == GenderMandatory {
			return fail()
		}
		return nil
	}
	for _, code := range codes {
		if s == code {
			return nil
		}
	}
	return fail()
}

// wildcardAfter reports whether every '*' in s follows at least min
// literal characters. Spaces are separators, not literals.
func wildcardAfter(s string, min int) bool {
	literals := 0
	for _, r := range s {
		switch r {
		case '*':
			if literals < min {
				return false
			}
		case ' ':
		default:
			literals++
		}
	}
	return true
}
