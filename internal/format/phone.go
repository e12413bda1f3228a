package format

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "PH"

var errInvalidNumber = errors.New("invalid phone number")

// Phone renders a number in international format. Unparseable input is
// returned trimmed so nothing the customer typed is lost.
func Phone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := parse(raw, region)
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// PhoneE164 returns the E.164 form, or "" when raw is not a valid number.
func PhoneE164(raw, region string) string {
	num, err := parse(strings.TrimSpace(raw), region)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func parse(raw, region string) (*phonenumbers.PhoneNumber, error) {
	if region == "" {
		region = DefaultRegion
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return nil, err
	}
	if !phonenumbers.IsValidNumber(num) {
		return nil, errInvalidNumber
	}
	return num, nil
}
