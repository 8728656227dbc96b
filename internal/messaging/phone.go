package messaging

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone parses a free-form Brazilian phone number into E.164
// digits without the plus sign, the format the WhatsApp API expects.
// Unparseable input falls back to a digit strip so a turn never dies on a
// weird number.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, "BR")
	if err == nil && phonenumbers.IsValidNumber(parsed) {
		return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+")
	}
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// PhoneFromJID extracts the bare number from a WhatsApp JID such as
// "5585999999999@s.whatsapp.net".
func PhoneFromJID(jid string) string {
	if at := strings.IndexByte(jid, '@'); at >= 0 {
		jid = jid[:at]
	}
	// Group participants carry a device suffix after a colon.
	if colon := strings.IndexByte(jid, ':'); colon >= 0 {
		jid = jid[:colon]
	}
	return NormalizePhone(jid)
}
