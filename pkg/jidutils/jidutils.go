package jidutils

import "strings"

const (
	SuffixUser  = "@s.whatsapp.net"
	SuffixGroup = "@g.us"
)

// ResolveRecipient returns the fully qualified JID for a recipient. Inputs
// that already carry a domain pass through untouched, so resolving twice is
// harmless.
func ResolveRecipient(recipient, recipientType string) string {
	if strings.Contains(recipient, "@") {
		return recipient
	}
	if recipientType == "GROUP" {
		return recipient + SuffixGroup
	}
	// CONTACT and BROADCAST both target user JIDs
	return recipient + SuffixUser
}

// NormalizePhone strips everything but digits and prepends the default
// country code to short local numbers (11 digits or fewer).
func NormalizePhone(raw, defaultCountryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) <= 11 && !strings.HasPrefix(digits, defaultCountryCode) {
		return defaultCountryCode + digits
	}
	return digits
}
