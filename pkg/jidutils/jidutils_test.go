package jidutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRecipient_GroupSuffix(t *testing.T) {
	assert.Equal(t, "5213312345678-1621234567@g.us", ResolveRecipient("5213312345678-1621234567", "GROUP"))
}

func TestResolveRecipient_ContactSuffix(t *testing.T) {
	assert.Equal(t, "5213312345678@s.whatsapp.net", ResolveRecipient("5213312345678", "CONTACT"))
	assert.Equal(t, "5213312345678@s.whatsapp.net", ResolveRecipient("5213312345678", "BROADCAST"))
}

// Resolver dos veces no debe duplicar el sufijo
func TestResolveRecipient_Idempotent(t *testing.T) {
	once := ResolveRecipient("5213312345678", "CONTACT")
	twice := ResolveRecipient(once, "CONTACT")
	assert.Equal(t, once, twice)

	// A group JID passed with CONTACT type still passes through untouched
	assert.Equal(t, "1234-567@g.us", ResolveRecipient("1234-567@g.us", "CONTACT"))
}

func TestNormalizePhone(t *testing.T) {
	// Short local number gets the default country code
	assert.Equal(t, "523312345678", NormalizePhone("3312345678", "52"))
	// Formatting characters are stripped first
	assert.Equal(t, "523312345678", NormalizePhone("(33) 1234-5678", "52"))
	// Already-qualified international numbers pass through
	assert.Equal(t, "5213312345678", NormalizePhone("5213312345678", "52"))
	assert.Equal(t, "", NormalizePhone("n/a", "52"))
}
