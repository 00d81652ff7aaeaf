package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateRandomString returns a random hex string of the given length.
func GenerateRandomString(length int) string {
	bytes := make([]byte, length/2+1)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:length]
}

// GenerateInviteToken returns an opaque invite credential.
func GenerateInviteToken() string {
	return uuid.New().String()
}

// GenerateOTP returns a six-digit numeric code for two-factor login.
func GenerateOTP() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(900000))
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// GenerateInvoiceRef returns a provider-facing invoice reference.
// Format: TRN-XXXXXXXX
func GenerateInvoiceRef() string {
	return "TRN-" + strings.ToUpper(GenerateRandomString(8))
}

// MaskEmail hides the middle of an address for logs.
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	name := parts[0]
	domain := parts[1]
	if len(name) <= 2 {
		return email
	}
	masked := name[0:1] + "***" + name[len(name)-1:]
	return masked + "@" + domain
}

// DedupeEmails returns the unique non-empty addresses, preserving the
// order of first appearance.
func DedupeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	result := make([]string, 0, len(emails))
	for _, e := range emails {
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		result = append(result, e)
	}
	return result
}
