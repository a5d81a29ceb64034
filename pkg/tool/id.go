package tool

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"unicode"

	"github.com/google/uuid"
)

const (
	PaymentReferenceLength = 18
	paymentReferenceLabel  = "payref"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// DeterministicID derives a stable name-based UUID from namespace and name.
// The hash is keyed with secret so ids cannot be precomputed without it.
func DeterministicID(secret []byte, namespace uuid.UUID, name string) uuid.UUID {
	return uuid.NewHash(hmac.New(sha256.New, secret), namespace, []byte(name), 8)
}

// PaymentReference returns the 18 character reference sent to the bank for paymentID.
func PaymentReference(secret []byte, paymentID uuid.UUID) string {
	ref := DeterministicID(secret, paymentID, paymentReferenceLabel)
	return base64.RawURLEncoding.EncodeToString(ref[:])[:PaymentReferenceLength]
}

// LastFourDigits returns the last four digits of a card number, ignoring
// separators. Shorter inputs return every digit found.
func LastFourDigits(cardNumber string) string {
	digits := make([]rune, 0, len(cardNumber))
	for _, r := range cardNumber {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}
