package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 6

	// maxInviteCodeAttempts bounds retries when a generated code is already taken.
	maxInviteCodeAttempts = 10
)

// newInviteCode is replaced in tests to force collisions.
var newInviteCode = generateInviteCode

func generateInviteCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(inviteCodeAlphabet)))
	var b strings.Builder
	b.Grow(inviteCodeLength)
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// normalizeInviteCode upper-cases and trims user input.
func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
