package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var codeSpace = big.NewInt(1000000)

// GenOTPCode generates a secure random 6-digit code as a zero-padded string.
// Used for both email verification and password reset codes.
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
