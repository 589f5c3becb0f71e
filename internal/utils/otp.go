package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPLength is the number of digits in a one-time code.
const OTPLength = 6

// GenerateOTP returns a zero-padded random numeric code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
