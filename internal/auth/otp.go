package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPTTL is how long a password-reset code stays valid.
const OTPTTL = 10 * time.Minute

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP draws a uniform 6-digit reset code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
