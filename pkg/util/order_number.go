package util

import (
	"fmt"
	"math/rand"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // sem 0/O/1/I

// GenerateOrderNumber builds a public order number like NSR-20260115-A1B2C3.
// Uniqueness is enforced by the database index; callers retry on collision.
func GenerateOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("NSR-%s-%s", now.Format("20060102"), string(suffix))
}
