package service

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// idAlphabet matches the uppercased base36 suffix used by the legacy portal.
const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewApplicationID produces an application identity in the legacy
// "app_<millisecond timestamp>" format.
func NewApplicationID(now time.Time) string {
	return fmt.Sprintf("app_%d", now.UnixMilli())
}

// NewStudentID produces a student identity: "STU" + the last six digits of
// the millisecond timestamp + three random base36 characters. Collision
// resistance is adequate for thousands of records, not cryptographic.
func NewStudentID(now time.Time) string {
	return "STU" + idSuffix(now)
}

// NewEnrollmentID produces an enrollment identity with the "ENR" prefix and
// the same suffix pattern as student IDs.
func NewEnrollmentID(now time.Time) string {
	return "ENR" + idSuffix(now)
}

func idSuffix(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return ms + string(suffix)
}
