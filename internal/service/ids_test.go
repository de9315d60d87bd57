package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationID(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "app_1718445600000", NewApplicationID(now))
}

func TestNewStudentID(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	id := NewStudentID(now)

	require.Len(t, id, 12)
	assert.True(t, strings.HasPrefix(id, "STU"))
	assert.Equal(t, "600000", id[3:9])
	for _, r := range id[9:] {
		assert.Contains(t, idAlphabet, string(r))
	}
}

func TestNewEnrollmentID(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	id := NewEnrollmentID(now)

	require.Len(t, id, 12)
	assert.True(t, strings.HasPrefix(id, "ENR"))
	assert.Equal(t, "600000", id[3:9])
}

func TestSession(t *testing.T) {
	assert.Equal(t, "2024-2025", Session(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-2027", Session(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)))
}
