package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() ApplicationSubmission {
	return ApplicationSubmission{
		FirstName:     "Ada",
		LastName:      "Okafor",
		Email:         "ada@example.com",
		Phone:         "+1 (555) 123-4567",
		DateOfBirth:   "2015-03-14",
		Gender:        "female",
		Grade:         "Grade 5",
		Address:       "12 Main St",
		City:          "Lagos",
		State:         "LA",
		ZipCode:       "12345",
		Country:       "Nigeria",
		ParentName:    "Ngozi Okafor",
		ParentEmail:   "ngozi@example.com",
		ParentPhone:   "+1 555 987 6543",
		AdmissionDate: "2099-09-01",
	}
}

func testClock() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func TestValidateApplicationAccepted(t *testing.T) {
	result := ValidateApplication(validSubmission(), testClock())
	require.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateApplicationCollectsAllErrorsInOrder(t *testing.T) {
	result := ValidateApplication(ApplicationSubmission{}, testClock())
	require.False(t, result.Valid)
	assert.Equal(t, []string{
		"First name is required",
		"Last name is required",
		"Email is required",
		"Phone number is required",
		"Date of birth is required",
		"Gender is required",
		"Grade is required",
		"Address is required",
		"City is required",
		"State is required",
		"Zip code is required",
		"Country is required",
		"Parent/Guardian name is required",
		"Parent email is required",
		"Parent phone is required",
		"Admission date is required",
	}, result.Errors)
}

func TestValidateApplicationEmailFormats(t *testing.T) {
	sub := validSubmission()
	sub.Email = "not-an-email"
	sub.ParentEmail = "also not"

	result := ValidateApplication(sub, testClock())
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Invalid email format", "Invalid parent email format"}, result.Errors)
}

func TestValidateApplicationPhoneFormats(t *testing.T) {
	sub := validSubmission()
	sub.Phone = "call me"
	sub.ParentPhone = "n/a"

	result := ValidateApplication(sub, testClock())
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Invalid phone number format", "Invalid parent phone number format"}, result.Errors)
}

func TestValidateApplicationAgeBounds(t *testing.T) {
	now := testClock()

	tooYoung := validSubmission()
	tooYoung.DateOfBirth = "2021-12-31"
	result := ValidateApplication(tooYoung, now)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Student age must be between 5 and 25 years")

	// Plain year difference: born late 2019 counts as 5 throughout 2024.
	justOldEnough := validSubmission()
	justOldEnough.DateOfBirth = "2019-12-31"
	result = ValidateApplication(justOldEnough, now)
	assert.True(t, result.Valid)

	tooOld := validSubmission()
	tooOld.DateOfBirth = "1998-01-01"
	result = ValidateApplication(tooOld, now)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Student age must be between 5 and 25 years")

	oldest := validSubmission()
	oldest.DateOfBirth = "1999-01-01"
	result = ValidateApplication(oldest, now)
	assert.True(t, result.Valid)
}

func TestValidateApplicationAdmissionDateNotPast(t *testing.T) {
	sub := validSubmission()
	sub.AdmissionDate = "2024-06-14"

	result := ValidateApplication(sub, testClock())
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Admission date cannot be in the past"}, result.Errors)
}

func TestValidateApplicationZipCode(t *testing.T) {
	short := validSubmission()
	short.ZipCode = "1234"
	result := ValidateApplication(short, testClock())
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Invalid zip code format"}, result.Errors)

	extended := validSubmission()
	extended.ZipCode = "12345-6789"
	result = ValidateApplication(extended, testClock())
	assert.True(t, result.Valid)
}

func TestValidateApplicationSkipsChecksOnUnparsableDates(t *testing.T) {
	sub := validSubmission()
	sub.DateOfBirth = "14/03/2015"
	sub.AdmissionDate = "soon"

	// Format checks are deferred to submission; presence is all that counts here.
	result := ValidateApplication(sub, testClock())
	assert.True(t, result.Valid)
}
