package service

import (
	"regexp"
	"strings"
	"time"
)

// ApplicationSubmission is the raw admission form payload. Every field
// arrives as a string; validation decides what is usable before any domain
// record is constructed.
type ApplicationSubmission struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	DateOfBirth       string `json:"dateOfBirth"`
	Gender            string `json:"gender"`
	Grade             string `json:"grade"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	ZipCode           string `json:"zipCode"`
	Country           string `json:"country"`
	ParentName        string `json:"parentName"`
	ParentEmail       string `json:"parentEmail"`
	ParentPhone       string `json:"parentPhone"`
	PreviousSchool    string `json:"previousSchool"`
	MedicalConditions string `json:"medicalConditions"`
	AdditionalInfo    string `json:"additionalInfo"`
	AdmissionDate     string `json:"admissionDate"`
}

// ValidationResult carries the ordered outcome of application validation.
type ValidationResult struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
}

const submissionDateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ValidateApplication checks a raw submission against presence, format and
// business-rule constraints. All errors are collected in a fixed order, never
// short-circuited. Pure function of the input and the provided clock.
//
// The age rule is a plain year difference, so a student turning 5 on
// December 31 already passes on January 1 of that year. Kept for
// compatibility with the reports the portal has always produced.
func ValidateApplication(sub ApplicationSubmission, now time.Time) ValidationResult {
	var errs []string

	require := func(value, message string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, message)
		}
	}

	require(sub.FirstName, "First name is required")
	require(sub.LastName, "Last name is required")
	require(sub.Email, "Email is required")
	require(sub.Phone, "Phone number is required")
	require(sub.DateOfBirth, "Date of birth is required")
	require(sub.Gender, "Gender is required")
	require(sub.Grade, "Grade is required")
	require(sub.Address, "Address is required")
	require(sub.City, "City is required")
	require(sub.State, "State is required")
	require(sub.ZipCode, "Zip code is required")
	require(sub.Country, "Country is required")
	require(sub.ParentName, "Parent/Guardian name is required")
	require(sub.ParentEmail, "Parent email is required")
	require(sub.ParentPhone, "Parent phone is required")
	require(sub.AdmissionDate, "Admission date is required")

	if sub.Email != "" && !emailPattern.MatchString(sub.Email) {
		errs = append(errs, "Invalid email format")
	}
	if sub.ParentEmail != "" && !emailPattern.MatchString(sub.ParentEmail) {
		errs = append(errs, "Invalid parent email format")
	}

	if sub.Phone != "" && !phonePattern.MatchString(sub.Phone) {
		errs = append(errs, "Invalid phone number format")
	}
	if sub.ParentPhone != "" && !phonePattern.MatchString(sub.ParentPhone) {
		errs = append(errs, "Invalid parent phone number format")
	}

	if sub.DateOfBirth != "" {
		if dob, err := time.Parse(submissionDateLayout, sub.DateOfBirth); err == nil {
			age := now.Year() - dob.Year()
			if age < 5 || age > 25 {
				errs = append(errs, "Student age must be between 5 and 25 years")
			}
		}
	}

	if sub.AdmissionDate != "" {
		if admission, err := time.Parse(submissionDateLayout, sub.AdmissionDate); err == nil {
			if admission.Before(now) {
				errs = append(errs, "Admission date cannot be in the past")
			}
		}
	}

	if sub.ZipCode != "" && !zipPattern.MatchString(sub.ZipCode) {
		errs = append(errs, "Invalid zip code format")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
