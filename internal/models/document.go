package models

import "time"

// DocumentType enumerates the supporting evidence categories.
type DocumentType string

// Accepted document types.
const (
	DocumentTypeBirthCertificate DocumentType = "birth_certificate"
	DocumentTypePreviousReport   DocumentType = "previous_report"
	DocumentTypeMedicalRecords   DocumentType = "medical_records"
	DocumentTypePhoto            DocumentType = "photo"
	DocumentTypeAddressProof     DocumentType = "address_proof"
	DocumentTypeOther            DocumentType = "other"
)

// Valid reports whether the type is a known document category.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeBirthCertificate, DocumentTypePreviousReport, DocumentTypeMedicalRecords,
		DocumentTypePhoto, DocumentTypeAddressProof, DocumentTypeOther:
		return true
	}
	return false
}

// DocumentStatus captures the verification state of an uploaded document.
// Verified and rejected are terminal; there is no un-verify.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Document is a piece of supporting evidence attached to an application.
type Document struct {
	ID            string         `db:"id" json:"id"`
	ApplicationID string         `db:"application_id" json:"application_id"`
	Name          string         `db:"name" json:"name"`
	Type          DocumentType   `db:"type" json:"type"`
	URL           string         `db:"url" json:"url"`
	Status        DocumentStatus `db:"status" json:"status"`
	UploadedAt    time.Time      `db:"uploaded_at" json:"uploaded_at"`
}
