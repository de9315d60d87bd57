package models

// Class is static reference data describing a grade-level section. Classes
// are seeded, never created or destroyed by the enrollment workflow, and are
// looked up by their grade label during approval.
type Class struct {
	ClassID   string  `db:"class_id" json:"class_id"`
	ClassName string  `db:"class_name" json:"class_name"`
	Section   string  `db:"section" json:"section"`
	TeacherID *string `db:"teacher_id" json:"teacher_id,omitempty"`
}
