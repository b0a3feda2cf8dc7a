package model

import "time"

// FormVersion tags archived submissions with the schema that produced them.
const FormVersion = "1.2.0"

// SubmissionRecord is an archived copy of a delivered submission.
type SubmissionRecord struct {
	ID          string
	Title       string
	Payload     string // pretty-printed JSON of the sanitized fields
	IP          string
	UserAgent   string
	SubmittedAt time.Time
	FormVersion string
}
