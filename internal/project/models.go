package project

import "time"

// Project is one video being dubbed.
type Project struct {
	ID             int64
	Name           string
	VideoPath      string
	SourceLanguage string
	TargetLanguage string
	Voice          string // empty means the target language's default
	ClipDir        string
	OutputPath     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// JobRecord is one terminal job outcome. Running jobs are never recorded;
// a record exists only once the job has completed, failed, or been
// cancelled.
type JobRecord struct {
	ID           int64
	ProjectID    int64
	JobID        string
	Stage        string
	Status       string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}
