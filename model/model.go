package model

import (
	"encoding/json"
	"time"
)

type QuestionType int

const (
	TypeRadio       QuestionType = 1
	TypeMultiSelect QuestionType = 2
	TypeDropdown    QuestionType = 3
	TypeFreeText    QuestionType = 4
)

type AnswerOption struct {
	ID   int    `json:"answer_id"`
	Text string `json:"answer_text"`
}

type Question struct {
	ID      int            `json:"question_id"`
	TypeID  QuestionType   `json:"question_type_id"`
	Text    string         `json:"question_text"`
	Options []AnswerOption `json:"answer_options"`
}

// UnmarshalJSON also accepts the older "question_answer_options" key.
func (q *Question) UnmarshalJSON(data []byte) error {
	type question Question
	var raw struct {
		question
		LegacyOptions []AnswerOption `json:"question_answer_options"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = Question(raw.question)
	if q.Options == nil {
		q.Options = raw.LegacyOptions
	}
	return nil
}

type Country struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

type UploadedFile struct {
	SourceName   string `json:"source_name"`
	UploadedName string `json:"uploaded_name"`
	Bucket       string `json:"bucket,omitempty"`
}

// FileRef is the per-slot file descriptor sent to the backend.
type FileRef struct {
	SourceName   string `json:"source_name"`
	UploadedName string `json:"uploaded_name"`
}

type SubmissionQuestion struct {
	QuestionID     int          `json:"question_id"`
	QuestionTypeID QuestionType `json:"question_type_id"`
	// AnswerID is nil, an int or a []int depending on the question type.
	AnswerID any `json:"answer_id"`
	// AnswerText is a string or a []string.
	AnswerText any `json:"answer_text"`
}

type SubmissionPayload struct {
	UserID        string               `json:"user_id"`
	UserCompany   string               `json:"user_company"`
	UserCountryID *int                 `json:"user_country_id"`
	Questions     []SubmissionQuestion `json:"questions"`
	SendEmailCopy bool                 `json:"send_email_copy"`
	// Files always holds every "File upload N" key, valued FileRef or "".
	Files map[string]any `json:"files"`
}

type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeFailed   Outcome = "failed"
)

// SubmissionRecord is one journaled submit attempt.
type SubmissionRecord struct {
	ID        int             `json:"id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Time      time.Time       `json:"time"`
	Payload   json.RawMessage `json:"payload"`
	Outcome   Outcome         `json:"outcome"`
	Error     string          `json:"error,omitempty"`
}
