package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mbolis/expert-mapper/api"
	"github.com/mbolis/expert-mapper/catalog"
	"github.com/mbolis/expert-mapper/form"
	"github.com/mbolis/expert-mapper/log"
	"github.com/mbolis/expert-mapper/model"
)

// Backend is the part of the api.Client a session talks to.
type Backend interface {
	catalog.Fetcher
	Submit(ctx context.Context, payload model.SubmissionPayload) (json.RawMessage, error)
	UploadFiles(ctx context.Context, files []api.File) (json.RawMessage, error)
	PresignedURL(ctx context.Context, meta api.FileMeta) (json.RawMessage, error)
}

// Journal records submission attempts.
type Journal interface {
	Record(ctx context.Context, rec model.SubmissionRecord) error
}

type Op string

const (
	OpQuestions Op = "questions"
	OpSubmit    Op = "submit"
	OpUpload    Op = "upload"
	OpPresign   Op = "presign"
)

var ops = []Op{OpQuestions, OpSubmit, OpUpload, OpPresign}

type Phase string

const (
	Idle     Phase = "idle"
	InFlight Phase = "in_flight"
	Settled  Phase = "settled"
)

// OpStatus is the observable state of one async operation. Error holds the
// message of the last failure until the operation is attempted again.
type OpStatus struct {
	Phase   Phase  `json:"phase"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Session is one applicant's form: the question catalog, the answers
// given so far and the operations that talk to the backend. Overlapping
// calls of the same operation are neither queued nor cancelled.
type Session struct {
	ID string

	backend Backend
	journal Journal
	ids     model.QuestionIDs
	catalog *catalog.Catalog

	mu       sync.Mutex
	form     *form.State
	userID   string
	status   map[Op]OpStatus
	lastSeen time.Time
}

func New(id string, backend Backend, ids model.QuestionIDs, journal Journal) *Session {
	s := &Session{
		ID:       id,
		backend:  backend,
		journal:  journal,
		ids:      ids,
		catalog:  catalog.New(backend),
		form:     form.New(),
		status:   map[Op]OpStatus{},
		lastSeen: time.Now(),
	}
	for _, op := range ops {
		s.status[op] = OpStatus{Phase: Idle}
	}
	return s
}

func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// FetchQuestions loads the catalog. uid is the applicant id taken from the
// page URL; it is kept for the submission when non empty.
func (s *Session) FetchQuestions(ctx context.Context, uid string) error {
	s.mu.Lock()
	if uid != "" {
		s.userID = uid
	}
	s.mu.Unlock()

	s.begin(OpQuestions)
	err := s.catalog.Fetch(ctx)
	s.end(OpQuestions, err)
	if err != nil {
		s.logger(OpQuestions).WithError(err).Error("fetching questions")
	}
	return err
}

// Payload builds what Submit would send, without sending it.
func (s *Session) Payload() model.SubmissionPayload {
	s.mu.Lock()
	state := s.form.Snapshot()
	uid := s.userID
	s.mu.Unlock()

	return form.BuildSubmission(state, s.catalog, s.ids, uid)
}

func (s *Session) Submit(ctx context.Context) (json.RawMessage, error) {
	payload := s.Payload()

	s.begin(OpSubmit)
	body, err := s.backend.Submit(ctx, payload)
	s.end(OpSubmit, err)
	s.record(payload, err)
	if err != nil {
		s.logger(OpSubmit).WithError(err).Error("submitting form")
		return nil, err
	}
	return body, nil
}

func (s *Session) UploadFiles(ctx context.Context, files []api.File) (json.RawMessage, error) {
	s.begin(OpUpload)
	body, err := s.backend.UploadFiles(ctx, files)
	s.end(OpUpload, err)
	if err != nil {
		s.logger(OpUpload).WithError(err).Error("uploading files")
		return nil, err
	}
	return body, nil
}

func (s *Session) PresignedURL(ctx context.Context, meta api.FileMeta) (json.RawMessage, error) {
	s.begin(OpPresign)
	body, err := s.backend.PresignedURL(ctx, meta)
	s.end(OpPresign, err)
	if err != nil {
		s.logger(OpPresign).WithError(err).Error("requesting pre-signed URL")
		return nil, err
	}
	return body, nil
}

func (s *Session) Status() map[Op]OpStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Op]OpStatus, len(s.status))
	for op, st := range s.status {
		out[op] = st
	}
	return out
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) Snapshot() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Snapshot()
}

func (s *Session) UpdateStep1(p model.Step1Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.UpdateStep1(p)
}

func (s *Session) Update(step form.Step, questionID int, a model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Update(step, questionID, a)
}

func (s *Session) UpdateStep4Field(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.UpdateStep4Field(key, value)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Reset()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) begin(op Op) {
	s.mu.Lock()
	s.status[op] = OpStatus{Phase: InFlight, Loading: true}
	s.mu.Unlock()
}

func (s *Session) end(op Op, err error) {
	st := OpStatus{Phase: Settled}
	if err != nil {
		st.Error = err.Error()
	}
	s.mu.Lock()
	s.status[op] = st
	s.mu.Unlock()
}

// record journals a submit attempt, detached from the request context.
func (s *Session) record(payload model.SubmissionPayload, submitErr error) {
	if s.journal == nil {
		return
	}

	rec := model.SubmissionRecord{
		SessionID: s.ID,
		UserID:    payload.UserID,
		Time:      time.Now(),
		Outcome:   model.OutcomeAccepted,
	}
	if submitErr != nil {
		rec.Outcome = model.OutcomeFailed
		rec.Error = submitErr.Error()
	}
	var err error
	if rec.Payload, err = json.Marshal(payload); err != nil {
		s.logger(OpSubmit).WithError(err).Warn("journal.encode_payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journal.Record(ctx, rec); err != nil {
		s.logger(OpSubmit).WithError(err).WithField("outcome", rec.Outcome).Error("journal.record")
	}
}

func (s *Session) logger(op Op) *log.Entry {
	return log.With(log.Fields{"session": s.ID, "op": op})
}
