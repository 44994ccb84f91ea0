package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/expert-mapper/api"
	"github.com/mbolis/expert-mapper/form"
	"github.com/mbolis/expert-mapper/log"
	"github.com/mbolis/expert-mapper/model"
)

func init() {
	log.SetOutput(io.Discard)
}

type fakeBackend struct {
	questions []model.Question
	err       error
	body      json.RawMessage

	submitted []model.SubmissionPayload
	uploaded  []string
	meta      []api.FileMeta
}

func (b *fakeBackend) Questions(context.Context) ([]model.Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.questions, nil
}

func (b *fakeBackend) Submit(_ context.Context, p model.SubmissionPayload) (json.RawMessage, error) {
	b.submitted = append(b.submitted, p)
	return b.body, b.err
}

func (b *fakeBackend) UploadFiles(_ context.Context, files []api.File) (json.RawMessage, error) {
	for _, f := range files {
		b.uploaded = append(b.uploaded, f.Name)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.body, nil
}

func (b *fakeBackend) PresignedURL(_ context.Context, meta api.FileMeta) (json.RawMessage, error) {
	b.meta = append(b.meta, meta)
	if b.err != nil {
		return nil, b.err
	}
	return b.body, nil
}

type memJournal struct {
	mu      sync.Mutex
	records []model.SubmissionRecord
}

func (j *memJournal) Record(_ context.Context, rec model.SubmissionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

var availability = model.Question{ID: 159, TypeID: model.TypeRadio, Options: []model.AnswerOption{
	{ID: 270, Text: "Available in select regions"},
	{ID: 271, Text: "Available in specific countries"},
}}

func TestFetchQuestions_KeepsUID(t *testing.T) {
	b := &fakeBackend{questions: []model.Question{availability}}
	s := New("s1", b, model.DefaultQuestionIDs(), nil)

	require.NoError(t, s.FetchQuestions(context.Background(), "user-7"))
	require.NoError(t, s.FetchQuestions(context.Background(), ""))

	assert.Equal(t, "user-7", s.UserID())
	assert.Equal(t, "user-7", s.Payload().UserID)
	_, ok := s.Catalog().ByID(159)
	assert.True(t, ok)
	assert.Equal(t, OpStatus{Phase: Settled}, s.Status()[OpQuestions])
}

func TestFetchQuestions_FailureRecorded(t *testing.T) {
	b := &fakeBackend{err: errors.New("backend down")}
	s := New("s1", b, model.DefaultQuestionIDs(), nil)

	assert.Equal(t, OpStatus{Phase: Idle}, s.Status()[OpQuestions])
	err := s.FetchQuestions(context.Background(), "")
	assert.Same(t, b.err, err)

	assert.Equal(t, "backend down", s.Catalog().Err())
	assert.Equal(t, OpStatus{Phase: Settled, Error: "backend down"}, s.Status()[OpQuestions])
}

func TestSubmit_SendsBuiltPayload(t *testing.T) {
	b := &fakeBackend{questions: []model.Question{availability}, body: json.RawMessage(`{"ok":true}`)}
	j := &memJournal{}
	s := New("s1", b, model.DefaultQuestionIDs(), j)
	require.NoError(t, s.FetchQuestions(context.Background(), "u-1"))

	require.NoError(t, s.Update(form.Step2, 159, model.Choice(270)))
	require.NoError(t, s.Update(form.Step2, 160, model.Choices(5, 6)))

	body, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	require.Len(t, b.submitted, 1)
	assert.Equal(t, s.Payload(), b.submitted[0])

	require.Len(t, j.records, 1)
	assert.Equal(t, "s1", j.records[0].SessionID)
	assert.Equal(t, "u-1", j.records[0].UserID)
	assert.Equal(t, model.OutcomeAccepted, j.records[0].Outcome)
	assert.Contains(t, string(j.records[0].Payload), `"question_id":160`)
}

func TestSubmit_ErrorPropagates(t *testing.T) {
	b := &fakeBackend{err: &api.StatusError{StatusCode: 500}}
	j := &memJournal{}
	s := New("s1", b, model.DefaultQuestionIDs(), j)

	_, err := s.Submit(context.Background())
	assert.Same(t, b.err, err)

	require.Len(t, j.records, 1)
	assert.Equal(t, model.OutcomeFailed, j.records[0].Outcome)
	assert.Equal(t, b.err.Error(), j.records[0].Error)
	assert.Equal(t, b.err.Error(), s.Status()[OpSubmit].Error)
}

func TestUploadFiles(t *testing.T) {
	b := &fakeBackend{body: json.RawMessage(`{"uploaded":2}`)}
	s := New("s1", b, model.DefaultQuestionIDs(), nil)

	body, err := s.UploadFiles(context.Background(), []api.File{
		{Name: "a.pdf", Content: strings.NewReader("a")},
		{Name: "b.pdf", Content: strings.NewReader("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"uploaded":2}`), body)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, b.uploaded)

	b.err = errors.New("connection reset")
	_, err = s.UploadFiles(context.Background(), nil)
	assert.Same(t, b.err, err)
	assert.Equal(t, "connection reset", s.Status()[OpUpload].Error)

	b.err = nil
	_, err = s.UploadFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, OpStatus{Phase: Settled}, s.Status()[OpUpload])
}

func TestPresignedURL(t *testing.T) {
	b := &fakeBackend{body: json.RawMessage(`{"url":"https://s3/x"}`)}
	s := New("s1", b, model.DefaultQuestionIDs(), nil)

	body, err := s.PresignedURL(context.Background(), api.FileMeta{Name: "x.pdf", Type: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"url":"https://s3/x"}`), body)
	assert.Equal(t, []api.FileMeta{{Name: "x.pdf", Type: "application/pdf"}}, b.meta)
}

func TestRegistry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func(id string) *Session {
		return New(id, &fakeBackend{}, model.DefaultQuestionIDs(), nil)
	})
	r.now = func() time.Time { return now }

	a := r.Create()
	b := r.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = r.Get("nope")
	assert.False(t, ok)

	now = now.Add(30 * time.Minute)
	r.Get(b.ID)
	now = now.Add(40 * time.Minute)

	assert.Equal(t, 1, r.Sweep(time.Hour))
	_, ok = r.Get(a.ID)
	assert.False(t, ok)
	_, ok = r.Get(b.ID)
	assert.True(t, ok)
}

func TestContext(t *testing.T) {
	s := New("s1", &fakeBackend{}, model.DefaultQuestionIDs(), nil)

	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
