package form

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/expert-mapper/model"
)

func TestUpdateStep1_ShallowMerge(t *testing.T) {
	s := New()

	var p model.Step1Patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ada","selectedCountry":{"id":3,"name":"Peru"}}`), &p))
	s.UpdateStep1(p)

	require.NoError(t, json.Unmarshal([]byte(`{"companyName":"Acme"}`), &p))
	s.UpdateStep1(p)

	got := s.Snapshot().Step1
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "Acme", got.CompanyName)
	require.NotNil(t, got.SelectedCountry)
	assert.Equal(t, "Peru", got.SelectedCountry.Name)

	require.NoError(t, json.Unmarshal([]byte(`{"selectedCountry":null}`), &p))
	s.UpdateStep1(p)
	assert.Nil(t, s.Snapshot().Step1.SelectedCountry)
	assert.Equal(t, "Ada", s.Snapshot().Step1.Name)
}

func TestUpdate_KeyedOverwrite(t *testing.T) {
	s := New()

	require.NoError(t, s.Update(Step2, 158, model.Choices(1, 2)))
	require.NoError(t, s.Update(Step2, 158, model.Choices(2)))
	require.NoError(t, s.Update(Step3, 162, model.Choice(40)))
	require.NoError(t, s.Update(Step4, 166, model.Text("https://example.com/v")))

	got := s.Snapshot()
	assert.Equal(t, model.Choices(2), got.Step2[158])
	assert.Equal(t, model.Choice(40), got.Step3[162])
	assert.Equal(t, model.Text("https://example.com/v"), got.Step4.Answers[166])

	err := s.Update(Step1, 1, model.Choice(1))
	assert.True(t, errors.Is(err, ErrUnknownStep))
}

func TestUpdateStep4Field(t *testing.T) {
	s := New()

	files := []model.UploadedFile{{SourceName: "a.pdf", UploadedName: "x-a.pdf", Bucket: "docs"}}
	require.NoError(t, s.UpdateStep4Field(FieldUploadedFiles, files))
	require.NoError(t, s.UpdateStep4Field(FieldSendEmailCopy, true))

	files[0].SourceName = "mutated"
	got := s.Snapshot().Step4
	assert.Equal(t, "a.pdf", got.UploadedFiles[0].SourceName)
	assert.True(t, got.SendEmailCopy)

	assert.Error(t, s.UpdateStep4Field(FieldSendEmailCopy, "yes"))
	err := s.UpdateStep4Field("videoLink", "x")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestReset_RestoresInitial(t *testing.T) {
	s := New()
	name := "Ada"
	s.UpdateStep1(model.Step1Patch{Name: &name, SelectedCountry: &model.Country{ID: 1}})
	require.NoError(t, s.Update(Step2, 159, model.Choice(270)))
	require.NoError(t, s.Update(Step3, 162, model.Choice(40)))
	require.NoError(t, s.UpdateStep4Field(FieldSendEmailCopy, true))
	require.NoError(t, s.UpdateStep4Field(FieldUploadedFiles, []model.UploadedFile{{SourceName: "a"}}))

	s.Reset()
	assert.Equal(t, Initial(), s.Snapshot())

	s.Reset()
	assert.Equal(t, Initial(), s.Snapshot())
}

func TestSnapshot_IsDetached(t *testing.T) {
	s := New()
	require.NoError(t, s.Update(Step2, 160, model.Choices(5, 6)))

	snap := s.Snapshot()
	snap.Step2[160].IDs[0] = 99
	snap.Step2[161] = model.Text("x")

	got := s.Snapshot()
	assert.Equal(t, []int{5, 6}, got.Step2[160].IDs)
	_, ok := got.Step2[161]
	assert.False(t, ok)
}

func TestAnswerTexts(t *testing.T) {
	q := model.Question{Options: []model.AnswerOption{{ID: 1, Text: "one"}, {ID: 2, Text: "two"}}}

	assert.Equal(t, "two", AnswerText(q, 2))
	assert.Equal(t, "", AnswerText(q, 3))
	assert.Equal(t, []string{"two", "", "one"}, AnswerTexts(q, []int{2, 9, 1}))
	assert.Equal(t, []string{}, AnswerTexts(q, nil))

	id, ok := OptionMatching(q, "TWO")
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	_, ok = OptionMatching(q, "three")
	assert.False(t, ok)
}
