package form

import (
	"errors"
	"fmt"

	"github.com/mbolis/expert-mapper/model"
)

type Step int

const (
	Step1 Step = iota + 1
	Step2
	Step3
	Step4
)

// Keys of the step 4 fields that are not catalog questions.
const (
	FieldUploadedFiles = "uploadedFiles"
	FieldSendEmailCopy = "sendEmailCopy"
)

var (
	ErrUnknownStep  = errors.New("unknown step")
	ErrUnknownField = errors.New("unknown step 4 field")
)

// Initial returns the default, empty form state.
func Initial() model.FormState {
	return model.FormState{
		Step2: model.Answers{},
		Step3: model.Answers{},
		Step4: model.Step4{
			Answers:       model.Answers{},
			UploadedFiles: []model.UploadedFile{},
		},
	}
}

// State is the mutable record of what the applicant entered so far.
// It is not safe for concurrent use.
type State struct {
	data model.FormState
}

func New() *State {
	return &State{data: Initial()}
}

func (s *State) Snapshot() model.FormState {
	return s.data.Clone()
}

func (s *State) UpdateStep1(p model.Step1Patch) {
	if p.Name != nil {
		s.data.Step1.Name = *p.Name
	}
	if p.CompanyName != nil {
		s.data.Step1.CompanyName = *p.CompanyName
	}
	switch {
	case p.SelectedCountry != nil:
		c := *p.SelectedCountry
		s.data.Step1.SelectedCountry = &c
	case p.ClearCountry:
		s.data.Step1.SelectedCountry = nil
	}
}

// Update records the answer to questionID on one of the question driven
// steps, replacing any previous value.
func (s *State) Update(step Step, questionID int, a model.Answer) error {
	answers, err := s.answers(step)
	if err != nil {
		return err
	}
	answers[questionID] = a
	return nil
}

// UpdateStep4Field writes one of the named step 4 fields. value must be a
// []model.UploadedFile for uploadedFiles and a bool for sendEmailCopy.
func (s *State) UpdateStep4Field(key string, value any) error {
	switch key {
	case FieldUploadedFiles:
		files, ok := value.([]model.UploadedFile)
		if !ok {
			return fmt.Errorf("%s: want []UploadedFile, got %T", key, value)
		}
		s.data.Step4.UploadedFiles = append([]model.UploadedFile{}, files...)
	case FieldSendEmailCopy:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: want bool, got %T", key, value)
		}
		s.data.Step4.SendEmailCopy = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}

func (s *State) Reset() {
	s.data = Initial()
}

func (s *State) answers(step Step) (model.Answers, error) {
	switch step {
	case Step2:
		return s.data.Step2, nil
	case Step3:
		return s.data.Step3, nil
	case Step4:
		return s.data.Step4.Answers, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownStep, step)
}
