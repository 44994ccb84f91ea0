package model

import (
	"encoding/json"
	"errors"
)

type Step1 struct {
	Name            string   `json:"name"`
	CompanyName     string   `json:"companyName"`
	SelectedCountry *Country `json:"selectedCountry"`
}

// Step1Patch is a partial Step1. Nil fields are left untouched; an explicit
// JSON null for selectedCountry clears the country.
type Step1Patch struct {
	Name            *string
	CompanyName     *string
	SelectedCountry *Country
	ClearCountry    bool
}

func (p *Step1Patch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("step1 patch must be an object")
	}

	*p = Step1Patch{}
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &p.Name); err != nil {
			return err
		}
	}
	if raw, ok := fields["companyName"]; ok {
		if err := json.Unmarshal(raw, &p.CompanyName); err != nil {
			return err
		}
	}
	if raw, ok := fields["selectedCountry"]; ok {
		if err := json.Unmarshal(raw, &p.SelectedCountry); err != nil {
			return err
		}
		p.ClearCountry = p.SelectedCountry == nil
	}
	return nil
}

// Answers maps a question_id to the recorded answer.
type Answers map[int]Answer

func (as Answers) clone() Answers {
	out := make(Answers, len(as))
	for id, a := range as {
		out[id] = a.clone()
	}
	return out
}

type Step4 struct {
	Answers       Answers        `json:"answers"`
	UploadedFiles []UploadedFile `json:"uploadedFiles"`
	SendEmailCopy bool           `json:"sendEmailCopy"`
}

type FormState struct {
	Step1 Step1   `json:"step1"`
	Step2 Answers `json:"step2"`
	Step3 Answers `json:"step3"`
	Step4 Step4   `json:"step4"`
}

// Clone returns a deep copy sharing nothing with s.
func (s FormState) Clone() FormState {
	out := s
	if s.Step1.SelectedCountry != nil {
		c := *s.Step1.SelectedCountry
		out.Step1.SelectedCountry = &c
	}
	out.Step2 = s.Step2.clone()
	out.Step3 = s.Step3.clone()
	out.Step4.Answers = s.Step4.Answers.clone()
	out.Step4.UploadedFiles = append([]UploadedFile{}, s.Step4.UploadedFiles...)
	return out
}
