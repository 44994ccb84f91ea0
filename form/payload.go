package form

import (
	"fmt"
	"strings"

	"github.com/mbolis/expert-mapper/model"
)

// FileSlots is the number of "File upload N" keys the backend expects.
const FileSlots = 5

func FileSlotKey(i int) string {
	return fmt.Sprintf("File upload %d", i+1)
}

// Catalog resolves question ids to their catalog definition.
type Catalog interface {
	ByID(id int) (model.Question, bool)
}

// slot describes how one role ends up in the questions list: where its
// answer lives, when it is sent and how the answer is encoded.
type slot struct {
	role    model.Role
	step    Step
	typeID  model.QuestionType
	include func(b *builder, a model.Answer) bool
	value   func(q model.Question, a model.Answer) (answerID, answerText any)
}

var slots = []slot{
	{model.RoleTitle, Step2, model.TypeFreeText, always, freeText},
	{model.RoleDescription, Step2, model.TypeFreeText, always, freeText},
	{model.RoleClientChallenges, Step2, model.TypeMultiSelect, always, multiChoice},
	{model.RoleAvailability, Step2, model.TypeRadio, answered, singleChoice},
	{model.RoleRegions, Step2, model.TypeMultiSelect, availabilityIs(model.SelectRegionsMarker), multiChoice},
	{model.RoleCountries, Step2, model.TypeFreeText, availabilityIs(model.SpecificCountriesMarker), countryNames},
	{model.RoleROI, Step3, model.TypeRadio, answered, singleChoice},
	{model.RoleIntegration, Step3, model.TypeRadio, answered, singleChoice},
	{model.RoleDifferentiation, Step3, model.TypeRadio, answered, singleChoice},
	{model.RoleMeasurableValue, Step3, model.TypeRadio, answered, singleChoice},
	{model.RoleVideoURL, Step4, model.TypeFreeText, always, freeText},
	{model.RoleReferences, Step4, model.TypeDropdown, answered, singleChoice},
}

type builder struct {
	state   model.FormState
	catalog Catalog
	ids     model.QuestionIDs
}

// BuildSubmission shapes the form state into the backend's submission
// schema. Missing catalog entries or answers never fail the build, they
// degrade to empty values or to the question being left out.
func BuildSubmission(state model.FormState, catalog Catalog, ids model.QuestionIDs, userID string) model.SubmissionPayload {
	b := &builder{state: state, catalog: catalog, ids: ids}

	p := model.SubmissionPayload{
		UserID:        userID,
		UserCompany:   state.Step1.CompanyName,
		Questions:     []model.SubmissionQuestion{},
		SendEmailCopy: state.Step4.SendEmailCopy,
		Files:         b.files(),
	}
	if c := state.Step1.SelectedCountry; c != nil {
		id := c.ID
		p.UserCountryID = &id
	}

	for _, s := range slots {
		a := b.answer(s.step, s.role)
		if !s.include(b, a) {
			continue
		}
		q := b.question(s.role)
		answerID, answerText := s.value(q, a)
		p.Questions = append(p.Questions, model.SubmissionQuestion{
			QuestionID:     b.ids[s.role],
			QuestionTypeID: s.typeID,
			AnswerID:       answerID,
			AnswerText:     answerText,
		})
	}
	return p
}

func (b *builder) question(r model.Role) model.Question {
	if b.catalog == nil {
		return model.Question{}
	}
	q, _ := b.catalog.ByID(b.ids[r])
	return q
}

func (b *builder) answer(step Step, r model.Role) model.Answer {
	var answers model.Answers
	switch step {
	case Step2:
		answers = b.state.Step2
	case Step3:
		answers = b.state.Step3
	case Step4:
		answers = b.state.Step4.Answers
	}
	return answers[b.ids[r]]
}

func (b *builder) files() map[string]any {
	files := make(map[string]any, FileSlots)
	for i := 0; i < FileSlots; i++ {
		files[FileSlotKey(i)] = ""
	}
	for i, f := range b.state.Step4.UploadedFiles {
		if i >= FileSlots {
			break
		}
		files[FileSlotKey(i)] = model.FileRef{
			SourceName:   f.SourceName,
			UploadedName: f.UploadedName,
		}
	}
	return files
}

func always(*builder, model.Answer) bool {
	return true
}

func answered(_ *builder, a model.Answer) bool {
	return a.Answered()
}

// availabilityIs includes a slot only when the recorded availability answer
// is the option whose text contains marker.
func availabilityIs(marker string) func(*builder, model.Answer) bool {
	return func(b *builder, _ model.Answer) bool {
		a := b.answer(Step2, model.RoleAvailability)
		if !a.Answered() {
			return false
		}
		id, ok := OptionMatching(b.question(model.RoleAvailability), marker)
		return ok && a.ID == id
	}
}

func freeText(_ model.Question, a model.Answer) (any, any) {
	return nil, a.Text
}

func singleChoice(q model.Question, a model.Answer) (any, any) {
	return a.ID, AnswerText(q, a.ID)
}

func multiChoice(q model.Question, a model.Answer) (any, any) {
	ids := a.IDs
	if ids == nil {
		ids = []int{}
	}
	return ids, AnswerTexts(q, ids)
}

func countryNames(_ model.Question, a model.Answer) (any, any) {
	names := make([]string, len(a.Countries))
	for i, c := range a.Countries {
		names[i] = c.Name
	}
	return nil, strings.Join(names, ", ")
}
