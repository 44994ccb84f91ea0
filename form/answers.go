package form

import (
	"strings"

	"github.com/mbolis/expert-mapper/model"
)

// AnswerText returns the text of option id in q, or "" if q has no such option.
func AnswerText(q model.Question, id int) string {
	for _, o := range q.Options {
		if o.ID == id {
			return o.Text
		}
	}
	return ""
}

// AnswerTexts maps every id to its option text, keeping the input order.
func AnswerTexts(q model.Question, ids []int) []string {
	texts := make([]string, len(ids))
	for i, id := range ids {
		texts[i] = AnswerText(q, id)
	}
	return texts
}

// OptionMatching finds the first option of q whose text contains marker,
// ignoring case.
func OptionMatching(q model.Question, marker string) (int, bool) {
	marker = strings.ToLower(marker)
	for _, o := range q.Options {
		if strings.Contains(strings.ToLower(o.Text), marker) {
			return o.ID, true
		}
	}
	return 0, false
}
