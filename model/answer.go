package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

type AnswerKind int

const (
	KindNone AnswerKind = iota
	KindChoice
	KindChoices
	KindText
	KindCountries
)

// Answer holds one recorded value. Which field is meaningful depends on Kind.
type Answer struct {
	Kind      AnswerKind
	ID        int
	IDs       []int
	Text      string
	Countries []Country
}

func Choice(id int) Answer {
	return Answer{Kind: KindChoice, ID: id}
}

func Choices(ids ...int) Answer {
	return Answer{Kind: KindChoices, IDs: append([]int{}, ids...)}
}

func Text(s string) Answer {
	return Answer{Kind: KindText, Text: s}
}

func Countries(cs ...Country) Answer {
	return Answer{Kind: KindCountries, Countries: append([]Country{}, cs...)}
}

// Answered reports whether the value counts as an answer: a non-zero id,
// a non-empty list or a non-empty text.
func (a Answer) Answered() bool {
	switch a.Kind {
	case KindChoice:
		return a.ID != 0
	case KindChoices:
		return len(a.IDs) > 0
	case KindText:
		return a.Text != ""
	case KindCountries:
		return len(a.Countries) > 0
	}
	return false
}

func (a Answer) clone() Answer {
	if a.IDs != nil {
		a.IDs = append([]int{}, a.IDs...)
	}
	if a.Countries != nil {
		a.Countries = append([]Country{}, a.Countries...)
	}
	return a
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindChoice:
		return json.Marshal(a.ID)
	case KindChoices:
		if a.IDs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.IDs)
	case KindText:
		return json.Marshal(a.Text)
	case KindCountries:
		if a.Countries == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Countries)
	}
	return []byte("null"), nil
}

var ErrAnswerShape = errors.New("answer must be null, a number, a string, a list of numbers or a list of countries")

// UnmarshalJSON infers the kind from the JSON shape.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrAnswerShape
	}

	switch data[0] {
	case 'n':
		*a = Answer{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("{")) {
			var cs []Country
			if err := json.Unmarshal(data, &cs); err != nil {
				return ErrAnswerShape
			}
			*a = Countries(cs...)
			return nil
		}
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return ErrAnswerShape
		}
		*a = Choices(ids...)
		return nil
	}

	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return ErrAnswerShape
	}
	*a = Choice(id)
	return nil
}
