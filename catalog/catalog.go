package catalog

import (
	"context"
	"sync"

	"github.com/mbolis/expert-mapper/model"
)

type Fetcher interface {
	Questions(ctx context.Context) ([]model.Question, error)
}

// Catalog caches the backend's question definitions. Overlapping Fetch
// calls are not coalesced: the last one to finish wins.
type Catalog struct {
	fetcher Fetcher

	mu        sync.RWMutex
	questions []model.Question
	loading   bool
	err       string
}

func New(fetcher Fetcher) *Catalog {
	return &Catalog{fetcher: fetcher, questions: []model.Question{}}
}

// Fetch reloads the catalog. On failure the previous questions are kept
// and the error message is recorded until the next attempt.
func (c *Catalog) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	questions, err := c.fetcher.Questions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = err.Error()
		if c.err == "" {
			c.err = "Failed to fetch questions"
		}
		return err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	c.questions = questions
	return nil
}

func (c *Catalog) Questions() []model.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Question{}, c.questions...)
}

func (c *Catalog) ByID(id int) (model.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, q := range c.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

func (c *Catalog) ByType(t model.QuestionType) []model.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []model.Question{}
	for _, q := range c.questions {
		if q.TypeID == t {
			out = append(out, q)
		}
	}
	return out
}

func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the message of the last failed fetch, or "".
func (c *Catalog) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
