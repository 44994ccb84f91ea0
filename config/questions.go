package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mbolis/expert-mapper/model"
)

type Environment string

const (
	Dev        Environment = "dev"
	Staging    Environment = "staging"
	Production Environment = "production"
)

func ParseEnvironment(s string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case Dev, Staging, Production:
		return env, nil
	}
	return "", fmt.Errorf("unknown environment %q", s)
}

// DetectEnvironment guesses the backend environment from the host part of
// its base URL only, so a "dev" somewhere in the path does not count.
func DetectEnvironment(apiURL string) Environment {
	host := apiURL
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	host = strings.ToLower(host)

	switch {
	case strings.Contains(host, "127.0.0.1"),
		strings.Contains(host, "localhost"),
		strings.Contains(host, "dev"):
		return Dev
	case strings.Contains(host, "staging"):
		return Staging
	}
	return Production
}

// QuestionTables holds the role to question id overrides of each
// environment. Roles an environment does not list keep the default id.
type QuestionTables map[Environment]model.QuestionIDs

type questionsFile struct {
	Environments map[string]map[string]int `yaml:"environments"`
}

// LoadQuestionTables reads a file shaped like
//
//	environments:
//	  staging:
//	    solution_availability: 301
//	    regional_application: 302
func LoadQuestionTables(path string) (QuestionTables, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var f questionsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}

	known := map[model.Role]bool{}
	for _, r := range model.Roles {
		known[r] = true
	}

	tables := QuestionTables{}
	for name, roles := range f.Environments {
		env, err := ParseEnvironment(name)
		if err != nil {
			return nil, fmt.Errorf("questions file %s: %w", path, err)
		}
		ids := model.QuestionIDs{}
		for role, id := range roles {
			if !known[model.Role(role)] {
				return nil, fmt.Errorf("questions file %s: unknown role %q in %s", path, role, env)
			}
			ids[model.Role(role)] = id
		}
		tables[env] = ids
	}
	return tables, nil
}

// For returns the complete question id table of env.
func (t QuestionTables) For(env Environment) model.QuestionIDs {
	ids := model.DefaultQuestionIDs()
	for role, id := range t[env] {
		ids[role] = id
	}
	return ids
}
