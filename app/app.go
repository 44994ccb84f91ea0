package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/expert-mapper/config"
	"github.com/mbolis/expert-mapper/database"
	"github.com/mbolis/expert-mapper/session"
)

type App struct {
	*sql.DB
	// BearerServer is nil when no -token-secret was given.
	*oauth.BearerServer
	config.Config
	Sessions *session.Registry
	Journal  *database.Journal
}
