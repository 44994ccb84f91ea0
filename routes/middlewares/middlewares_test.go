package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/expert-mapper/model"
	"github.com/mbolis/expert-mapper/session"
)

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	require.FailNow(t, "no session cookie in response")
	return nil
}

func TestSession_CookieRefreshedOnEveryRequest(t *testing.T) {
	registry := session.NewRegistry(func(id string) *session.Session {
		return session.New(id, nil, model.DefaultQuestionIDs(), nil)
	})

	var seen []string
	handler := Session(registry, 2*time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		require.True(t, ok)
		seen = append(seen, s.ID)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/form", nil))
	created := sessionCookie(t, first.Result())
	assert.Equal(t, 7200, created.MaxAge)
	assert.True(t, created.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: created.Value})
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	refreshed := sessionCookie(t, second.Result())
	assert.Equal(t, created.Value, refreshed.Value)
	assert.Equal(t, 7200, refreshed.MaxAge)
	assert.Equal(t, []string{created.Value, created.Value}, seen)
	assert.Equal(t, 1, registry.Len())
}

func TestSession_UnknownCookieStartsNewSession(t *testing.T) {
	registry := session.NewRegistry(func(id string) *session.Session {
		return session.New(id, nil, model.DefaultQuestionIDs(), nil)
	})
	handler := Session(registry, time.Hour)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "expired"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	c := sessionCookie(t, rec.Result())
	assert.NotEqual(t, "expired", c.Value)
	assert.Equal(t, 1, registry.Len())
}
