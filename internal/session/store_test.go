package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreIsAnonymous(t *testing.T) {
	s := New()
	assert.Equal(t, Session{}, s.Snapshot())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Identity())
}

func TestLoginLogoutTransitions(t *testing.T) {
	s := New()
	u, err := url.Parse("http://localhost:9080/api/players/login")
	require.NoError(t, err)

	s.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: "abc", Path: "/"}})
	s.OnLoginSuccess("alice")

	snap := s.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, "alice", snap.Identity)
	assert.True(t, snap.HasCredential)

	later, err := url.Parse("http://localhost:9080/api/players/buy")
	require.NoError(t, err)
	require.Len(t, s.Cookies(later), 1)

	s.OnLogout()
	assert.Equal(t, Session{}, s.Snapshot())
	assert.Empty(t, s.Cookies(later))
}

func TestStoreActsAsClientJar(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("SKALA_SESSION"); err == nil {
			seen = append(seen, c.Value)
		} else {
			seen = append(seen, "")
		}
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "SKALA_SESSION", Value: "tok-1", Path: "/", HttpOnly: true})
		}
	}))
	defer srv.Close()

	s := New()
	hc := &http.Client{Jar: s}

	for _, path := range []string{"/before", "/login", "/after"} {
		resp, err := hc.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}
	s.OnLogout()
	resp, err := hc.Get(srv.URL + "/cleared")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"", "", "tok-1", ""}, seen)
}

func TestCredentialScopedToAPIPath(t *testing.T) {
	s := New()
	login, err := url.Parse("http://localhost:9080/api/players/login")
	require.NoError(t, err)
	s.SetCookies(login, []*http.Cookie{{Name: "SKALA_SESSION", Value: "tok", Path: "/api"}})
	s.OnLoginSuccess("alice")
	assert.True(t, s.Snapshot().HasCredential)

	buy, err := url.Parse("http://localhost:9080/api/players/buy")
	require.NoError(t, err)
	require.Len(t, s.Cookies(buy), 1)
	assert.True(t, s.Snapshot().HasCredential)

	s.OnLogout()
	assert.False(t, s.Snapshot().HasCredential)
}
