package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Session is a read-only view of the store.
type Session struct {
	Identity      string
	Authenticated bool
	HasCredential bool
}

// Store holds the single operator's session: the transport credential (a
// cookie jar the HTTP client writes into) plus the logical login state.
//
// Store implements http.CookieJar so it can be handed to http.Client
// directly; the jar behind it is replaced wholesale on logout.
type Store struct {
	mu            sync.RWMutex
	jar           http.CookieJar
	identity      string
	authenticated bool
	seen          map[string]*url.URL
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func newJar() http.CookieJar {
	// cookiejar.New always returns a nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func (s *Store) reset() {
	s.jar = newJar()
	s.identity = ""
	s.authenticated = false
	s.seen = map[string]*url.URL{}
}

func (s *Store) OnLoginSuccess(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.authenticated = true
}

// OnLogout drops the transport credential and the identity.
func (s *Store) OnLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{
		Identity:      s.identity,
		Authenticated: s.authenticated,
		HasCredential: s.hasCredentialLocked(),
	}
}

func (s *Store) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, cookies)
	s.remember(u)
}

func (s *Store) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remember(u)
	return s.jar.Cookies(u)
}

// remember keeps the last URL used per origin so HasCredential can ask the
// jar about the paths requests actually go to, not just the origin root.
func (s *Store) remember(u *url.URL) {
	if u == nil || u.Host == "" {
		return
	}
	origin := u.Scheme + "://" + u.Host
	s.seen[origin] = &url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
}

func (s *Store) hasCredentialLocked() bool {
	for _, last := range s.seen {
		if len(s.jar.Cookies(last)) > 0 {
			return true
		}
	}
	return false
}
