package sentry

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mazen160/go-random"
	"github.com/stretchr/testify/require"
)

const loginFormHtml = `<html><body>
<form method="post" action="/login/">
	<input type="hidden" name="csrfmiddlewaretoken" value="%s">
	<input name="username"><input name="password" type="password">
</form>
</body></html>`

const loggedInHtml = `<html><body>
<div id="header">
	<ul class="nav">
		<li class="dropdown"><a href="#">Projects</a></li>
		<li class="dropdown">
			<a href="#">%s</a>
			<ul class="dropdown-menu"><li><a href="/logout/">Logout</a></li></ul>
		</li>
	</ul>
</div>
</body></html>`

// fakeDashboard mimics the login flow of the real dashboard: a csrf token
// tied to a cookie, a 302 on good credentials and a session cookie.
type fakeDashboard struct {
	Server   *httptest.Server
	Mux      *http.ServeMux
	Username string
	Password string

	requests    atomic.Int64
	connections atomic.Int64

	lock          sync.Mutex
	token         string
	sessions      map[string]bool
	loginFormHtml string
	loggedInHtml  string
}

func newFakeDashboard(t testing.TB) *fakeDashboard {
	token, err := random.String(32)
	require.NoError(t, err)
	password, err := random.String(16)
	require.NoError(t, err)

	d := &fakeDashboard{
		Mux:      http.NewServeMux(),
		Username: "admin",
		Password: password,
		token:    token,
		sessions: map[string]bool{},
	}
	d.Mux.HandleFunc("/login/", d.handleLogin)

	d.Server = httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.requests.Add(1)
		d.Mux.ServeHTTP(w, r)
	}))
	d.Server.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			d.connections.Add(1)
		}
	}
	d.Server.Start()
	t.Cleanup(d.Server.Close)
	return d
}

func (d *fakeDashboard) Requests() int64 {
	return d.requests.Load()
}

func (d *fakeDashboard) Connections() int64 {
	return d.connections.Load()
}

// SetLoginFormHtml replaces the login form, %s is not substituted.
func (d *fakeDashboard) SetLoginFormHtml(page string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.loginFormHtml = page
}

func (d *fakeDashboard) SetLoggedInHtml(page string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.loggedInHtml = page
}

func (d *fakeDashboard) pages() (string, string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	loginForm := d.loginFormHtml
	if loginForm == "" {
		loginForm = fmt.Sprintf(loginFormHtml, d.token)
	}
	loggedIn := d.loggedInHtml
	if loggedIn == "" {
		loggedIn = fmt.Sprintf(loggedInHtml, d.Username)
	}
	return loginForm, loggedIn
}

func (d *fakeDashboard) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie("sessionid")
	if err != nil {
		return false
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.sessions[cookie.Value]
}

func (d *fakeDashboard) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		loginForm, loggedIn := d.pages()
		if d.loggedIn(r) {
			_, _ = w.Write([]byte(loggedIn))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: d.token, Path: "/"})
		_, _ = w.Write([]byte(loginForm))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cookie, err := r.Cookie("csrftoken")
		if err != nil || cookie.Value != d.token || r.PostForm.Get("csrfmiddlewaretoken") != d.token {
			http.Error(w, "CSRF verification failed.", http.StatusForbidden)
			return
		}
		if r.PostForm.Get("username") != d.Username || r.PostForm.Get("password") != d.Password {
			_, _ = w.Write([]byte(fmt.Sprintf(loginFormHtml, d.token)))
			return
		}

		session, err := random.String(32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d.lock.Lock()
		d.sessions[session] = true
		d.lock.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: session, Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Page serves a fixed body at path.
func (d *fakeDashboard) Page(path string, status int, body string) {
	d.Mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}
