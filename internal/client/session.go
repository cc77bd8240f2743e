package client

import "sync"

// Session holds the operator's credentials for the lifetime of one sign-in.
//
// A Session is created empty, initialised with Init and torn down with
// Teardown (on sign-out, or automatically when the server rejects the
// token). It is passed to the client explicitly; nothing reads credentials
// from the environment behind the caller's back.
//
// Thread-safety: Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	token    string
	operator string
	active   bool
	onEnd    []func()
}

// NewSession returns an inactive session.
func NewSession() *Session {
	return &Session{}
}

// Init activates the session with a bearer token and operator name.
func (s *Session) Init(token, operator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.operator = operator
	s.active = true
}

// Teardown clears the credentials and runs the OnTeardown callbacks once.
// Tearing down an inactive session does nothing.
func (s *Session) Teardown() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.operator = ""
	s.active = false
	callbacks := s.onEnd
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// OnTeardown registers fn to run when the session ends.
func (s *Session) OnTeardown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = append(s.onEnd, fn)
}

// Token returns the bearer token if the session is active.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.active && s.token != ""
}

// Operator returns the signed-in operator name.
func (s *Session) Operator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator
}

// Active reports whether the session has been initialised and not torn
// down.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
