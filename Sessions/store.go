package Sessions

import (
	"errors"
	"log"
	"sync"
	"time"

	"DentalOffice/Models"

	"github.com/google/uuid"
)

// ErrUnauthenticated means no token was presented or the token was never
// minted by this store. Callers turn it into a re-verification prompt,
// never a hard failure.
var ErrUnauthenticated = errors.New("unauthenticated")

type pendingSession struct {
	phone     string
	patient   *Models.Patient
	createdAt time.Time
}

// SessionStore holds every verification attempt in flight plus the minted
// challenge tokens. One coarse mutex guards all three maps; it is never
// held across a provider round-trip. Patient values are stored and
// returned by copy so a concurrent reader never observes a mutation
// mid-flight.
type SessionStore struct {
	mu            sync.Mutex
	pending       map[string]pendingSession
	verified      map[string]Models.Patient
	tokens        map[string]Models.Patient
	lastSessionID string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		pending:  make(map[string]pendingSession),
		verified: make(map[string]Models.Patient),
		tokens:   make(map[string]Models.Patient),
	}
}

// Store is the process-wide instance the voice handlers share.
var Store = NewSessionStore()

// CreateSession records a code-sent attempt. The patient snapshot is
// pending only: it is not trusted for authorization until the code checks
// out. A new send for the same phone supersedes any older pending attempt.
func (store *SessionStore) CreateSession(sessionID, phone string, patient *Models.Patient) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for id, entry := range store.pending {
		if entry.phone == phone {
			delete(store.pending, id)
		}
	}

	entry := pendingSession{phone: phone, createdAt: time.Now()}
	if patient != nil {
		snapshot := *patient
		entry.patient = &snapshot
	}
	store.pending[sessionID] = entry
	store.lastSessionID = sessionID
}

// LastSessionID returns the most recently created verification session.
// The agent rarely echoes the session id back, so verification falls back
// to the latest send.
func (store *SessionStore) LastSessionID() string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.lastSessionID
}

// TakePending removes and returns the pending patient snapshot attached
// at send time, if any.
func (store *SessionStore) TakePending(sessionID string) (Models.Patient, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.pending[sessionID]
	if !ok || entry.patient == nil {
		return Models.Patient{}, false
	}
	snapshot := *entry.patient
	entry.patient = nil
	store.pending[sessionID] = entry
	return snapshot, true
}

// Promote marks a session as verified and mints a fresh challenge token
// bound to the same patient snapshot. The token, not the session id, is
// the credential for every protected operation that follows.
func (store *SessionStore) Promote(sessionID string, patient Models.Patient) string {
	token := uuid.NewString()

	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.pending, sessionID)
	store.verified[sessionID] = patient
	store.tokens[token] = patient

	log.Printf("Session %s verified for patient %s, challenge token minted", sessionID, patient.PatientNumber)
	return token
}

// Authorize resolves a challenge token to the patient snapshot it was
// minted for.
func (store *SessionStore) Authorize(token string) (Models.Patient, error) {
	if token == "" {
		return Models.Patient{}, ErrUnauthenticated
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	patient, ok := store.tokens[token]
	if !ok {
		return Models.Patient{}, ErrUnauthenticated
	}
	return patient, nil
}

// IsVerified reports whether the session completed code verification.
func (store *SessionStore) IsVerified(sessionID string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	_, ok := store.verified[sessionID]
	return ok
}

// ClearSession drops a verification session, pending or verified.
// Administrative action; tokens minted from the session stay live unless
// revoked separately.
func (store *SessionStore) ClearSession(sessionID string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.pending, sessionID)
	delete(store.verified, sessionID)
	log.Printf("Cleared verification session %s", sessionID)
}

// RevokeToken invalidates a challenge token. There is no automatic
// expiry; this is the only way a live token dies.
func (store *SessionStore) RevokeToken(token string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.tokens, token)
	log.Printf("Revoked challenge token %s...", truncate(token, 8))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
