package Sessions

import (
	"fmt"
	"sync"
	"testing"

	"DentalOffice/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPatient(number string) Models.Patient {
	return Models.Patient{
		PatientNumber: number,
		FirstName:     "Alice",
		LastName:      "Nguyen",
		Phone:         "+15551230001",
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionStore()
	patient := testPatient("1000001")

	store.CreateSession("sess-1", patient.Phone, &patient)
	assert.Equal(t, "sess-1", store.LastSessionID())
	assert.False(t, store.IsVerified("sess-1"))

	pending, ok := store.TakePending("sess-1")
	require.True(t, ok)
	assert.Equal(t, "1000001", pending.PatientNumber)

	// The snapshot is one-shot.
	_, ok = store.TakePending("sess-1")
	assert.False(t, ok)

	token := store.Promote("sess-1", pending)
	require.NotEmpty(t, token)
	assert.True(t, store.IsVerified("sess-1"))

	authorized, err := store.Authorize(token)
	require.NoError(t, err)
	assert.Equal(t, "1000001", authorized.PatientNumber)
}

func TestAuthorizeRejectsUnknownToken(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Authorize("never-minted")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = store.Authorize("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateSessionSupersedesSamePhone(t *testing.T) {
	store := NewSessionStore()
	patient := testPatient("1000001")

	store.CreateSession("sess-1", patient.Phone, &patient)
	store.CreateSession("sess-2", patient.Phone, &patient)

	// The older attempt for the same phone is gone.
	_, ok := store.TakePending("sess-1")
	assert.False(t, ok)

	_, ok = store.TakePending("sess-2")
	assert.True(t, ok)
	assert.Equal(t, "sess-2", store.LastSessionID())
}

func TestCreateSessionWithoutPatient(t *testing.T) {
	store := NewSessionStore()

	store.CreateSession("sess-1", "+15551230009", nil)
	_, ok := store.TakePending("sess-1")
	assert.False(t, ok)
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewSessionStore()
	patient := testPatient("1000001")

	store.CreateSession("sess-1", patient.Phone, &patient)

	// Mutating the caller's copy after the fact must not leak into the
	// stored snapshot.
	patient.FirstName = "Mallory"

	pending, ok := store.TakePending("sess-1")
	require.True(t, ok)
	assert.Equal(t, "Alice", pending.FirstName)
}

func TestClearSessionKeepsToken(t *testing.T) {
	store := NewSessionStore()
	patient := testPatient("1000001")

	store.CreateSession("sess-1", patient.Phone, &patient)
	token := store.Promote("sess-1", patient)

	store.ClearSession("sess-1")
	assert.False(t, store.IsVerified("sess-1"))

	// Clearing the session does not revoke tokens minted from it.
	_, err := store.Authorize(token)
	assert.NoError(t, err)

	store.RevokeToken(token)
	_, err = store.Authorize(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestConcurrentAccess(t *testing.T) {
	store := NewSessionStore()

	var wg sync.WaitGroup
	tokens := make([]string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			patient := testPatient(fmt.Sprintf("10000%02d", i))
			patient.Phone = fmt.Sprintf("+155512300%02d", i)
			sessionID := fmt.Sprintf("sess-%d", i)

			store.CreateSession(sessionID, patient.Phone, &patient)
			if pending, ok := store.TakePending(sessionID); ok {
				tokens[i] = store.Promote(sessionID, pending)
			}
		}(i)
	}
	wg.Wait()

	for i, token := range tokens {
		require.NotEmpty(t, token, "goroutine %d minted no token", i)
		patient, err := store.Authorize(token)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("10000%02d", i), patient.PatientNumber)
	}
}
