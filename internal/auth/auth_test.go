package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("secret")
	id := uuid.New()

	tok, err := j.Sign(id, RoleModerator)
	require.NoError(t, err)

	p, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, id, p.ProfileID)
	assert.True(t, p.IsModerator())
}

func TestJWTRejects(t *testing.T) {
	j := NewJWT("secret")
	tok, err := j.Sign(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = NewJWT("other").Verify(tok)
	assert.Error(t, err)

	_, err = j.Verify(tok + "x")
	assert.Error(t, err)

	expired := NewJWT("secret")
	expired.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = expired.Verify(tok)
	assert.Error(t, err)
}

func TestProfileBeforeCreate(t *testing.T) {
	p := &Profile{Handle: "mumbaikar"}
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, RoleUser, p.Role)

	fixed := uuid.New()
	q := &Profile{ID: fixed, Role: RoleModerator}
	require.NoError(t, q.BeforeCreate(nil))
	assert.Equal(t, fixed, q.ID)
	assert.Equal(t, RoleModerator, q.Role)

	_, err := ParseRole("admin")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, ComparePassword(hash, "correct horse"))
	assert.False(t, ComparePassword(hash, "wrong horse"))
}

func TestMiddleware(t *testing.T) {
	j := NewJWT("secret")
	userTok, _ := j.Sign(uuid.New(), RoleUser)
	modTok, _ := j.Sign(uuid.New(), RoleModerator)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found := PrincipalFromContext(r.Context())
		assert.True(t, found)
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(j)(RequireModerator(ok))

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer " + userTok, http.StatusForbidden},
		{"Bearer " + modTok, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, tc.header)
	}
}
