package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-studio/internal/cache"
	"github.com/jonathan/cover-letter-studio/internal/db"
	"github.com/jonathan/cover-letter-studio/internal/profile"
	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
)

type fakeProfileService struct {
	profile *db.Profile
	getErr  error
	result  profile.SaveResult

	savedInput profile.Input
	savedOwner uuid.UUID
}

func (f *fakeProfileService) Save(_ context.Context, ownerID uuid.UUID, input profile.Input) profile.SaveResult {
	f.savedOwner = ownerID
	f.savedInput = input
	return f.result
}

func (f *fakeProfileService) Get(_ context.Context, _ uuid.UUID) (*db.Profile, error) {
	return f.profile, f.getErr
}

func TestHandleGetProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		s := &Server{profileService: &fakeProfileService{profile: &db.Profile{FullName: "Ada"}}}

		req := middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID)
		rec := httptest.NewRecorder()
		s.handleGetProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got db.Profile
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "Ada", got.FullName)
	})

	t.Run("not saved yet", func(t *testing.T) {
		s := &Server{profileService: &fakeProfileService{}}

		req := middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID)
		rec := httptest.NewRecorder()
		s.handleGetProfile(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		s := &Server{profileService: &fakeProfileService{getErr: errors.New("down")}}

		req := middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID)
		rec := httptest.NewRecorder()
		s.handleGetProfile(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		s := &Server{profileService: &fakeProfileService{}}

		rec := httptest.NewRecorder()
		s.handleGetProfile(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleGetProfileServesCachedCopy(t *testing.T) {
	userID := uuid.New()
	svc := &fakeProfileService{profile: &db.Profile{FullName: "Ada"}}
	s := &Server{profileService: svc, pageCache: cache.New()}

	req := middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID)
	rec := httptest.NewRecorder()
	s.handleGetProfile(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The cached body survives a change in the backing store.
	svc.profile = &db.Profile{FullName: "Grace"}
	rec = httptest.NewRecorder()
	s.handleGetProfile(rec, middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada")

	s.pageCache.Revalidate("/profile")
	rec = httptest.NewRecorder()
	s.handleGetProfile(rec, middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Grace")

	// A missing profile is never cached.
	assert.Equal(t, 1, s.pageCache.Len())
	svc.profile = nil
	s.pageCache.Revalidate("/profile")
	rec = httptest.NewRecorder()
	s.handleGetProfile(rec, middleware.WithUserID(httptest.NewRequest(http.MethodGet, "/profile", nil), userID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, s.pageCache.Len())
}

func TestHandleSaveProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("success result", func(t *testing.T) {
		svc := &fakeProfileService{result: profile.SaveResult{Success: true, Message: "Your profile has been saved."}}
		s := &Server{profileService: svc}

		body := `{"fullName":"Ada Lovelace","email":"ada@example.com","skills":["Go"]}`
		req := middleware.WithUserID(
			httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)), userID)
		rec := httptest.NewRecorder()
		s.handleSaveProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result profile.SaveResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.Equal(t, userID, svc.savedOwner)
		assert.Equal(t, "Ada Lovelace", svc.savedInput.FullName)
	})

	t.Run("failure still returns 200 with result body", func(t *testing.T) {
		svc := &fakeProfileService{result: profile.SaveResult{Success: false, Message: "Please fix the highlighted fields and try again."}}
		s := &Server{profileService: svc}

		req := middleware.WithUserID(
			httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{}`)), userID)
		rec := httptest.NewRecorder()
		s.handleSaveProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result profile.SaveResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := &Server{profileService: &fakeProfileService{}}

		req := middleware.WithUserID(
			httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader("{not json")), userID)
		rec := httptest.NewRecorder()
		s.handleSaveProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
