package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/profile"
	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
)

// handleGetProfile returns the authenticated user's profile, or 404
// when none has been saved yet. Rendered profiles are cached per owner
// until the save workflow revalidates them.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	key := "/profile/" + userID.String()
	if s.cachedResponse(w, key) {
		return
	}

	p, err := s.profileService.Get(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "no profile saved")
		return
	}

	s.jsonResponseCaching(w, key, p)
}

// handleSaveProfile upserts the authenticated user's profile. The save
// workflow reports failure through the result body, not the status
// code, except for malformed requests.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input profile.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.profileService.Save(r.Context(), userID, input)
	s.jsonResponse(w, http.StatusOK, result)
}
