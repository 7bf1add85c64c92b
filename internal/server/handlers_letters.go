package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-studio/internal/db"
	"github.com/jonathan/cover-letter-studio/internal/letters"
	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
)

// handleListLetters returns the authenticated user's letters, newest
// first. The rendered list is cached per owner until a generate, edit,
// or delete revalidates it.
func (s *Server) handleListLetters(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	key := "/cover/" + userID.String()
	if s.cachedResponse(w, key) {
		return
	}

	list, err := s.letterService.List(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list cover letters")
		return
	}

	s.jsonResponseCaching(w, key, map[string]any{"cover_letters": list})
}

// handleGenerateLetter generates and stores a new letter for a job posting.
func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input letters.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	letter, err := s.letterService.Generate(r.Context(), userID, input)
	if err != nil {
		s.letterError(w, err, "Failed to generate cover letter. Please try again.")
		return
	}

	s.jsonResponse(w, http.StatusCreated, letter)
}

// handleEditLetter regenerates an existing letter from revised inputs.
func (s *Server) handleEditLetter(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	letterID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid cover letter ID")
		return
	}

	var input letters.EditInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	letter, err := s.letterService.Edit(r.Context(), userID, letterID, input)
	if err != nil {
		s.letterError(w, err, "Failed to generate cover letter. Please try again.")
		return
	}

	s.jsonResponse(w, http.StatusOK, letter)
}

// handleDeleteLetter removes one of the authenticated user's letters.
func (s *Server) handleDeleteLetter(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	letterID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid cover letter ID")
		return
	}

	if err := s.letterService.Delete(r.Context(), userID, letterID); err != nil {
		s.letterError(w, err, "Failed to delete cover letter. Please try again.")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Cover letter deleted"})
}

// letterError writes a workflow error. Caller mistakes (bad input,
// missing letter) keep their message; anything else is a terminal
// failure whose cause is logged, never returned to the client.
func (s *Server) letterError(w http.ResponseWriter, err error, terminalMessage string) {
	switch {
	case errors.Is(err, letters.ErrInvalidInput):
		s.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, "cover letter not found")
	default:
		log.Printf("Cover letter workflow error: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, terminalMessage)
	}
}
