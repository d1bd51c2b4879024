package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkov/shareit/internal/common"
	"github.com/avolkov/shareit/internal/server/auth"
	"github.com/avolkov/shareit/internal/server/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type createAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createAccountResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type shareResponse struct {
	Token string `json:"token"`
}

type linkResponse struct {
	Token     string               `json:"token"`
	File      *models.FileNode     `json:"file"`
	Owner     models.OwnerIdentity `json:"owner"`
	CreatedAt time.Time            `json:"created_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service-layer sentinel errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrorDuplicateAccount):
		writeError(w, http.StatusConflict, "account already exists")
	default:
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) handleCreateAccount(w http.ResponseWriter, r *http.Request) {

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	user, err := s.accounts.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	accessToken, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "Account created", "email", user.Email)

	writeJSON(w, http.StatusCreated, createAccountResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccessToken: accessToken,
	})
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload")
		return
	}

	node, err := s.files.Upload(r.Context(), callerID(r), header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (s *HTTPServer) handleCreateFolder(w http.ResponseWriter, r *http.Request) {

	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	node, err := s.files.CreateFolder(r.Context(), callerID(r), req.Name, req.ParentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {

	nodes, err := s.files.List(r.Context(), callerID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if nodes == nil {
		nodes = []*models.FileNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *HTTPServer) handleDownload(w http.ResponseWriter, r *http.Request) {

	result, err := s.files.Download(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	serveContent(w, result.Name, result.MimeType, result.Content)
}

func (s *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {

	if err := s.files.Delete(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleShare(w http.ResponseWriter, r *http.Request) {

	tok, err := s.links.Share(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, shareResponse{Token: tok})
}

func (s *HTTPServer) handleListLinks(w http.ResponseWriter, r *http.Request) {

	links, err := s.links.ListByOwner(r.Context(), callerID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := make([]linkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, linkResponse{Token: l.Token, File: l.File, Owner: l.Owner, CreatedAt: l.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleRevoke(w http.ResponseWriter, r *http.Request) {

	if err := s.links.Revoke(r.Context(), callerID(r), r.PathValue("token")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSharedMeta(w http.ResponseWriter, r *http.Request) {

	link, err := s.links.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, linkResponse{Token: link.Token, File: link.File, Owner: link.Owner, CreatedAt: link.CreatedAt})
}

func (s *HTTPServer) handleSharedContent(w http.ResponseWriter, r *http.Request) {

	result, err := s.files.DownloadShared(r.Context(), r.PathValue("token"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	serveContent(w, result.Name, result.MimeType, result.Content)
}

func serveContent(w http.ResponseWriter, name, mimeType string, content []byte) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
