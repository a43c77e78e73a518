// Package server implements the HTTP API over the document stores.
//
// The API is CRUD glue by design: every route resolves the authenticated
// tenant, calls one store operation, and maps the result onto a status code.
// Clients persist AI chat and PDF extraction output through the same canvas
// routes; nothing bypasses the bundler.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slateview/slateview/internal/server/reqctx"
	"github.com/slateview/slateview/internal/storage/content"
)

const tokenExpiration = 24 * time.Hour

// maxBodyBytes bounds request bodies; canvases with many large node payloads
// still fit comfortably.
const maxBodyBytes = 8 << 20

// Server holds the stores behind the HTTP API.
type Server struct {
	workspaces *content.WorkspaceStore
	canvases   *content.CanvasStore
	settings   *content.SettingsStore
	jwtSecret  []byte
}

// New creates a server over the given stores.
func New(workspaces *content.WorkspaceStore, canvases *content.CanvasStore, settings *content.SettingsStore, jwtSecret []byte) *Server {
	return &Server{
		workspaces: workspaces,
		canvases:   canvases,
		settings:   settings,
		jwtSecret:  jwtSecret,
	}
}

// Router returns the configured HTTP handler.
func (s *Server) Router() http.Handler {
	mux := &http.ServeMux{}
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.Handle("GET /api/workspaces", s.auth(s.handleListWorkspaces))
	mux.Handle("POST /api/workspaces", s.auth(s.handleCreateWorkspace))
	mux.Handle("PUT /api/workspaces/{id}", s.auth(s.handleUpdateWorkspace))
	mux.Handle("DELETE /api/workspaces/{id}", s.auth(s.handleDeleteWorkspace))

	mux.Handle("GET /api/canvases", s.auth(s.handleListCanvases))
	mux.Handle("POST /api/canvases", s.auth(s.handleCreateCanvas))
	mux.Handle("GET /api/canvases/{id}", s.auth(s.handleGetCanvas))
	mux.Handle("PUT /api/canvases/{id}", s.auth(s.handleUpdateCanvas))
	mux.Handle("DELETE /api/canvases/{id}", s.auth(s.handleDeleteCanvas))

	mux.Handle("GET /api/settings/ai", s.auth(s.handleGetSettings))
	mux.Handle("PUT /api/settings/ai", s.auth(s.handlePutSettings))
	return mux
}

// GenerateToken mints a bearer token for the given tenant. Used by tests;
// production deployments mint tokens in the auth service.
func (s *Server) GenerateToken(tenant string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   tenant,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// auth resolves the request's bearer token to a tenant before the storage
// layer is invoked. Every storage path is namespaced by the resolved tenant,
// so isolation holds as long as this middleware does.
func (s *Server) auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := reqctx.BearerToken(r)
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		tenant, err := token.Claims.GetSubject()
		if err != nil || tenant == "" {
			writeError(w, http.StatusUnauthorized, "token has no subject")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r.WithContext(reqctx.WithTenant(r.Context(), tenant)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps storage errors onto status codes: not-found is a 404,
// everything else surfaces as a server error. Transport failures are not
// retried anywhere below, so the client sees them directly.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, content.ErrWorkspaceNotFound) || errors.Is(err, content.ErrCanvasNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.ErrorContext(r.Context(), "Storage operation failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "storage operation failed")
}

// decodeBody decodes the JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
