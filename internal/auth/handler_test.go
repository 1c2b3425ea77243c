package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Draichi/canvas-ui/internal/auth"
)

func newTestRouter() http.Handler {
	svc := newTestService()
	h := auth.NewHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	api := r.PathPrefix("/api").Subrouter()
	api.Use(svc.AuthMiddleware)
	api.HandleFunc("/me", h.Me).Methods("GET")
	return r
}

func send(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRegisterLoginMe(t *testing.T) {
	r := newTestRouter()

	rec := send(r, "POST", "/auth/register", "", `{"email":"ada@example.com","password":"correct horse","displayName":"Ada"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var reg auth.AuthResult
	json.NewDecoder(rec.Body).Decode(&reg)
	if reg.CanvasID == "" || reg.CanvasID != auth.CanvasID(reg.User.ID) {
		t.Errorf("register should name the user's canvas, got %+v", reg)
	}

	rec = send(r, "POST", "/auth/login", "", `{"email":"ada@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var login auth.AuthResult
	json.NewDecoder(rec.Body).Decode(&login)
	if login.CanvasID != reg.CanvasID {
		t.Errorf("login canvas %q, registered %q", login.CanvasID, reg.CanvasID)
	}

	rec = send(r, "GET", "/api/me", login.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var me struct {
		User     auth.User `json:"user"`
		CanvasID string    `json:"canvasId"`
	}
	json.NewDecoder(rec.Body).Decode(&me)
	if me.User.Email != "ada@example.com" || me.CanvasID != reg.CanvasID {
		t.Errorf("unexpected me response %+v", me)
	}
}

func TestHandlerErrors(t *testing.T) {
	r := newTestRouter()
	send(r, "POST", "/auth/register", "", `{"email":"ada@example.com","password":"correct horse","displayName":"Ada"}`)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"bad json", "POST", "/auth/register", "", `{`, http.StatusBadRequest},
		{"missing name", "POST", "/auth/register", "", `{"email":"b@example.com","password":"correct horse","displayName":"  "}`, http.StatusBadRequest},
		{"short password", "POST", "/auth/register", "", `{"email":"b@example.com","password":"short","displayName":"B"}`, http.StatusBadRequest},
		{"email taken", "POST", "/auth/register", "", `{"email":"ADA@example.com","password":"correct horse","displayName":"Ada"}`, http.StatusConflict},
		{"missing password", "POST", "/auth/login", "", `{"email":"ada@example.com"}`, http.StatusBadRequest},
		{"wrong password", "POST", "/auth/login", "", `{"email":"ada@example.com","password":"wrong horse"}`, http.StatusUnauthorized},
		{"me without token", "GET", "/api/me", "", "", http.StatusUnauthorized},
		{"me with bad token", "GET", "/api/me", "nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(r, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}
