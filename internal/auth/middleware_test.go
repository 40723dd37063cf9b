package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// echoUserID writes the context user id (or "anonymous") as the body.
func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			id = "anonymous"
		}
		w.Write([]byte(id))
	})
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, _ := ts.Generate("user-1")
	expired, _ := ts.GenerateWithDuration("user-1", -time.Minute)

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
		wantErr  string
	}{
		{
			name:     "cookie",
			setup:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: valid}) },
			wantCode: http.StatusOK,
			wantBody: "user-1",
		},
		{
			name:     "bearer header",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) },
			wantCode: http.StatusOK,
			wantBody: "user-1",
		},
		{
			name:     "no token",
			setup:    func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
			wantErr:  "session_required",
		},
		{
			name:     "wrong scheme",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Basic "+valid) },
			wantCode: http.StatusUnauthorized,
			wantErr:  "session_required",
		},
		{
			name:     "expired",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			wantCode: http.StatusUnauthorized,
			wantErr:  "invalid_session",
		},
		{
			name: "broken cookie is not retried against the header",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
				r.Header.Set("Authorization", "Bearer "+valid)
			},
			wantCode: http.StatusUnauthorized,
			wantErr:  "invalid_session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			RequireAuth(ts)(echoUserID()).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantErr != "" {
				var body struct {
					Error string `json:"error"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("401 body is not JSON: %v", err)
				}
				if body.Error != tt.wantErr {
					t.Errorf("error = %q, want %q", body.Error, tt.wantErr)
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("401 without WWW-Authenticate header")
				}
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, _ := ts.Generate("user-2")

	t.Run("anonymous passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		OptionalAuth(ts)(echoUserID()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
			t.Errorf("got %d %q, want 200 anonymous", rec.Code, rec.Body.String())
		}
	})

	t.Run("garbage token is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		OptionalAuth(ts)(echoUserID()).ServeHTTP(rec, req)

		if rec.Body.String() != "anonymous" {
			t.Errorf("body = %q, want anonymous", rec.Body.String())
		}
	})

	t.Run("valid token sets user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
		rec := httptest.NewRecorder()
		OptionalAuth(ts)(echoUserID()).ServeHTTP(rec, req)

		if rec.Body.String() != "user-2" {
			t.Errorf("body = %q, want user-2", rec.Body.String())
		}
	})
}

func TestUserIDFromContext(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Error("empty context reported a user")
	}
	if _, ok := UserIDFromContext(WithUserID(context.Background(), "")); ok {
		t.Error("empty id reported as a user")
	}
	id, ok := UserIDFromContext(WithUserID(context.Background(), "ada"))
	if !ok || id != "ada" {
		t.Errorf("got (%q, %t), want (ada, true)", id, ok)
	}
}
