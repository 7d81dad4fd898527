package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func withRole(r *http.Request, roleID int) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, RoleIDKey, roleID)
	return r.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		handler http.Handler
		roleID  int
		setRole bool
		want    int
	}{
		{"admin passes admin gate", RequireAdmin(ok), entity.RoleIDAdmin, true, http.StatusNoContent},
		{"receptionist blocked by admin gate", RequireAdmin(ok), entity.RoleIDReceptionist, true, http.StatusForbidden},
		{"receptionist passes staff gate", RequireStaff(ok), entity.RoleIDReceptionist, true, http.StatusNoContent},
		{"technician blocked by staff gate", RequireStaff(ok), entity.RoleIDTechnician, true, http.StatusForbidden},
		{"customer blocked by staff gate", RequireStaff(ok), entity.RoleIDCustomer, true, http.StatusForbidden},
		{"missing role", RequireStaff(ok), 0, false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setRole {
				req = withRole(req, tt.roleID)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestActorFromContext(t *testing.T) {
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatal("expected no actor on empty context")
	}

	id := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDKey, id)
	ctx = context.WithValue(ctx, RoleIDKey, entity.RoleIDTechnician)
	actor, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor")
	}
	if actor.ID != id || actor.RoleID != entity.RoleIDTechnician {
		t.Fatalf("expected %s/%d, got %+v", id, entity.RoleIDTechnician, actor)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	var seen string
	h := RequestID(NewAccessLogMiddleware(log).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected request id to propagate, got ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "abc-123" || entry["path"] != "/api/v1/appointments" || entry["status"] != float64(http.StatusCreated) {
		t.Fatalf("unexpected access log entry: %v", entry)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}
