package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
)

func setupErrorRouter(opts ErrorOptions, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging(), Recovery(opts), ErrorHandler(opts))
	r.GET("/test", handler)
	return r
}

func serve(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		opts        ErrorOptions
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetail  string
	}{
		{
			name:        "app_error",
			err:         apperrors.ErrOrderNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    "ORDER_NOT_FOUND",
			wantMessage: "Order not found",
		},
		{
			name:        "wrapped_app_error_hides_internal",
			opts:        ErrorOptions{IncludeDetail: true},
			err:         fmt.Errorf("create order: %w", apperrors.Wrap(apperrors.ErrSerialization, errors.New("boom"))),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "SERIALIZATION_FAILURE",
			wantMessage: "Entity snapshot could not be serialized",
		},
		{
			name:        "invalid_action",
			err:         apperrors.ErrInvalidAction,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_ARGUMENT",
			wantMessage: "Unknown audit action kind",
		},
		{
			name:        "unexpected_error_production",
			err:         errors.New("db is on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "unexpected_error_development",
			opts:        ErrorOptions{IncludeDetail: true},
			err:         errors.New("db is on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An internal error occurred",
			wantDetail:  "db is on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupErrorRouter(tt.opts, func(c *gin.Context) {
				_ = c.Error(tt.err)
			})
			rec := serve(r, nil)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
			if !ok {
				t.Fatal("expected error object in response")
			}
			if errObj["code"] != tt.wantCode {
				t.Errorf("code = %v, want %q", errObj["code"], tt.wantCode)
			}
			if errObj["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", errObj["message"], tt.wantMessage)
			}
			detail, hasDetail := errObj["detail"]
			if tt.wantDetail == "" && hasDetail {
				t.Errorf("unexpected detail %v", detail)
			}
			if tt.wantDetail != "" && detail != tt.wantDetail {
				t.Errorf("detail = %v, want %q", detail, tt.wantDetail)
			}
			if id, _ := errObj["request_id"].(string); id == "" || id != rec.Header().Get("X-Request-ID") {
				t.Errorf("request_id = %q, header = %q", id, rec.Header().Get("X-Request-ID"))
			}
		})
	}
}

func TestErrorHandlerLeavesWrittenResponse(t *testing.T) {
	r := setupErrorRouter(ErrorOptions{}, func(c *gin.Context) {
		_ = c.Error(errors.New("logged only"))
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	})
	rec := serve(r, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if status, _ := parseBody(t, rec)["status"].(string); status != "accepted" {
		t.Errorf("body was replaced: %s", rec.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	r := setupErrorRouter(ErrorOptions{}, func(c *gin.Context) {
		panic("handler exploded")
	})
	rec := serve(r, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", code)
	}
}

func TestRequestLoggingReusesValidRequestID(t *testing.T) {
	const id = "0190a6e2-7c1b-7d4e-8f00-0123456789ab"
	r := setupErrorRouter(ErrorOptions{}, func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	rec := serve(r, map[string]string{"X-Request-ID": id})
	if rec.Header().Get("X-Request-ID") != id || rec.Body.String() != id {
		t.Errorf("request id not propagated: header=%q body=%q", rec.Header().Get("X-Request-ID"), rec.Body.String())
	}

	rec = serve(r, map[string]string{"X-Request-ID": "not a uuid"})
	if got := rec.Header().Get("X-Request-ID"); got == "not a uuid" || got == "" {
		t.Errorf("expected generated request id, got %q", got)
	}
}
