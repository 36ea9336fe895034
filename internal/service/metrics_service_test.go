package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-portal-api/internal/models"
)

func TestMetricsServiceExposesDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/courses", http.StatusOK, 20*time.Millisecond)
	m.RecordLogin(models.RoleStudent, true)
	m.RecordDecision(models.ApprovalKindCourse, models.ApprovalApproved)
	m.RecordEnrollment("select")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Contains(t, body, `approval_decisions_total{kind="course",status="approved"} 1`)
	assert.Contains(t, body, `auth_logins_total{outcome="success",role="student"} 1`)
	assert.Contains(t, body, `enrollment_changes_total{action="select"} 1`)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordLogin(models.RoleAdmin, false)
	m.RecordDecision(models.ApprovalKindMessage, models.ApprovalRejected)
	m.RecordEnrollment("withdraw")
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	assert.Equal(t, SystemMetrics{}, m.Snapshot())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
