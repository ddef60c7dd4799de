package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/mastery-api/internal/api/shared"
	"github.com/studyloop/mastery-api/internal/domain"
	"github.com/studyloop/mastery-api/internal/domain/sm2"
	"github.com/studyloop/mastery-api/internal/service"
)

// mockAssessmentService is a configurable service.AssessmentService for
// handler tests.
type mockAssessmentService struct {
	submitFn  func(ctx context.Context, studentID uuid.UUID, skillTopic string, assessment sm2.Assessment) (*domain.MasteryRecord, error)
	getFn     func(ctx context.Context, studentID uuid.UUID, skillTopic string) (*domain.MasteryRecord, error)
	listDueFn func(ctx context.Context, studentID uuid.UUID, now time.Time, limit int) ([]*domain.MasteryRecord, error)
}

func (m *mockAssessmentService) SubmitAssessment(
	ctx context.Context,
	studentID uuid.UUID,
	skillTopic string,
	assessment sm2.Assessment,
) (*domain.MasteryRecord, error) {
	return m.submitFn(ctx, studentID, skillTopic, assessment)
}

func (m *mockAssessmentService) GetMastery(
	ctx context.Context,
	studentID uuid.UUID,
	skillTopic string,
) (*domain.MasteryRecord, error) {
	return m.getFn(ctx, studentID, skillTopic)
}

func (m *mockAssessmentService) ListDueReviews(
	ctx context.Context,
	studentID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MasteryRecord, error) {
	return m.listDueFn(ctx, studentID, now, limit)
}

// newTestRouter mounts the handler behind a stub that injects the given
// student ID the way the auth middleware would.
func newTestRouter(handler *AssessmentHandler, studentID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if studentID != uuid.Nil {
				ctx := context.WithValue(req.Context(), shared.StudentIDContextKey, studentID)
				req = req.WithContext(ctx)
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/skills/{topic}/assessments", handler.SubmitAssessment)
	r.Get("/skills/{topic}/mastery", handler.GetMastery)
	r.Get("/reviews/due", handler.ListDueReviews)
	return r
}

func testRecord(t *testing.T, studentID uuid.UUID, skillTopic string) *domain.MasteryRecord {
	t.Helper()
	record, err := domain.NewMasteryRecord(studentID, skillTopic)
	require.NoError(t, err)
	return record
}

func TestSubmitAssessmentHandler(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()

	t.Run("records assessment and returns updated record", func(t *testing.T) {
		t.Parallel()

		var gotTopic string
		var gotAssessment sm2.Assessment
		svc := &mockAssessmentService{
			submitFn: func(ctx context.Context, sid uuid.UUID, topic string, assessment sm2.Assessment) (*domain.MasteryRecord, error) {
				gotTopic = topic
				gotAssessment = assessment
				record := testRecord(t, sid, topic)
				record.MasteryLevel = domain.MasteryLevelProficient
				return record, nil
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		body := `{"score": "87.5", "passed": true}`
		req := httptest.NewRequest(
			http.MethodPost,
			"/skills/algebra.factoring/assessments",
			strings.NewReader(body),
		)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "algebra.factoring", gotTopic)
		assert.True(t, gotAssessment.Score.Equal(decimal.RequireFromString("87.5")))
		assert.True(t, gotAssessment.Passed)
		assert.Nil(t, gotAssessment.Quality)

		var response MasteryResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "proficient", response.MasteryLevel)
		assert.Equal(t, "algebra.factoring", response.SkillTopic)
		assert.Nil(t, response.LastAssessedAt)
	})

	t.Run("passes explicit quality override through", func(t *testing.T) {
		t.Parallel()

		var gotAssessment sm2.Assessment
		svc := &mockAssessmentService{
			submitFn: func(ctx context.Context, sid uuid.UUID, topic string, assessment sm2.Assessment) (*domain.MasteryRecord, error) {
				gotAssessment = assessment
				return testRecord(t, sid, topic), nil
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		body := `{"score": 95, "passed": true, "quality": 3}`
		req := httptest.NewRequest(
			http.MethodPost,
			"/skills/algebra.factoring/assessments",
			strings.NewReader(body),
		)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotAssessment.Quality)
		assert.Equal(t, 3, *gotAssessment.Quality)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(
			http.MethodPost,
			"/skills/algebra.factoring/assessments",
			strings.NewReader("{not json"),
		)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects out-of-range quality", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		body := `{"score": 80, "passed": true, "quality": 7}`
		req := httptest.NewRequest(
			http.MethodPost,
			"/skills/algebra.factoring/assessments",
			strings.NewReader(body),
		)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps invalid score to bad request", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			submitFn: func(ctx context.Context, sid uuid.UUID, topic string, assessment sm2.Assessment) (*domain.MasteryRecord, error) {
				return nil, sm2.ErrInvalidScore
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		body := `{"score": 150, "passed": true}`
		req := httptest.NewRequest(
			http.MethodPost,
			"/skills/algebra.factoring/assessments",
			strings.NewReader(body),
		)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "Score must be between 0 and 100", response.Error)
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, uuid.Nil)

		body := `{"score": 80, "passed": true}`
		req := httptest.NewRequest(
			http.MethodPost,
			"/skills/algebra.factoring/assessments",
			strings.NewReader(body),
		)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetMasteryHandler(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()

	t.Run("returns mastery record", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			getFn: func(ctx context.Context, sid uuid.UUID, topic string) (*domain.MasteryRecord, error) {
				return testRecord(t, sid, topic), nil
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(http.MethodGet, "/skills/algebra.factoring/mastery", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var response MasteryResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, studentID.String(), response.StudentID)
		assert.Equal(t, "novice", response.MasteryLevel)
		assert.Equal(t, "2.5", response.EaseFactor)
	})

	t.Run("maps missing record to not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			getFn: func(ctx context.Context, sid uuid.UUID, topic string) (*domain.MasteryRecord, error) {
				return nil, service.ErrMasteryNotFound
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(http.MethodGet, "/skills/unknown.topic/mastery", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListDueReviewsHandler(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()

	t.Run("applies default limit", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		svc := &mockAssessmentService{
			listDueFn: func(ctx context.Context, sid uuid.UUID, now time.Time, limit int) ([]*domain.MasteryRecord, error) {
				gotLimit = limit
				return []*domain.MasteryRecord{testRecord(t, sid, "algebra.factoring")}, nil
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, defaultDueReviewLimit, gotLimit)

		var responses []MasteryResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &responses))
		require.Len(t, responses, 1)
		assert.Equal(t, "algebra.factoring", responses[0].SkillTopic)
	})

	t.Run("honors explicit limit", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		svc := &mockAssessmentService{
			listDueFn: func(ctx context.Context, sid uuid.UUID, now time.Time, limit int) ([]*domain.MasteryRecord, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due?limit=5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 5, gotLimit)
	})

	t.Run("rejects non-numeric limit", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due?limit=abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps invalid limit to bad request", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			listDueFn: func(ctx context.Context, sid uuid.UUID, now time.Time, limit int) ([]*domain.MasteryRecord, error) {
				return nil, service.ErrInvalidLimit
			},
		}
		handler := NewAssessmentHandler(svc, slog.Default())
		router := newTestRouter(handler, studentID)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due?limit=0", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
