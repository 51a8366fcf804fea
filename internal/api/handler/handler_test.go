package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/pipeline-analytics-api/internal/api/handler/router"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
	analyzingmocks "github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing/mocks"
	pipelinemocks "github.com/vfg2006/pipeline-analytics-api/internal/usecases/pipeline/mocks"
	"github.com/vfg2006/pipeline-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/pipeline-analytics-api/pkg/middleware"
)

type fakeJob struct {
	triggered int
}

func (f *fakeJob) TriggerManualSync()        { f.triggered++ }
func (f *fakeJob) GetStatus() map[string]any { return map[string]any{"sync_running": false} }

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fixture struct {
	analyzer *analyzingmocks.MockAnalyzer
	manager  *pipelinemocks.MockManager
	job      *fakeJob
	db       fakePinger
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		analyzer: analyzingmocks.NewMockAnalyzer(ctrl),
		manager:  pipelinemocks.NewMockManager(ctrl),
		job:      &fakeJob{},
	}
}

// serve executa a requisição com o usuário do role informado já autenticado
func (f *fixture) serve(role int, method, target string, body []byte) *httptest.ResponseRecorder {
	rt := router.New(
		router.WithRoutes(Healthcheck(f.db)...),
		router.WithRoutes(Analytics(f.analyzer)...),
		router.WithRoutes(Entities(f.manager)...),
		router.WithRoutes(CronJobs(CronJobServices{SnapshotSync: f.job})...),
	)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if role != 0 {
		claims := &domain.Claims{UserID: 1, UserRoleID: role}
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUser, claims))
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	t.Helper()
	var body apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetAnalytics(t *testing.T) {
	f := newFixture(t)
	march := domain.MonthPeriod(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	f.analyzer.EXPECT().
		ComputeAnalytics(gomock.Any(), analyzing.Request{
			Period:     march,
			Filters:    domain.Filters{Owner: "ana"},
			BucketSize: domain.BucketWeek,
		}).
		Return(&domain.AggregateResult{Period: march}, nil)

	rec := f.serve(middleware.RoleSeller, http.MethodGet, "/v1/analytics?period=03-2024&owner=ana&bucket=week", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var result domain.AggregateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Period.Start.Equal(march.Start))
}

func TestGetAnalytics_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(f *fixture)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "período invertido",
			target:     "/v1/analytics?start=2024-03-10&end=2024-03-01",
			setup:      func(f *fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidPeriod,
		},
		{
			name:       "granularidade desconhecida",
			target:     "/v1/analytics?bucket=year",
			setup:      func(f *fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidPeriod,
		},
		{
			name:       "quantidade de buckets acima do limite",
			target:     "/v1/analytics?period=03-2024&buckets=1000000000",
			setup:      func(f *fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidPeriod,
		},
		{
			name:   "falha no cálculo",
			target: "/v1/analytics?period=03-2024",
			setup: func(f *fixture) {
				f.analyzer.EXPECT().ComputeAnalytics(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   apiErrors.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			rec := f.serve(middleware.RoleAdmin, http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestParseAnalyticsRequest(t *testing.T) {
	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantCount int
		wantErr   bool
	}{
		{
			name:      "sem período usa o mês corrente",
			query:     "",
			wantStart: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "intervalo com fim inclusivo",
			query:     "start=2024-01-01&end=2024-01-31&buckets=6",
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantCount: 6,
		},
		{
			name:    "fim ausente",
			query:   "start=2024-01-01",
			wantErr: true,
		},
		{
			name:    "quantidade de buckets inválida",
			query:   "buckets=0",
			wantErr: true,
		},
		{
			name:      "quantidade máxima de buckets",
			query:     "start=2024-01-01&end=2024-01-31&buckets=366",
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantCount: domain.MaxBucketCount,
		},
		{
			name:    "quantidade de buckets acima do limite",
			query:   "buckets=367",
			wantErr: true,
		},
		{
			name:    "mês inválido",
			query:   "period=13-2024",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			req, err := parseAnalyticsRequest(query, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
				return
			}

			require.NoError(t, err)
			assert.True(t, req.Period.Start.Equal(tt.wantStart))
			assert.True(t, req.Period.End.Equal(tt.wantEnd))
			assert.Equal(t, tt.wantCount, req.BucketCount)
		})
	}
}

func TestGetAnalyticsSnapshot(t *testing.T) {
	f := newFixture(t)

	f.analyzer.EXPECT().
		GetSnapshot(gomock.Any(), "02-2024", domain.Filters{Channel: "web"}).
		Return(nil, domain.ErrSnapshotNotFound)

	rec := f.serve(middleware.RoleManager, http.MethodGet, "/v1/analytics/snapshots?period=02-2024&channel=web", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.serve(middleware.RoleManager, http.MethodGet, "/v1/analytics/snapshots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrMissingRequiredData, decodeError(t, rec).Code)
}

func TestGetAvailablePeriods(t *testing.T) {
	f := newFixture(t)

	f.analyzer.EXPECT().GetAvailablePeriods(gomock.Any()).Return(&domain.AvailablePeriods{
		Periods: []string{"01-2024", "02-2024"},
		Years:   []string{"2024"},
		Months:  []string{"01", "02"},
	}, nil)

	rec := f.serve(middleware.RoleSeller, http.MethodGet, "/v1/analytics/periods", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var periods domain.AvailablePeriods
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &periods))
	assert.Equal(t, []string{"01-2024", "02-2024"}, periods.Periods)
}

func TestCreateEntity(t *testing.T) {
	tests := []struct {
		name       string
		role       int
		body       string
		setup      func(f *fixture)
		wantStatus int
	}{
		{
			name: "entidade criada",
			role: middleware.RoleManager,
			body: `{"name":"Acme","owner":"ana"}`,
			setup: func(f *fixture) {
				f.manager.EXPECT().
					CreateEntity(gomock.Any(), domain.CreateEntityRequest{Name: "Acme", Owner: "ana"}).
					Return(&domain.PipelineEntity{ID: "A", Stage: domain.StageProspecto}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "campo desconhecido",
			role:       middleware.RoleManager,
			body:       `{"nome":"Acme"}`,
			setup:      func(f *fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "câmbio ausente",
			role: middleware.RoleAdmin,
			body: `{"estimated_value":100,"currency":"COP"}`,
			setup: func(f *fixture) {
				f.manager.EXPECT().CreateEntity(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewMissingExchangeRateError(domain.CurrencyCOP, nil))
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "vendedor não pode criar",
			role:       middleware.RoleSeller,
			body:       `{"name":"Acme"}`,
			setup:      func(f *fixture) {},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			rec := f.serve(tt.role, http.MethodPost, "/v1/entities", []byte(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRecordTransition(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(f *fixture)
		wantStatus int
		wantCode   string
	}{
		{
			name: "transição registrada",
			body: `{"from_stage":"prospecto","to_stage":"CONTACTADO"}`,
			setup: func(f *fixture) {
				f.manager.EXPECT().
					RecordTransition(gomock.Any(), "A", domain.StageProspecto, domain.StageContactado).
					Return(domain.StageHistoryRecord{ID: "r2", EntityID: "A", ToStage: domain.StageContactado}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "etapa de origem desatualizada",
			body: `{"from_stage":"PROSPECTO","to_stage":"REUNION"}`,
			setup: func(f *fixture) {
				f.manager.EXPECT().RecordTransition(gomock.Any(), "A", domain.StageProspecto, domain.StageReunion).
					Return(domain.StageHistoryRecord{}, domain.NewStaleTransitionError("A", domain.StageProspecto, domain.StageContactado))
			},
			wantStatus: http.StatusConflict,
			wantCode:   apiErrors.ErrStaleTransition,
		},
		{
			name:       "etapa desconhecida",
			body:       `{"from_stage":"PROSPECTO","to_stage":"FECHADO"}`,
			setup:      func(f *fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrInvalidStage,
		},
		{
			name: "etapa de origem desconhecida vira conflito",
			body: `{"from_stage":" cerrado ","to_stage":"REUNION"}`,
			setup: func(f *fixture) {
				f.manager.EXPECT().RecordTransition(gomock.Any(), "A", domain.Stage("CERRADO"), domain.StageReunion).
					Return(domain.StageHistoryRecord{}, domain.NewStaleTransitionError("A", "CERRADO", domain.StageProspecto))
			},
			wantStatus: http.StatusConflict,
			wantCode:   apiErrors.ErrStaleTransition,
		},
		{
			name:       "etapa de origem ausente",
			body:       `{"to_stage":"REUNION"}`,
			setup:      func(f *fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrMissingRequiredData,
		},
		{
			name: "entidade inexistente",
			body: `{"from_stage":"PROSPECTO","to_stage":"REUNION"}`,
			setup: func(f *fixture) {
				f.manager.EXPECT().RecordTransition(gomock.Any(), "A", gomock.Any(), gomock.Any()).
					Return(domain.StageHistoryRecord{}, domain.ErrEntityNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apiErrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			rec := f.serve(middleware.RoleManager, http.MethodPost, "/v1/entities/A/transitions", []byte(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestGetEntityHistory(t *testing.T) {
	f := newFixture(t)

	f.manager.EXPECT().History(gomock.Any(), "A").Return([]domain.StageHistoryRecord{
		{ID: "r1", EntityID: "A", ToStage: domain.StageProspecto},
		{ID: "r2", EntityID: "A", FromStage: domain.StagePtr(domain.StageProspecto), ToStage: domain.StageContactado},
	}, nil)

	rec := f.serve(middleware.RoleSeller, http.MethodGet, "/v1/entities/A/history", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var history []domain.StageHistoryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 2)
}

func TestGetTimeInStage(t *testing.T) {
	f := newFixture(t)

	f.manager.EXPECT().TimeInStage(gomock.Any(), "A", domain.StageReunion).Return(90*time.Minute, nil)

	rec := f.serve(middleware.RoleSeller, http.MethodGet, "/v1/entities/A/time-in-stage?stage=reunion", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body TimeInStageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5400.0, body.Seconds)
	assert.Equal(t, domain.StageReunion, body.Stage)

	rec = f.serve(middleware.RoleSeller, http.MethodGet, "/v1/entities/A/time-in-stage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertDeal(t *testing.T) {
	f := newFixture(t)

	f.manager.EXPECT().
		UpsertDeal(gomock.Any(), "A", domain.UpsertDealRequest{Currency: "USD", MRROriginal: 500, StartDate: "2024-03-01"}).
		Return(&domain.Deal{EntityID: "A", MRRUSD: 500}, nil)

	rec := f.serve(middleware.RoleAdmin, http.MethodPut, "/v1/entities/A/deal", []byte(`{"currency":"USD","mrr_original":500,"start_date":"2024-03-01"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCronJobs(t *testing.T) {
	f := newFixture(t)

	rec := f.serve(middleware.RoleAdmin, http.MethodPost, "/v1/cron/snapshot/run", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.serve(middleware.RoleAdmin, http.MethodPost, "/v1/cron/all/run", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.serve(middleware.RoleAdmin, http.MethodPost, "/v1/cron/meta/run", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.serve(middleware.RoleManager, http.MethodPost, "/v1/cron/snapshot/run", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, 2, f.job.triggered)

	rec = f.serve(middleware.RoleAdmin, http.MethodGet, "/v1/cron/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"snapshot"`)
}

func TestHealthcheck(t *testing.T) {
	f := newFixture(t)

	rec := f.serve(0, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.db = fakePinger{err: errors.New("connection refused")}
	rec = f.serve(0, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.serve(middleware.RoleAdmin, http.MethodGet, "/v1/nada", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
