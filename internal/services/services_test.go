package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/justsurfingit/hiring-board/internal/database"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/metrics"
	"github.com/justsurfingit/hiring-board/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedJob(t *testing.T, db *gorm.DB) *models.Job {
	t.Helper()
	job, err := NewJobService(db).CreateJob(context.Background(), &dtos.JobCreationRequest{
		CompanyName: "Stripe",
		Title:       "Backend Engineer",
		Description: "Go, Postgres",
	})
	require.NoError(t, err)
	return job
}

func seedApp(t *testing.T, db *gorm.DB, jobID uint, status models.Status, order int, name string) models.Application {
	t.Helper()
	app := models.Application{JobID: jobID, Status: status, KanbanOrder: order, CandidateName: name}
	require.NoError(t, db.Create(&app).Error)
	return app
}

func TestCreateJobReusesCompany(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobService(db)
	ctx := context.Background()

	a, err := svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "SRE", Description: "d"})
	require.NoError(t, err)
	b, err := svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: " Acme ", Title: "SWE", Description: "d"})
	require.NoError(t, err)
	require.Equal(t, a.CompanyID, b.CompanyID)

	var companies int64
	require.NoError(t, db.Model(&models.Company{}).Count(&companies).Error)
	require.Equal(t, int64(1), companies)

	got, err := svc.GetJob(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Company.Name)

	_, err = svc.GetJob(ctx, 999)
	require.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "   ", Title: "SRE", Description: "d"})
	require.ErrorIs(t, err, ErrInvalidJob)
	_, err = svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: " ", Description: "d"})
	require.ErrorIs(t, err, ErrInvalidJob)
}

func TestListForJobOrdersAndFilters(t *testing.T) {
	db := newTestDB(t)
	job := seedJob(t, db)
	other := seedJob(t, db)
	svc := NewApplicationService(db, nil, nil, discardLogger())

	c := seedApp(t, db, job.ID, models.StatusSubmitted, 2, "c")
	a := seedApp(t, db, job.ID, models.StatusSubmitted, 0, "a")
	b := seedApp(t, db, job.ID, models.StatusInterview, 1, "b")
	seedApp(t, db, other.ID, models.StatusSubmitted, 0, "elsewhere")

	apps, err := svc.ListForJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	require.Equal(t, []uint{a.ID, b.ID, c.ID}, []uint{apps[0].ID, apps[1].ID, apps[2].ID})

	apps, err = svc.ListForJob(context.Background(), job.ID, models.StatusSubmitted)
	require.NoError(t, err)
	require.Equal(t, []uint{a.ID, c.ID}, []uint{apps[0].ID, apps[1].ID})

	_, err = svc.ListForJob(context.Background(), 12345)
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestCreateAppendsToSubmittedColumn(t *testing.T) {
	db := newTestDB(t)
	job := seedJob(t, db)
	hub := NewNotificationHub(10)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewApplicationService(db, hub, m, discardLogger())
	ctx := context.Background()

	seedApp(t, db, job.ID, models.StatusSubmitted, 0, "first")
	seedApp(t, db, job.ID, models.StatusScreening, 0, "screened")

	app, err := svc.Create(ctx, job.ID, &dtos.ApplicationCreationRequest{
		CandidateName:  " Grace ",
		CandidateEmail: "Grace@Example.com",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusSubmitted, app.Status)
	require.Equal(t, 1, app.KanbanOrder)
	require.Equal(t, "Grace", app.CandidateName)
	require.Equal(t, "grace@example.com", app.CandidateEmail)
	require.Equal(t, 1.0, testutil.ToFloat64(m.ApplicationsAdded))

	replay, _, cancel := hub.Subscribe(0, 0)
	defer cancel()
	require.Len(t, replay, 1)
	require.Equal(t, dtos.EventApplicationCreated, replay[0].Event)

	_, err = svc.Create(ctx, 777, &dtos.ApplicationCreationRequest{CandidateName: "x", CandidateEmail: "x@y.z"})
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestCreateAfterCardLeftSubmittedKeepsOrdersUnique(t *testing.T) {
	db := newTestDB(t)
	job := seedJob(t, db)
	svc := NewApplicationService(db, NewNotificationHub(10), nil, discardLogger())
	ctx := context.Background()

	first := seedApp(t, db, job.ID, models.StatusSubmitted, 0, "a")
	seedApp(t, db, job.ID, models.StatusSubmitted, 1, "b")
	seedApp(t, db, job.ID, models.StatusSubmitted, 2, "c")

	// only the target column is sent, leaving a gap at 0 in SUBMITTED
	_, err := svc.ApplyKanbanBatch(ctx, job.ID, []dtos.KanbanUpdate{
		{ApplicationID: first.ID, NewStatus: models.StatusScreening, NewOrder: 0},
	})
	require.NoError(t, err)

	app, err := svc.Create(ctx, job.ID, &dtos.ApplicationCreationRequest{
		CandidateName:  "d",
		CandidateEmail: "d@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, 3, app.KanbanOrder)

	var orders []int
	require.NoError(t, db.Model(&models.Application{}).
		Where("job_id = ? AND status = ?", job.ID, models.StatusSubmitted).
		Order("kanban_order").
		Pluck("kanban_order", &orders).Error)
	require.Equal(t, []int{1, 2, 3}, orders)
}

func TestValidateBatch(t *testing.T) {
	ok := dtos.KanbanUpdate{ApplicationID: 1, NewStatus: models.StatusOffer, NewOrder: 0}
	require.NoError(t, ValidateBatch([]dtos.KanbanUpdate{ok}))

	cases := map[string][]dtos.KanbanUpdate{
		"empty":          nil,
		"missing id":     {{NewStatus: models.StatusOffer}},
		"duplicate":      {ok, ok},
		"unknown status": {{ApplicationID: 1, NewStatus: "ARCHIVED"}},
		"blank status":   {{ApplicationID: 1}},
		"negative order": {{ApplicationID: 1, NewStatus: models.StatusOffer, NewOrder: -1}},
	}
	for name, updates := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, ValidateBatch(updates), ErrInvalidBatch)
		})
	}
}

func TestApplyKanbanBatchPersistsOrderAndStatus(t *testing.T) {
	db := newTestDB(t)
	job := seedJob(t, db)
	hub := NewNotificationHub(10)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewApplicationService(db, hub, m, discardLogger())
	ctx := context.Background()

	moved := seedApp(t, db, job.ID, models.StatusScreening, 0, "moved")
	i0 := seedApp(t, db, job.ID, models.StatusInterview, 0, "i0")
	i1 := seedApp(t, db, job.ID, models.StatusInterview, 1, "i1")

	res, err := svc.ApplyKanbanBatch(ctx, job.ID, []dtos.KanbanUpdate{
		{ApplicationID: i0.ID, NewStatus: models.StatusInterview, NewOrder: 0},
		{ApplicationID: moved.ID, NewStatus: models.StatusInterview, NewOrder: 1},
		{ApplicationID: i1.ID, NewStatus: models.StatusInterview, NewOrder: 2},
	})
	require.NoError(t, err)
	require.Equal(t, dtos.KanbanBatchResponse{Updated: 3, Changed: 1}, res)

	got, err := svc.Get(ctx, moved.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInterview, got.Status)
	require.Equal(t, 1, got.KanbanOrder)

	got, err = svc.Get(ctx, i1.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.KanbanOrder)

	events, err := svc.Events(ctx, moved.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, models.EventStatusChanged, events[0].EventType)

	replay, _, cancel := hub.Subscribe(0, 0)
	defer cancel()
	require.Len(t, replay, 1)
	payload, ok := replay[0].Payload.(dtos.StatusChangedPayload)
	require.True(t, ok)
	require.Equal(t, models.StatusScreening, payload.From)
	require.Equal(t, models.StatusInterview, payload.To)

	require.Equal(t, 1.0, testutil.ToFloat64(m.KanbanBatches.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("INTERVIEW")))
}

func TestApplyKanbanBatchIsAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	job := seedJob(t, db)
	other := seedJob(t, db)
	svc := NewApplicationService(db, nil, nil, discardLogger())
	ctx := context.Background()

	mine := seedApp(t, db, job.ID, models.StatusSubmitted, 0, "mine")
	foreign := seedApp(t, db, other.ID, models.StatusSubmitted, 0, "foreign")

	_, err := svc.ApplyKanbanBatch(ctx, job.ID, []dtos.KanbanUpdate{
		{ApplicationID: mine.ID, NewStatus: models.StatusHired, NewOrder: 0},
		{ApplicationID: foreign.ID, NewStatus: models.StatusHired, NewOrder: 1},
	})
	require.ErrorIs(t, err, ErrApplicationNotFound)

	got, err := svc.Get(ctx, mine.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusSubmitted, got.Status, "no partial write survives")

	_, err = svc.ApplyKanbanBatch(ctx, 999, []dtos.KanbanUpdate{
		{ApplicationID: mine.ID, NewStatus: models.StatusHired},
	})
	require.ErrorIs(t, err, ErrJobNotFound)
}

type fakeCompleter struct {
	answer string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestParseMatchResult(t *testing.T) {
	score, reason, err := ParseMatchResult("```json\n{\"score\": 140, \"reason\": \"strong\"}\n```")
	require.NoError(t, err)
	require.Equal(t, 100, score)
	require.Equal(t, "strong", reason)

	score, _, err = ParseMatchResult(`{"score": -3}`)
	require.NoError(t, err)
	require.Equal(t, 0, score)

	_, _, err = ParseMatchResult("I think 80")
	require.Error(t, err)
}

func TestMatchingServiceScoresApplication(t *testing.T) {
	db := newTestDB(t)
	job := seedJob(t, db)
	app := seedApp(t, db, job.ID, models.StatusSubmitted, 0, "Linus")
	llm := &fakeCompleter{answer: `{"score": 72, "reason": "good Go background"}`}
	hub := NewNotificationHub(4)
	svc := NewMatchingService(db, llm, hub, discardLogger())

	res, err := svc.Score(context.Background(), app.ID)
	require.NoError(t, err)
	require.Equal(t, 72, res.MatchingScore)
	require.Contains(t, llm.prompt, "Backend Engineer")
	require.Contains(t, llm.prompt, "Linus")

	var stored models.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	require.NotNil(t, stored.MatchingScore)
	require.Equal(t, 72, *stored.MatchingScore)
	require.Equal(t, models.StatusSubmitted, stored.Status)
	replay, _, cancel := hub.Subscribe(app.JobID, 0)
	defer cancel()
	require.Len(t, replay, 1)
	require.Equal(t, dtos.EventApplicationScored, replay[0].Event)
}

func TestMatchingServiceErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := NewMatchingService(db, nil, nil, discardLogger()).Score(ctx, 1)
	require.ErrorIs(t, err, ErrLLMUnavailable)

	svc := NewMatchingService(db, &fakeCompleter{err: errors.New("quota")}, nil, discardLogger())
	_, err = svc.Score(ctx, 1)
	require.ErrorIs(t, err, ErrApplicationNotFound)

	job := seedJob(t, db)
	app := seedApp(t, db, job.ID, models.StatusSubmitted, 0, "x")
	_, err = svc.Score(ctx, app.ID)
	require.ErrorContains(t, err, "quota")
}

func TestExtractJobDetails(t *testing.T) {
	llm := &fakeCompleter{answer: "```json\n{\"company_name\":\"Acme\"}\n```"}
	out, err := ExtractJobDetails(context.Background(), llm, "<html>Acme is hiring</html>")
	require.NoError(t, err)
	require.JSONEq(t, `{"company_name":"Acme"}`, out)
	require.Contains(t, llm.prompt, "Acme is hiring")

	_, err = ExtractJobDetails(context.Background(), nil, "x")
	require.ErrorIs(t, err, ErrLLMUnavailable)
}
