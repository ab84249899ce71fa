package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scamwall/scamwall-backend/internal/dto"
	"github.com/scamwall/scamwall-backend/internal/entity"
	"github.com/scamwall/scamwall-backend/internal/feed"
	"github.com/scamwall/scamwall-backend/internal/models"
)

func newReportService(t *testing.T, db *gorm.DB, store *fakeStore) *ReportService {
	t.Helper()
	return NewReportService(db, NewCorrelationService(db), store, nil)
}

func validSubmission() *dto.SubmitReportRequest {
	return &dto.SubmitReportRequest{
		Category:    models.CategoryFraud,
		Title:       "Fake invoice",
		Description: "Received an invoice for services never ordered.",
		Anonymous:   true,
	}
}

func TestSubmitRequiresIdentityOrOptIn(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	req := validSubmission()
	req.Anonymous = false

	_, _, err := svc.Submit(context.Background(), req, nil, nil)
	assert.ErrorIs(t, err, ErrAuthorizationRequired)

	var count int64
	db.Model(&models.Report{}).Count(&count)
	assert.Zero(t, count, "no report row may exist after a rejected submission")
}

func TestSubmitAnonymous(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	report, warning, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, warning)

	assert.Nil(t, report.SubmitterID)
	assert.Equal(t, models.StatusPending, report.Status)
	assert.NotEmpty(t, report.ReferenceID)
}

func TestSubmitAuthenticated(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	user := createUser(t, db)

	req := validSubmission()
	req.Anonymous = false

	report, _, err := svc.Submit(context.Background(), req, &user.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, report.SubmitterID)
	assert.Equal(t, user.ID, *report.SubmitterID)
}

func TestSubmitValidationNamesMissingFields(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	req := &dto.SubmitReportRequest{Category: "ransom", Title: "  ", Description: ""}
	_, _, err := svc.Submit(context.Background(), req, nil, nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"title", "description", "category"}, vErr.Fields)

	var count int64
	db.Model(&models.Report{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitReferenceIDsAreUnique(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		report, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
		require.NoError(t, err)
		assert.False(t, seen[report.ReferenceID], "duplicate reference id %s", report.ReferenceID)
		seen[report.ReferenceID] = true
	}
}

func TestSubmitRetriesOnReferenceIDCollision(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	// First two generations collide, the third is fresh.
	calls := 0
	svc.newReferenceID = func(now time.Time) string {
		calls++
		if calls <= 2 {
			return "CR-2026-SAMECODE"
		}
		return "CR-2026-FRESH" + string(rune('A'+calls))
	}

	first, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "CR-2026-SAMECODE", first.ReferenceID)

	second, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ReferenceID, second.ReferenceID)
}

func TestSubmitFailsWhenCollisionsExhaustRetries(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	svc.newReferenceID = func(time.Time) string { return "CR-2026-STUCK" }

	_, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)

	_, _, err = svc.Submit(context.Background(), validSubmission(), nil, nil)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestSubmitIndexesEntities(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	req := validSubmission()
	req.Entities = []entity.Input{
		{Type: "email", Value: " scam@example.com "},
		{Type: "phone", Value: "+15550001111"},
		{Type: "website", Value: ""}, // dropped silently
	}

	report, warning, err := svc.Submit(context.Background(), req, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, warning)

	var rows []models.LookupEntity
	require.NoError(t, db.Where("report_id = ?", report.ID).Find(&rows).Error)
	require.Len(t, rows, 2)

	values := []string{rows[0].EntityValue, rows[1].EntityValue}
	assert.ElementsMatch(t, []string{"scam@example.com", "+15550001111"}, values)
}

func TestSubmitWithEvidence(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	svc := newReportService(t, db, store)

	file := &dto.EvidenceFile{
		Name:        "invoice.pdf",
		Size:        1024,
		ContentType: "application/pdf",
		Data:        []byte("fake pdf"),
	}

	report, warning, err := svc.Submit(context.Background(), validSubmission(), nil, file)
	require.NoError(t, err)
	assert.Empty(t, warning)

	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)
	assert.Equal(t, "https://files.test/evidence/"+report.ID.String()+".pdf", stored.EvidenceURL)
}

func TestSubmitToleratesUploadFailure(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	store.fail = true
	svc := newReportService(t, db, store)

	file := &dto.EvidenceFile{Name: "shot.png", Size: 10, ContentType: "image/png", Data: []byte("x")}

	report, warning, err := svc.Submit(context.Background(), validSubmission(), nil, file)
	require.NoError(t, err, "upload failure must not fail the submission")
	assert.NotEmpty(t, warning)

	var stored models.Report
	require.NoError(t, db.First(&stored, "id = ?", report.ID).Error)
	assert.Empty(t, stored.EvidenceURL)
}

func TestSubmitRejectsOversizeEvidenceBeforeUpload(t *testing.T) {
	db := testDB(t)
	store := newFakeStore()
	svc := newReportService(t, db, store)

	file := &dto.EvidenceFile{Name: "huge.mov", Size: 11 * 1024 * 1024}

	_, _, err := svc.Submit(context.Background(), validSubmission(), nil, file)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, store.puts, "oversize files must never reach storage")
}

func TestSubmitDeepfakeCreatesMeta(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	req := validSubmission()
	req.Category = models.CategoryDeepfake
	file := &dto.EvidenceFile{
		Name:        "clip.mp4",
		Size:        2048,
		ContentType: "video/mp4",
		Data:        []byte("fake video"),
	}

	report, _, err := svc.Submit(context.Background(), req, nil, file)
	require.NoError(t, err)

	var meta models.DeepfakeMeta
	require.NoError(t, db.First(&meta, "report_id = ?", report.ID).Error)
	assert.Equal(t, "clip.mp4", meta.FileName)
	assert.Equal(t, int64(2048), meta.FileSize)
	assert.Equal(t, "video/mp4", meta.FileType)
	assert.NotEmpty(t, meta.FileURL)
}

func TestSubmitNonDeepfakeHasNoMeta(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	file := &dto.EvidenceFile{Name: "shot.png", Size: 10, ContentType: "image/png", Data: []byte("x")}
	report, _, err := svc.Submit(context.Background(), validSubmission(), nil, file)
	require.NoError(t, err)

	var count int64
	db.Model(&models.DeepfakeMeta{}).Where("report_id = ?", report.ID).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitPublishesToFeed(t *testing.T) {
	db := testDB(t)
	broker := feed.NewBroker()
	go broker.Run()
	t.Cleanup(broker.Close)

	svc := NewReportService(db, NewCorrelationService(db), newFakeStore(), broker)

	events, cancel, err := broker.Subscribe(feed.CategoryFilter(models.CategoryFraud))
	require.NoError(t, err)
	defer cancel()

	report, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)

	select {
	case got := <-events:
		assert.Equal(t, report.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("report was not announced on the feed")
	}
}

func TestRecentFiltersAndOrders(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	categories := []string{
		models.CategoryFraud, models.CategoryPhishing,
		models.CategoryFraud, models.CategoryHarassment,
	}
	for i, cat := range categories {
		req := validSubmission()
		req.Category = cat
		report, _, err := svc.Submit(context.Background(), req, nil, nil)
		require.NoError(t, err)
		// Spread creation times so ordering is deterministic.
		db.Model(report).Update("created_at", time.Now().Add(time.Duration(i)*time.Second))
	}

	reports, err := svc.Recent(models.CategoryFraud, 50)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].CreatedAt.After(reports[1].CreatedAt))

	all, err := svc.Recent("", 50)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetByReference(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())

	report, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)

	found, err := svc.GetByReference(report.ReferenceID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, found.ID)

	_, err = svc.GetByReference("CR-2026-NOPENOPE")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestUpdateIsOwnerOnly(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	owner := createUser(t, db)
	other := createUser(t, db)

	req := validSubmission()
	req.Anonymous = false
	report, _, err := svc.Submit(context.Background(), req, &owner.ID, nil)
	require.NoError(t, err)

	title := "Corrected title"
	_, err = svc.Update(other.ID, report.ID, &dto.UpdateReportRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)

	status := models.StatusResolved
	updated, err := svc.Update(owner.ID, report.ID, &dto.UpdateReportRequest{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Corrected title", updated.Title)
	assert.Equal(t, models.StatusResolved, updated.Status)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	owner := createUser(t, db)

	req := validSubmission()
	req.Anonymous = false
	report, _, err := svc.Submit(context.Background(), req, &owner.ID, nil)
	require.NoError(t, err)

	bad := "escalated"
	_, err = svc.Update(owner.ID, report.ID, &dto.UpdateReportRequest{Status: &bad})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestUpdateReplacesEntities(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	owner := createUser(t, db)

	req := validSubmission()
	req.Anonymous = false
	req.Entities = []entity.Input{{Type: "email", Value: "old@example.com"}}
	report, _, err := svc.Submit(context.Background(), req, &owner.ID, nil)
	require.NoError(t, err)

	ents := []entity.Input{
		{Type: "phone", Value: "+15559998888"},
		{Type: "website", Value: "new-scam.example"},
	}
	updated, err := svc.Update(owner.ID, report.ID, &dto.UpdateReportRequest{Entities: &ents})
	require.NoError(t, err)

	require.Len(t, updated.Entities, 2)
	for _, e := range updated.Entities {
		assert.NotEqual(t, "old@example.com", e.EntityValue)
	}
}

func TestAnonymousReportsAreUnmanageable(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	user := createUser(t, db)

	report, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)

	title := "takeover"
	_, err = svc.Update(user.ID, report.ID, &dto.UpdateReportRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.ErrorIs(t, svc.Delete(user.ID, report.ID), ErrNotOwner)
}

func TestDeleteCascades(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	owner := createUser(t, db)

	req := validSubmission()
	req.Anonymous = false
	req.Category = models.CategoryDeepfake
	req.Entities = []entity.Input{{Type: "email", Value: "scam@example.com"}}
	file := &dto.EvidenceFile{Name: "clip.mp4", Size: 1, ContentType: "video/mp4", Data: []byte("v")}

	report, _, err := svc.Submit(context.Background(), req, &owner.ID, file)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(owner.ID, report.ID))

	var entities, meta, reports int64
	db.Model(&models.LookupEntity{}).Where("report_id = ?", report.ID).Count(&entities)
	db.Model(&models.DeepfakeMeta{}).Where("report_id = ?", report.ID).Count(&meta)
	db.Model(&models.Report{}).Where("id = ?", report.ID).Count(&reports)
	assert.Zero(t, entities)
	assert.Zero(t, meta)
	assert.Zero(t, reports)
}

func TestListMine(t *testing.T) {
	db := testDB(t)
	svc := newReportService(t, db, newFakeStore())
	owner := createUser(t, db)

	req := validSubmission()
	req.Anonymous = false
	for i := 0; i < 3; i++ {
		_, _, err := svc.Submit(context.Background(), req, &owner.ID, nil)
		require.NoError(t, err)
	}
	// One anonymous report that must not show up.
	_, _, err := svc.Submit(context.Background(), validSubmission(), nil, nil)
	require.NoError(t, err)

	reports, total, err := svc.ListMine(owner.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, reports, 3)
}
