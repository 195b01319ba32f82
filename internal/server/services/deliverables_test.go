package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/events"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
	"github.com/dmitrijs2005/milestonegate/internal/testkit"
)

func strPtr(s string) *string { return &s }

func TestUploadDeliverable_AnyStatus(t *testing.T) {
	for _, status := range []models.Status{models.StatusPending, models.StatusPaymentSubmitted, models.StatusApproved, models.StatusRejected} {
		f := newFixture(t, milestone("m1", status))
		file := models.Upload{Name: "Final Logo (v2).pdf", ContentType: "application/pdf", Data: testkit.SamplePDF}

		got, err := NewDeliverableService(f.deps).Upload(context.Background(), "m1", owner, file, strPtr("SAMPLE"))
		require.NoError(t, err, status)

		wantKey := fmt.Sprintf("f1/m1/%d-Final-Logo-v2-.pdf", testNow.UnixMilli())
		require.NotNil(t, got.Deliverable)
		assert.Equal(t, "Final Logo (v2).pdf", got.Deliverable.Name)
		assert.Equal(t, int64(len(testkit.SamplePDF)), got.Deliverable.Size)
		assert.Equal(t, wantKey, got.Deliverable.StorageKey)
		assert.Equal(t, "SAMPLE", *got.WatermarkText)
		assert.Equal(t, status, got.Status)

		row := f.repo.Row("m1")
		assert.Equal(t, wantKey, row.Deliverable.StorageKey)
		assert.Equal(t, "SAMPLE", *row.WatermarkText)
		_, ok := f.store.Object("deliverables", wantKey)
		assert.True(t, ok)
		assert.Equal(t, []string{events.DeliverableUploaded}, f.emitter.types())
	}
}

func TestUploadDeliverable_KeyIsScopedByFreelancer(t *testing.T) {
	f := newFixture(t, milestone("m1", models.StatusPending))
	got, err := NewDeliverableService(f.deps).Upload(context.Background(), "m1", owner, pngUpload("../../etc/passwd.png", 0), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Deliverable.StorageKey, "f1/m1/"))
	assert.NotContains(t, got.Deliverable.StorageKey, "..")
}

func TestUploadDeliverable_RecordFailureDeletesUpload(t *testing.T) {
	before := withDeliverable(milestone("m1", models.StatusPending), "old.png", "f1/m1/1-old.png")
	f := newFixture(t, before)
	f.store.Seed("deliverables", "f1/m1/1-old.png", []byte("old"), testNow)
	f.repo.ReplaceErr = errors.New("deadlock detected")

	_, err := NewDeliverableService(f.deps).Upload(context.Background(), "m1", owner, pngUpload("new.png", 0), nil)
	require.ErrorIs(t, err, common.ErrPersistence)

	assert.Equal(t, []string{"deliverables/f1/m1/1-old.png"}, f.store.Keys())
	assert.Equal(t, before.Deliverable, f.repo.Row("m1").Deliverable)
	assert.Empty(t, f.emitter.events)
}

func TestUploadDeliverable_ReplacesAndDeletesPrevious(t *testing.T) {
	wm := "DRAFT"
	m := withDeliverable(milestone("m1", models.StatusPending), "old.png", "f1/m1/1-old.png")
	m.WatermarkText = &wm
	f := newFixture(t, m)
	f.store.Seed("deliverables", "f1/m1/1-old.png", []byte("old"), testNow)

	got, err := NewDeliverableService(f.deps).Upload(context.Background(), "m1", owner, pngUpload("new.png", 0), nil)
	require.NoError(t, err)

	assert.Contains(t, f.store.Deletes, "deliverables/f1/m1/1-old.png")
	assert.Equal(t, []string{"deliverables/" + got.Deliverable.StorageKey}, f.store.Keys())
	require.NotNil(t, f.repo.Row("m1").WatermarkText)
	assert.Equal(t, "DRAFT", *f.repo.Row("m1").WatermarkText)
}

func TestUploadDeliverable_SupersededDeleteFailureOnlyLogs(t *testing.T) {
	m := withDeliverable(milestone("m1", models.StatusPending), "old.png", "f1/m1/1-old.png")
	f := newFixture(t, m)
	f.store.DeleteErr = errors.New("denied")

	_, err := NewDeliverableService(f.deps).Upload(context.Background(), "m1", owner, pngUpload("new.png", 0), nil)
	require.NoError(t, err)
	assert.True(t, f.log.Has("warn", "superseded object not deleted"))
}

func TestUploadDeliverable_OnlyTheOwner(t *testing.T) {
	for _, actor := range []models.Actor{client, stranger} {
		f := newFixture(t, milestone("m1", models.StatusPending))
		_, err := NewDeliverableService(f.deps).Upload(context.Background(), "m1", actor, pngUpload("x.png", 0), nil)
		require.ErrorIs(t, err, common.ErrAuthorization)
		assert.Empty(t, f.store.Puts)
		assert.Equal(t, []security.Kind{security.KindUnauthorizedAction}, f.monitor.kinds())
	}
}

func TestUploadDeliverable_Validation(t *testing.T) {
	f := newFixture(t, milestone("m1", models.StatusPending))
	svc := NewDeliverableService(f.deps)

	_, err := svc.Upload(context.Background(), "m1", owner, models.Upload{Name: "tool.zip", ContentType: "application/zip", Data: []byte("PK")}, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Upload(context.Background(), "m1", owner, pngUpload("big.png", int(common.MaxUploadSize)+1), nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Upload(context.Background(), "m1", owner, pngUpload("x.png", 0), strPtr(strings.Repeat("w", maxWatermarkLength+1)))
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, f.store.Puts)
}

func TestUpdateWatermark(t *testing.T) {
	f := newFixture(t, milestone("m1", models.StatusPaymentSubmitted))
	svc := NewDeliverableService(f.deps)
	ctx := context.Background()

	got, err := svc.UpdateWatermark(ctx, "m1", owner, strPtr("  CONFIDENTIAL  "))
	require.NoError(t, err)
	assert.Equal(t, "CONFIDENTIAL", *got.WatermarkText)
	assert.Equal(t, "CONFIDENTIAL", *f.repo.Row("m1").WatermarkText)
	assert.Equal(t, models.StatusPaymentSubmitted, f.repo.Row("m1").Status)

	got, err = svc.UpdateWatermark(ctx, "m1", owner, strPtr(" "))
	require.NoError(t, err)
	assert.Nil(t, got.WatermarkText)
	assert.Nil(t, f.repo.Row("m1").WatermarkText)

	_, err = svc.UpdateWatermark(ctx, "m1", client, strPtr("x"))
	assert.ErrorIs(t, err, common.ErrAuthorization)

	_, err = svc.UpdateWatermark(ctx, "m1", owner, strPtr(strings.Repeat("w", maxWatermarkLength+1)))
	assert.ErrorIs(t, err, common.ErrValidation)

	f.repo.WatermarkErr = errors.New("db down")
	_, err = svc.UpdateWatermark(ctx, "m1", owner, strPtr("x"))
	assert.ErrorIs(t, err, common.ErrPersistence)

	assert.Equal(t, []string{events.WatermarkUpdated, events.WatermarkUpdated}, f.emitter.types())
}
