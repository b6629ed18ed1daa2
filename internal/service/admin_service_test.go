package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type adminFixture struct {
	svc      *AdminService
	settings *fakeSettingsRepo
	activity *recordingActivityRepo
}

type recordingActivityRepo struct {
	entries []domain.ActivityLog
}

func (r *recordingActivityRepo) Create(_ context.Context, entry *domain.ActivityLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingActivityRepo) ListRecent(_ context.Context, _ int) ([]domain.ActivityLog, error) {
	return r.entries, nil
}

func newAdminFixture() *adminFixture {
	settings := &fakeSettingsRepo{values: map[string]string{
		domain.SettingSlaMode:          "business_hours",
		domain.SettingTimezone:         "UTC",
		domain.SettingWorkingDays:      "Mon,Tue,Wed,Thu,Fri",
		domain.SettingWorkingHourStart: "09:00",
		domain.SettingWorkingHourEnd:   "17:00",
	}}
	activity := &recordingActivityRepo{}
	svc := NewAdminService(AdminDependencies{
		CategoryRepo: newFakeCategoryRepo(),
		PriorityRepo: newFakePriorityRepo(
			domain.Priority{ID: "pri-high", Name: "High"},
		),
		SlaTargetRepo: &fakeSlaTargetRepo{},
		SettingsRepo:  settings,
		StaffRepo:     newFakeStaffRepo(),
		ActivityRepo:  activity,
		Logger:        zap.NewNop(),
		BcryptCost:    4,
	})
	return &adminFixture{svc: svc, settings: settings, activity: activity}
}

func TestUpdateSettingsRejectsEmptyWorkingDaysInBusinessMode(t *testing.T) {
	fx := newAdminFixture()

	err := fx.svc.UpdateSettings(context.Background(), "admin-1", map[string]string{
		domain.SettingWorkingDays: "Frob,Grum",
	})
	require.Error(t, err)
	// nothing persisted
	assert.Equal(t, "Mon,Tue,Wed,Thu,Fri", fx.settings.values[domain.SettingWorkingDays])
}

func TestUpdateSettingsRejectsInvertedWindow(t *testing.T) {
	fx := newAdminFixture()

	err := fx.svc.UpdateSettings(context.Background(), "admin-1", map[string]string{
		domain.SettingWorkingHourStart: "18:00",
		domain.SettingWorkingHourEnd:   "09:00",
	})
	require.Error(t, err)
}

func TestUpdateSettingsPersistsValidCalendar(t *testing.T) {
	fx := newAdminFixture()

	err := fx.svc.UpdateSettings(context.Background(), "admin-1", map[string]string{
		domain.SettingTimezone:    "Europe/Berlin",
		domain.SettingWorkingDays: "Mon,Tue,Wed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", fx.settings.values[domain.SettingTimezone])
	assert.Equal(t, "Mon,Tue,Wed", fx.settings.values[domain.SettingWorkingDays])
	assert.NotEmpty(t, fx.activity.entries)
}

func TestUpsertSlaTargetValidation(t *testing.T) {
	fx := newAdminFixture()
	ctx := context.Background()

	_, err := fx.svc.UpsertSlaTarget(ctx, "admin-1", "pri-high", intPtr(-1), nil)
	require.Error(t, err)

	_, err = fx.svc.UpsertSlaTarget(ctx, "admin-1", "pri-missing", intPtr(4), nil)
	require.Error(t, err)

	target, err := fx.svc.UpsertSlaTarget(ctx, "admin-1", "pri-high", intPtr(4), intPtr(24))
	require.NoError(t, err)
	assert.Equal(t, 4, *target.ResponseHours)
	assert.Equal(t, 24, *target.ResolutionHours)

	// clearing both tracks is allowed
	cleared, err := fx.svc.UpsertSlaTarget(ctx, "admin-1", "pri-high", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.ResponseHours)
	assert.Nil(t, cleared.ResolutionHours)
}

func TestCreateStaffRejectsUnknownRole(t *testing.T) {
	fx := newAdminFixture()

	_, err := fx.svc.CreateStaff(context.Background(), "admin-1", StaffInput{
		Name: "Sam", Email: "sam@example.com", Password: "secret-pass", Role: "SUPERVISOR",
	})
	require.Error(t, err)
}

func TestCreateStaffAndDeactivate(t *testing.T) {
	fx := newAdminFixture()
	ctx := context.Background()

	staff, err := fx.svc.CreateStaff(ctx, "admin-1", StaffInput{
		Name: "Sam", Email: "sam@example.com", Password: "secret-pass", Role: domain.StaffRoleAgent,
	})
	require.NoError(t, err)
	assert.True(t, staff.Active)
	assert.NotEqual(t, "secret", staff.PasswordHash)

	deactivated, err := fx.svc.SetStaffActive(ctx, "admin-1", staff.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	active := true
	listed, err := fx.svc.ListStaff(ctx, repository.StaffFilter{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, listed)
}
