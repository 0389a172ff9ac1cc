package employee

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTracker struct{ ids []string }

func (r *recordingTracker) Track(ids ...string) { r.ids = append(r.ids, ids...) }

type fakeUserSource struct {
	users []employee.DeviceUser
	err   error
}

func (f fakeUserSource) SearchUsers(ctx context.Context) ([]employee.DeviceUser, error) {
	return f.users, f.err
}

func seedRepo() *memory.EmployeeRepository {
	return memory.NewEmployeeRepository(
		employee.Employee{EmployeeID: "E02", Name: "Luis", Active: true, SchedulePattern: schedule.PatternExtended},
		employee.Employee{EmployeeID: "E01", Name: "Ana", Active: true, SchedulePattern: schedule.PatternNormal},
		employee.Employee{EmployeeID: "E03", Name: "Former", Active: false},
	)
}

func TestDirectory_LookupAndActive(t *testing.T) {
	tracker := &recordingTracker{}
	d := NewDirectoryService(seedRepo(), nil, tracker)
	ctx := context.Background()

	emp, err := d.Lookup(ctx, "E02")
	require.NoError(t, err)
	assert.Equal(t, "Luis", emp.Name)

	_, err = d.Lookup(ctx, "E99")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := d.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "E01", active[0].EmployeeID)
	assert.Equal(t, "E02", active[1].EmployeeID)

	assert.ElementsMatch(t, []string{"E01", "E02", "E03"}, tracker.ids)
}

func TestDirectory_LookupMissFallsBackToStorage(t *testing.T) {
	repo := seedRepo()
	d := NewDirectoryService(repo, nil, nil)
	ctx := context.Background()

	_, err := d.All(ctx)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, employee.Employee{EmployeeID: "E04", Name: "New", Active: true})
	require.NoError(t, err)

	emp, err := d.Lookup(ctx, "E04")
	require.NoError(t, err)
	assert.Equal(t, "New", emp.Name)

	all, err := d.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDirectory_InvalidateRepulls(t *testing.T) {
	repo := seedRepo()
	d := NewDirectoryService(repo, nil, nil)
	ctx := context.Background()

	_, err := d.Refresh(ctx)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, employee.Employee{EmployeeID: "E01", Name: "Ana Maria"})
	require.NoError(t, err)

	emp, _ := d.Lookup(ctx, "E01")
	assert.Equal(t, "Ana", emp.Name)

	d.Invalidate()
	emp, _ = d.Lookup(ctx, "E01")
	assert.Equal(t, "Ana Maria", emp.Name)
}

func TestDirectory_SyncFromDevice(t *testing.T) {
	source := fakeUserSource{users: []employee.DeviceUser{
		{EmployeeID: "E01", Name: "Ana L."},
		{EmployeeID: "E10", Name: "Nuevo"},
		{EmployeeID: "", Name: "no id"},
	}}
	d := NewDirectoryService(seedRepo(), source, nil)
	ctx := context.Background()

	result, err := d.SyncFromDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, employee.SyncResult{Fetched: 3, Created: 1, Updated: 1}, result)

	created, err := d.Lookup(ctx, "E10")
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.True(t, created.SyncedToDevice)
	assert.Equal(t, schedule.PatternNormal, created.SchedulePattern)

	updated, _ := d.Lookup(ctx, "E01")
	assert.Equal(t, "Ana L.", updated.Name)
	assert.Equal(t, schedule.PatternNormal, updated.SchedulePattern)
}

func TestDirectory_SyncErrors(t *testing.T) {
	d := NewDirectoryService(seedRepo(), nil, nil)
	_, err := d.SyncFromDevice(context.Background())
	assert.ErrorIs(t, err, employee.ErrNoUserSource)

	boom := errors.New("device offline")
	d = NewDirectoryService(seedRepo(), fakeUserSource{err: boom}, nil)
	_, err = d.SyncFromDevice(context.Background())
	assert.ErrorIs(t, err, boom)
}
