package integrations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	domain "github.com/clinicase/clinicase/internal/domain/testcases"
	"github.com/clinicase/clinicase/internal/domain/trackers"
)

type fakeRepo struct {
	byID map[domain.TestCaseID]*domain.TestCase
}

func (f *fakeRepo) SaveBatch(ctx context.Context, tcs []*domain.TestCase) error { return nil }

func (f *fakeRepo) Get(ctx context.Context, id domain.TestCaseID) (*domain.TestCase, error) {
	if tc, ok := f.byID[id]; ok {
		return tc, nil
	}
	return nil, errors.New("no rows")
}

func (f *fakeRepo) GetMany(ctx context.Context, ids []domain.TestCaseID) ([]*domain.TestCase, error) {
	return nil, nil
}

func (f *fakeRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TestCase, error) {
	return nil, nil
}

type fakeTracker struct {
	name     string
	routeErr error
	failOn   map[string]error
	created  []string
}

func (f *fakeTracker) Name() string { return f.name }

func (f *fakeTracker) ValidateRoute(route trackers.Route) error { return f.routeErr }

func (f *fakeTracker) CreateWorkItem(ctx context.Context, tc *domain.TestCase, route trackers.Route) (*trackers.WorkItem, error) {
	if err, ok := f.failOn[string(tc.ID)]; ok {
		return nil, err
	}
	f.created = append(f.created, string(tc.ID))
	return &trackers.WorkItem{TestCaseID: string(tc.ID), RemoteID: "r-" + string(tc.ID)}, nil
}

func newService(repo *fakeRepo, tracker *fakeTracker) *Service {
	return &Service{
		TestCases: repo,
		Trackers:  map[string]trackers.Tracker{tracker.name: tracker},
		Logger:    zap.NewNop(),
	}
}

func TestExportToUnknownTracker(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeTracker{name: "jira"})
	_, err := svc.ExportTo(context.Background(), "testrail", []string{"tc_1"}, trackers.Route{})
	assert.ErrorIs(t, err, application.ErrInvalidInput)
}

func TestExportToInvalidRoute(t *testing.T) {
	tracker := &fakeTracker{name: "jira", routeErr: errors.New("projectKey is required")}
	svc := newService(&fakeRepo{}, tracker)
	_, err := svc.ExportTo(context.Background(), "jira", []string{"tc_1"}, trackers.Route{})
	assert.ErrorIs(t, err, application.ErrInvalidInput)
}

func TestExportToEmptyIDs(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeTracker{name: "jira"})
	_, err := svc.ExportTo(context.Background(), "jira", nil, trackers.Route{ProjectKey: "MED"})
	assert.ErrorIs(t, err, application.ErrInvalidInput)
}

func TestExportToItemsFailIndependently(t *testing.T) {
	repo := &fakeRepo{byID: map[domain.TestCaseID]*domain.TestCase{
		"tc_1": {ID: "tc_1", Title: "first"},
		"tc_2": {ID: "tc_2", Title: "second"},
		"tc_3": {ID: "tc_3", Title: "third"},
	}}
	tracker := &fakeTracker{
		name:   "polarion",
		failOn: map[string]error{"tc_2": errors.New("remote 500")},
	}
	svc := newService(repo, tracker)

	sum, err := svc.ExportTo(context.Background(), "polarion",
		[]string{"tc_1", "tc_2", "tc_3", "tc_missing"}, trackers.Route{ProjectID: "P", SpaceID: "S"})
	require.NoError(t, err)

	assert.Equal(t, "polarion", sum.Tracker)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Created)
	assert.Equal(t, 2, sum.Failed)
	require.Len(t, sum.Results, 4)

	assert.True(t, sum.Results[0].Success)
	assert.Equal(t, "r-tc_1", sum.Results[0].WorkItem.RemoteID)

	assert.False(t, sum.Results[1].Success)
	assert.Contains(t, sum.Results[1].Error, "remote 500")
	assert.Nil(t, sum.Results[1].WorkItem)

	assert.True(t, sum.Results[2].Success)

	assert.False(t, sum.Results[3].Success)
	assert.Contains(t, sum.Results[3].Error, "not found")

	// The failed item never reached the tracker
	assert.Equal(t, []string{"tc_1", "tc_3"}, tracker.created)
}
