package integrations

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	"github.com/clinicase/clinicase/internal/domain/testcases"
	"github.com/clinicase/clinicase/internal/domain/trackers"
)

// Service pushes test cases into external test management trackers.
type Service struct {
	TestCases testcases.Repository
	Trackers  map[string]trackers.Tracker
	Logger    *zap.Logger
}

type Summary struct {
	Tracker string                  `json:"tracker"`
	Total   int                     `json:"total"`
	Created int                     `json:"created"`
	Failed  int                     `json:"failed"`
	Results []trackers.ExportResult `json:"results"`
}

// ExportTo creates one work item per test case in the named tracker.
// Items fail independently: one rejected test case never aborts the rest.
func (s *Service) ExportTo(ctx context.Context, name string, testCaseIDs []string, route trackers.Route) (*Summary, error) {
	tr, ok := s.Trackers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tracker %q", application.ErrInvalidInput, name)
	}
	if len(testCaseIDs) == 0 {
		return nil, fmt.Errorf("%w: testCaseIds are required", application.ErrInvalidInput)
	}
	if err := tr.ValidateRoute(route); err != nil {
		return nil, fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}

	sum := &Summary{Tracker: tr.Name(), Total: len(testCaseIDs)}
	for _, id := range testCaseIDs {
		res := trackers.ExportResult{TestCaseID: id}
		tc, err := s.TestCases.Get(ctx, testcases.TestCaseID(id))
		if err != nil {
			res.Error = fmt.Sprintf("test case not found: %v", err)
			sum.Failed++
			sum.Results = append(sum.Results, res)
			continue
		}
		item, err := tr.CreateWorkItem(ctx, tc, route)
		if err != nil {
			s.Logger.Warn("work item creation failed",
				zap.String("tracker", tr.Name()),
				zap.String("test_case_id", id),
				zap.Error(err))
			res.Error = err.Error()
			sum.Failed++
		} else {
			res.Success = true
			res.WorkItem = item
			sum.Created++
		}
		sum.Results = append(sum.Results, res)
	}

	s.Logger.Info("tracker export finished",
		zap.String("tracker", tr.Name()),
		zap.Int("created", sum.Created),
		zap.Int("failed", sum.Failed))
	return sum, nil
}
