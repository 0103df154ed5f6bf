package catalog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	externalmock "github.com/KirkDiggler/bestiary/internal/clients/external/mock"
	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
	"github.com/KirkDiggler/bestiary/internal/pkg/clock"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockClient   *externalmock.MockClient
	clock        *clock.Fixed
	orchestrator catalog.Service
	ctx          context.Context

	statusMu sync.Mutex
	statuses []catalog.Status
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClient = externalmock.NewMockClient(s.ctrl)
	s.clock = clock.NewFixed(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()
	s.statuses = nil

	var err error
	s.orchestrator, err = catalog.NewOrchestrator(&catalog.Config{
		Client: s.mockClient,
		Clock:  s.clock,
		OnStatusChange: func(status catalog.Status) {
			s.statusMu.Lock()
			defer s.statusMu.Unlock()
			s.statuses = append(s.statuses, status)
		},
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) refs(indexes ...string) []*monster.Ref {
	refs := make([]*monster.Ref, len(indexes))
	for i, index := range indexes {
		refs[i] = &monster.Ref{Index: index, Name: index, URL: "/api/2014/monsters/" + index}
	}
	return refs
}

func (s *OrchestratorTestSuite) expectDetail(index string) {
	s.mockClient.EXPECT().
		GetMonsterDetail(gomock.Any(), index).
		Return(&monster.Record{Index: index, Name: index}, nil)
}

func (s *OrchestratorTestSuite) expectDetailFailure(index string) {
	s.mockClient.EXPECT().
		GetMonsterDetail(gomock.Any(), index).
		Return(nil, errors.DetailUnavailable(index, fmt.Errorf("boom")))
}

func (s *OrchestratorTestSuite) resolvedKeys(output *catalog.ResolveAllDetailsOutput) []string {
	out := make([]string, len(output.Records))
	for i, r := range output.Records {
		out[i] = r.Index
	}
	return out
}

func (s *OrchestratorTestSuite) TestNewOrchestrator() {
	testCases := []struct {
		name    string
		config  *catalog.Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "success with valid config",
			config: &catalog.Config{Client: s.mockClient},
		},
		{
			name:    "error with nil config",
			config:  nil,
			wantErr: true,
			errMsg:  "config cannot be nil",
		},
		{
			name:    "error with nil client",
			config:  &catalog.Config{},
			wantErr: true,
			errMsg:  "Client: is required",
		},
		{
			name:    "error with negative concurrency",
			config:  &catalog.Config{Client: s.mockClient, MaxConcurrency: -1},
			wantErr: true,
			errMsg:  "MaxConcurrency",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			svc, err := catalog.NewOrchestrator(tc.config)

			if tc.wantErr {
				s.Error(err)
				s.Contains(err.Error(), tc.errMsg)
				s.Nil(svc)
			} else {
				s.NoError(err)
				s.NotNil(svc)
			}
		})
	}
}

func (s *OrchestratorTestSuite) TestLoadCatalog() {
	s.Run("returns refs in upstream order", func() {
		s.mockClient.EXPECT().ListMonsters(s.ctx).Return(s.refs("aboleth", "adult-red-dragon"), nil)

		output, err := s.orchestrator.LoadCatalog(s.ctx)

		s.Require().NoError(err)
		s.Require().Len(output.Refs, 2)
		s.Equal("aboleth", output.Refs[0].Index)
		s.Equal("adult-red-dragon", output.Refs[1].Index)
	})

	s.Run("upstream failure is catalog unavailable", func() {
		s.mockClient.EXPECT().ListMonsters(s.ctx).Return(nil, fmt.Errorf("connection refused"))

		output, err := s.orchestrator.LoadCatalog(s.ctx)

		s.Nil(output)
		s.True(errors.IsCatalogUnavailable(err))
		s.Contains(err.Error(), "connection refused")
	})

	s.Run("empty listing is catalog unavailable", func() {
		s.mockClient.EXPECT().ListMonsters(s.ctx).Return([]*monster.Ref{}, nil)

		_, err := s.orchestrator.LoadCatalog(s.ctx)

		s.True(errors.IsCatalogUnavailable(err))
	})
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_PartialFailure() {
	s.expectDetail("aboleth")
	s.expectDetailFailure("adult-red-dragon")

	output, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{
		Refs: s.refs("aboleth", "adult-red-dragon"),
	})

	s.Require().NoError(err)
	s.Equal([]string{"aboleth"}, s.resolvedKeys(output))
	s.Equal([]string{"adult-red-dragon"}, output.Failed)
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_ReturnsMMinusN() {
	indexes := make([]string, 0, 20)
	failures := 0
	for i := 0; i < 20; i++ {
		index := fmt.Sprintf("monster-%02d", i)
		indexes = append(indexes, index)
		if i%3 == 0 {
			s.expectDetailFailure(index)
			failures++
		} else {
			s.expectDetail(index)
		}
	}

	output, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: s.refs(indexes...)})

	s.Require().NoError(err)
	s.Len(output.Records, len(indexes)-failures)
	s.Len(output.Failed, failures)
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_AllFailIsStillSuccess() {
	s.expectDetailFailure("aboleth")
	s.expectDetailFailure("bat")

	output, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: s.refs("aboleth", "bat")})

	s.Require().NoError(err)
	s.Empty(output.Records)
	s.Len(output.Failed, 2)
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_IsRepeatable() {
	refs := s.refs("aboleth", "bat", "goblin")
	for round := 0; round < 2; round++ {
		for _, ref := range refs {
			s.expectDetail(ref.Index)
		}
	}

	first, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: refs})
	s.Require().NoError(err)
	second, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: refs})
	s.Require().NoError(err)

	s.ElementsMatch(s.resolvedKeys(first), s.resolvedKeys(second))
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_DeduplicatesRefs() {
	s.expectDetail("aboleth")
	s.expectDetail("bat")

	output, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{
		Refs: append(s.refs("aboleth", "bat"), s.refs("aboleth")...),
	})

	s.Require().NoError(err)
	s.ElementsMatch([]string{"aboleth", "bat"}, s.resolvedKeys(output))
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_DropsMismatchedRecords() {
	s.mockClient.EXPECT().
		GetMonsterDetail(gomock.Any(), "aboleth").
		Return(&monster.Record{Index: "not-aboleth"}, nil)
	s.expectDetail("bat")

	output, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: s.refs("aboleth", "bat")})

	s.Require().NoError(err)
	s.Equal([]string{"bat"}, s.resolvedKeys(output))
	s.Equal([]string{"aboleth"}, output.Failed)
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_EmptyInput() {
	_, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{})
	s.True(errors.IsCatalogUnavailable(err))

	_, err = s.orchestrator.ResolveAllDetails(s.ctx, nil)
	s.True(errors.IsCatalogUnavailable(err))

	_, err = s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: []*monster.Ref{nil}})
	s.True(errors.IsCatalogUnavailable(err))
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_FetchesConcurrently() {
	// Every fetch blocks until all three have started; a sequential
	// implementation would deadlock and trip the timeout.
	var started sync.WaitGroup
	started.Add(3)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	for _, index := range []string{"aboleth", "bat", "goblin"} {
		s.mockClient.EXPECT().
			GetMonsterDetail(gomock.Any(), index).
			DoAndReturn(func(ctx context.Context, key string) (*monster.Record, error) {
				started.Done()
				select {
				case <-release:
					return &monster.Record{Index: key}, nil
				case <-time.After(5 * time.Second):
					return nil, fmt.Errorf("fetches were not concurrent")
				}
			})
	}

	output, err := s.orchestrator.ResolveAllDetails(s.ctx, &catalog.ResolveAllDetailsInput{Refs: s.refs("aboleth", "bat", "goblin")})

	s.Require().NoError(err)
	s.Len(output.Records, 3)
}

func (s *OrchestratorTestSuite) TestResolveAllDetails_Canceled() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.mockClient.EXPECT().
		GetMonsterDetail(gomock.Any(), "aboleth").
		DoAndReturn(func(ctx context.Context, key string) (*monster.Record, error) {
			cancel()
			return nil, ctx.Err()
		})

	_, err := s.orchestrator.ResolveAllDetails(ctx, &catalog.ResolveAllDetailsInput{Refs: s.refs("aboleth")})

	s.Equal(errors.CodeCanceled, errors.GetCode(err))
}

func (s *OrchestratorTestSuite) TestRefresh_PublishesSnapshot() {
	_, err := s.orchestrator.Snapshot(s.ctx)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(catalog.StatusEmpty, s.orchestrator.Status(s.ctx).Status)

	s.mockClient.EXPECT().ListMonsters(gomock.Any()).Return(s.refs("aboleth", "adult-red-dragon"), nil)
	s.expectDetail("aboleth")
	s.expectDetailFailure("adult-red-dragon")

	output, err := s.orchestrator.Refresh(s.ctx)
	s.Require().NoError(err)

	snapshot, err := s.orchestrator.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Same(output.Snapshot, snapshot)
	s.Len(snapshot.Refs, 2)
	s.Len(snapshot.Records, 1)
	s.Equal(s.clock.Now(), snapshot.LoadedAt)

	_, ok := snapshot.Record("aboleth")
	s.True(ok)
	_, ok = snapshot.Record("adult-red-dragon")
	s.False(ok, "failed records are absent, not placeholders")

	pos, ok := snapshot.Position("adult-red-dragon")
	s.True(ok)
	s.Equal(1, pos)

	status := s.orchestrator.Status(s.ctx)
	s.Equal(catalog.StatusReady, status.Status)
	s.NoError(status.LastError)
	s.Equal([]catalog.Status{catalog.StatusLoading, catalog.StatusReady}, s.statuses)
}

func (s *OrchestratorTestSuite) TestRefresh_FailureKeepsPreviousSnapshot() {
	s.mockClient.EXPECT().ListMonsters(gomock.Any()).Return(s.refs("bat"), nil)
	s.expectDetail("bat")
	first, err := s.orchestrator.Refresh(s.ctx)
	s.Require().NoError(err)

	s.mockClient.EXPECT().ListMonsters(gomock.Any()).Return(nil, fmt.Errorf("timeout"))
	_, err = s.orchestrator.Refresh(s.ctx)
	s.True(errors.IsCatalogUnavailable(err))

	snapshot, err := s.orchestrator.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Same(first.Snapshot, snapshot)
	s.Equal(catalog.StatusFailed, s.orchestrator.Status(s.ctx).Status)
}

func (s *OrchestratorTestSuite) TestRefresh_FailureBeforeFirstLoad() {
	s.mockClient.EXPECT().ListMonsters(gomock.Any()).Return(nil, fmt.Errorf("no route to host"))

	_, err := s.orchestrator.Refresh(s.ctx)
	s.Require().Error(err)

	_, err = s.orchestrator.Snapshot(s.ctx)
	s.True(errors.IsCatalogUnavailable(err))

	status := s.orchestrator.Status(s.ctx)
	s.Equal(catalog.StatusFailed, status.Status)
	s.Error(status.LastError)
}

func (s *OrchestratorTestSuite) TestRefresh_CanceledKeepsReadyStatus() {
	s.mockClient.EXPECT().ListMonsters(gomock.Any()).Return(s.refs("bat"), nil)
	s.expectDetail("bat")
	first, err := s.orchestrator.Refresh(s.ctx)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	s.mockClient.EXPECT().ListMonsters(gomock.Any()).
		DoAndReturn(func(ctx context.Context) ([]*monster.Ref, error) {
			cancel()
			return nil, errors.CatalogUnavailable(ctx.Err())
		})

	_, err = s.orchestrator.Refresh(ctx)
	s.Require().Error(err)

	status := s.orchestrator.Status(s.ctx)
	s.Equal(catalog.StatusReady, status.Status)
	s.NoError(status.LastError)

	snapshot, err := s.orchestrator.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Same(first.Snapshot, snapshot)
}

func (s *OrchestratorTestSuite) TestRefresh_CanceledBeforeFirstLoadFails() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.mockClient.EXPECT().ListMonsters(gomock.Any()).Return(nil, errors.CatalogUnavailable(context.Canceled))

	_, err := s.orchestrator.Refresh(ctx)
	s.Require().Error(err)

	s.Equal(catalog.StatusFailed, s.orchestrator.Status(s.ctx).Status)
}
