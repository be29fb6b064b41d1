package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

// blockingRunner lets the test decide when each query completes, so
// out-of-order responses can be forced deterministically.
type blockingRunner struct {
	mu         sync.Mutex
	inputs     []query.Input
	gates      []chan struct{}
	results    []*repositories.DiscoveryResult
	errs       []error
	registered chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, in query.Input) (*repositories.DiscoveryResult, error) {
	r.mu.Lock()
	idx := len(r.inputs)
	r.inputs = append(r.inputs, in)
	gate := r.gates[idx]
	r.mu.Unlock()
	r.registered <- struct{}{}

	<-gate
	return r.results[idx], r.errs[idx]
}

func resultWith(ids ...string) *repositories.DiscoveryResult {
	providers := make([]*entities.Provider, len(ids))
	for i, id := range ids {
		providers[i] = &entities.Provider{ID: id}
	}
	return &repositories.DiscoveryResult{Providers: providers, Total: len(providers)}
}

// immediateRunner completes every query synchronously.
type immediateRunner struct {
	mu     sync.Mutex
	inputs []query.Input
	result *repositories.DiscoveryResult
	err    error
}

func (r *immediateRunner) Run(ctx context.Context, in query.Input) (*repositories.DiscoveryResult, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, in)
	r.mu.Unlock()
	return r.result, r.err
}

func TestTypingDoesNotIssueQueries(t *testing.T) {
	runner := &immediateRunner{result: resultWith("p1")}
	c := NewController(runner, nil, query.Input{})

	c.TypeJob("plum")
	c.TypeJob("plumber")
	c.TypeCity("tor")
	c.Wait()

	assert.Empty(t, runner.inputs)
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

func TestCommitPromotesDraftsAndQueries(t *testing.T) {
	runner := &immediateRunner{result: resultWith("p1", "p2")}
	c := NewController(runner, nil, query.Input{})

	c.TypeJob("plumber")
	c.TypeCity("Toronto")
	c.Commit(context.Background())
	c.Wait()

	require.Len(t, runner.inputs, 1)
	assert.Equal(t, "plumber", runner.inputs[0].Category)
	assert.Equal(t, "Toronto", runner.inputs[0].City)
	assert.Equal(t, 1, runner.inputs[0].Page)

	snap := c.Snapshot()
	assert.Equal(t, StateResults, snap.State)
	assert.Equal(t, 2, snap.Result.Total)
}

func TestFilterChangeResetsToFirstPage(t *testing.T) {
	runner := &immediateRunner{result: resultWith("p1")}
	c := NewController(runner, nil, query.Input{Page: 4})

	c.SetVerifiedOnly(context.Background(), true)
	c.Wait()

	require.Len(t, runner.inputs, 1)
	assert.True(t, runner.inputs[0].VerifiedOnly)
	assert.Equal(t, 1, runner.inputs[0].Page)
}

func TestStaleResponseIsDropped(t *testing.T) {
	runner := &blockingRunner{
		gates:      []chan struct{}{make(chan struct{}), make(chan struct{})},
		results:    []*repositories.DiscoveryResult{resultWith("stale"), resultWith("fresh")},
		errs:       []error{nil, nil},
		registered: make(chan struct{}, 2),
	}
	c := NewController(runner, nil, query.Input{})

	c.SetSort(context.Background(), query.SortRating)
	<-runner.registered
	c.SetMinRating(context.Background(), 4)
	<-runner.registered

	// Complete the second query first, then release the first.
	close(runner.gates[1])
	close(runner.gates[0])
	c.Wait()

	snap := c.Snapshot()
	require.Equal(t, StateResults, snap.State)
	require.Len(t, snap.Result.Providers, 1)
	assert.Equal(t, "fresh", snap.Result.Providers[0].ID,
		"the slower earlier response must not overwrite the newer one")
}

func TestBusyFilterSuppressesSecondToggle(t *testing.T) {
	runner := &blockingRunner{
		gates:      []chan struct{}{make(chan struct{})},
		results:    []*repositories.DiscoveryResult{resultWith("p1")},
		errs:       []error{nil},
		registered: make(chan struct{}, 1),
	}
	c := NewController(runner, nil, query.Input{})

	c.SetVerifiedOnly(context.Background(), true)
	<-runner.registered

	assert.True(t, c.FilterBusy(FilterVerified))
	assert.True(t, c.Snapshot().Busy[FilterVerified])

	// The control is disabled: the toggle is dropped, no query issued.
	c.SetVerifiedOnly(context.Background(), false)

	close(runner.gates[0])
	c.Wait()

	require.Len(t, runner.inputs, 1)
	snap := c.Snapshot()
	assert.True(t, snap.Input.VerifiedOnly)
	assert.False(t, c.FilterBusy(FilterVerified))
	assert.Empty(t, snap.Busy)
}

func TestBusyFilterDoesNotBlockOtherFilters(t *testing.T) {
	runner := &blockingRunner{
		gates:      []chan struct{}{make(chan struct{}), make(chan struct{})},
		results:    []*repositories.DiscoveryResult{resultWith("p1"), resultWith("p2")},
		errs:       []error{nil, nil},
		registered: make(chan struct{}, 2),
	}
	c := NewController(runner, nil, query.Input{})

	c.SetVerifiedOnly(context.Background(), true)
	<-runner.registered
	c.SetMinRating(context.Background(), 4)
	<-runner.registered

	assert.True(t, c.FilterBusy(FilterVerified))
	assert.True(t, c.FilterBusy(FilterMinRating))

	close(runner.gates[0])
	close(runner.gates[1])
	c.Wait()

	// Both filters rode the latest query; its resolution clears both.
	require.Len(t, runner.inputs, 2)
	assert.True(t, runner.inputs[1].VerifiedOnly)
	assert.Equal(t, float64(4), runner.inputs[1].MinRating)
	assert.False(t, c.FilterBusy(FilterVerified))
	assert.False(t, c.FilterBusy(FilterMinRating))
}

func TestSetExpertOnlyIssuesQuery(t *testing.T) {
	runner := &immediateRunner{result: resultWith("p1")}
	c := NewController(runner, nil, query.Input{Page: 2})

	c.SetExpertOnly(context.Background(), true)
	c.Wait()

	require.Len(t, runner.inputs, 1)
	assert.True(t, runner.inputs[0].ExpertOnly)
	assert.Equal(t, 1, runner.inputs[0].Page)
}

func TestQueryFailureEntersErrorState(t *testing.T) {
	runner := &immediateRunner{err: apperrors.NewUnavailableError("store down", nil)}
	c := NewController(runner, nil, query.Input{})

	c.Refresh(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Error(t, snap.Err)
	assert.Nil(t, snap.Result)
}

func TestRecoveryAfterError(t *testing.T) {
	runner := &immediateRunner{err: apperrors.NewUnavailableError("store down", nil)}
	c := NewController(runner, nil, query.Input{})

	c.Refresh(context.Background())
	c.Wait()
	require.Equal(t, StateError, c.Snapshot().State)

	runner.mu.Lock()
	runner.err = nil
	runner.result = resultWith("p1")
	runner.mu.Unlock()

	c.Refresh(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, StateResults, snap.State)
	assert.NoError(t, snap.Err)
}

func TestTopMatchesSkipsRequestedProviders(t *testing.T) {
	runner := &immediateRunner{result: resultWith("p1", "p2", "p3", "p4")}
	c := NewController(runner, nil, query.Input{})

	c.Refresh(context.Background())
	c.Wait()

	c.MarkRequested("p2")

	matches := c.TopMatches(2)
	require.Len(t, matches, 2)
	assert.Equal(t, "p1", matches[0].ID)
	assert.Equal(t, "p3", matches[1].ID)
	assert.True(t, c.AlreadyRequested("p2"))
	assert.False(t, c.AlreadyRequested("p1"))
}

func TestTopMatchesWithoutResults(t *testing.T) {
	c := NewController(&immediateRunner{}, nil, query.Input{})
	assert.Empty(t, c.TopMatches(3))
}

type fixedSuggester struct {
	got string
}

func (s *fixedSuggester) Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error) {
	s.got = q
	return []entities.Suggestion{{ID: "p1", Name: "Volt Electric"}}, nil
}

func TestSuggestJobUsesDraft(t *testing.T) {
	suggester := &fixedSuggester{}
	c := NewController(&immediateRunner{}, suggester, query.Input{})

	c.TypeJob("elec")
	suggestions, err := c.SuggestJob(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "elec", suggester.got)
}
