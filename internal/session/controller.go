// Package session coordinates one requester's interactive search: it holds
// the current filter state, issues discovery queries as filters change, and
// guarantees that only the most recently issued query can populate results.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
)

// State is the controller's search lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateError     State = "error"
)

// Filter keys reported busy while the query they triggered is in flight.
// A busy filter's control is disabled: further changes to it are dropped
// until the query resolves.
const (
	FilterSort        = "sort"
	FilterMaxDistance = "max_distance"
	FilterMinRating   = "min_rating"
	FilterVerified    = "verified"
	FilterExpert      = "expert"
	FilterInsured     = "insured"
	FilterServices    = "services"
)

// QueryRunner executes a discovery query.
type QueryRunner interface {
	Run(ctx context.Context, in query.Input) (*repositories.DiscoveryResult, error)
}

// Suggester serves typeahead suggestions for the free-text drafts.
type Suggester interface {
	Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error)
}

// Snapshot is an immutable view of the controller at one instant.
type Snapshot struct {
	State  State
	Input  query.Input
	Result *repositories.DiscoveryResult
	Err    error

	// Busy holds the filter keys whose triggered query is still in
	// flight, so their controls can be disabled.
	Busy map[string]bool
}

// Controller is safe for concurrent use. Text typed into the job and city
// fields stays in drafts until committed; structured filter changes issue
// a query immediately. Responses arriving out of order are dropped unless
// they belong to the latest issued query.
type Controller struct {
	runner    QueryRunner
	suggester Suggester

	mu        sync.Mutex
	input     query.Input
	draftJob  string
	draftCity string

	seq uint64 // latest issued query

	// busy maps a filter key to the query sequence it triggered. Entries
	// clear when the latest query resolves.
	busy map[string]uint64

	state  State
	result *repositories.DiscoveryResult
	err    error

	requested map[string]struct{}

	wg sync.WaitGroup
}

// NewController creates a controller with a base filter state. The
// suggester may be nil.
func NewController(runner QueryRunner, suggester Suggester, base query.Input) *Controller {
	if base.Page < 1 {
		base.Page = 1
	}
	if base.PageSize <= 0 {
		base.PageSize = query.DefaultPageSize
	}
	return &Controller{
		runner:    runner,
		suggester: suggester,
		input:     base,
		state:     StateIdle,
		busy:      make(map[string]uint64),
		requested: make(map[string]struct{}),
	}
}

// TypeJob records free-text job input without issuing a query.
func (c *Controller) TypeJob(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draftJob = text
}

// TypeCity records free-text city input without issuing a query.
func (c *Controller) TypeCity(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draftCity = text
}

// SuggestJob returns suggestions for the current job draft.
func (c *Controller) SuggestJob(ctx context.Context, limit int) ([]entities.Suggestion, error) {
	c.mu.Lock()
	draft := c.draftJob
	c.mu.Unlock()

	if c.suggester == nil || strings.TrimSpace(draft) == "" {
		return []entities.Suggestion{}, nil
	}
	return c.suggester.Suggest(ctx, draft, limit)
}

// Commit promotes both drafts into the active filter state and issues a
// query from page one.
func (c *Controller) Commit(ctx context.Context) {
	c.mu.Lock()
	c.input.Category = strings.TrimSpace(c.draftJob)
	c.input.City = strings.TrimSpace(c.draftCity)
	c.input.Page = 1
	c.issueLocked(ctx)
	c.mu.Unlock()
}

// SetSort changes the result ordering and re-queries from page one.
func (c *Controller) SetSort(ctx context.Context, sort query.SortKey) {
	c.update(ctx, FilterSort, func(in *query.Input) { in.Sort = sort })
}

// SetMaxDistanceKm changes the distance bound and re-queries from page one.
func (c *Controller) SetMaxDistanceKm(ctx context.Context, km float64) {
	c.update(ctx, FilterMaxDistance, func(in *query.Input) { in.MaxDistanceKm = km })
}

// SetMinRating changes the rating floor and re-queries from page one.
func (c *Controller) SetMinRating(ctx context.Context, rating float64) {
	c.update(ctx, FilterMinRating, func(in *query.Input) { in.MinRating = rating })
}

// SetVerifiedOnly toggles the verified filter and re-queries from page one.
func (c *Controller) SetVerifiedOnly(ctx context.Context, on bool) {
	c.update(ctx, FilterVerified, func(in *query.Input) { in.VerifiedOnly = on })
}

// SetExpertOnly toggles the expert filter and re-queries from page one.
func (c *Controller) SetExpertOnly(ctx context.Context, on bool) {
	c.update(ctx, FilterExpert, func(in *query.Input) { in.ExpertOnly = on })
}

// SetInsuredOnly toggles the insured filter and re-queries from page one.
func (c *Controller) SetInsuredOnly(ctx context.Context, on bool) {
	c.update(ctx, FilterInsured, func(in *query.Input) { in.InsuredOnly = on })
}

// SetServices replaces the service filter and re-queries from page one.
func (c *Controller) SetServices(ctx context.Context, services []string) {
	c.update(ctx, FilterServices, func(in *query.Input) { in.Services = services })
}

// FilterBusy reports whether the query triggered by a filter is still in
// flight.
func (c *Controller) FilterBusy(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[key]
	return ok
}

// SetPage moves to another result page without resetting other filters.
func (c *Controller) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	c.input.Page = page
	c.issueLocked(ctx)
	c.mu.Unlock()
}

// Refresh re-issues the current filter state unchanged.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.issueLocked(ctx)
	c.mu.Unlock()
}

func (c *Controller) update(ctx context.Context, key string, mutate func(*query.Input)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The control is disabled while its own query is in flight.
	if _, ok := c.busy[key]; ok {
		return
	}

	mutate(&c.input)
	c.input.Page = 1
	c.issueLocked(ctx)
	c.busy[key] = c.seq
}

// issueLocked starts a query for the current input. Caller holds c.mu.
func (c *Controller) issueLocked(ctx context.Context) {
	c.seq++
	mySeq := c.seq
	in := c.input
	c.state = StateSearching

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		result, err := c.runner.Run(ctx, in)

		c.mu.Lock()
		defer c.mu.Unlock()

		// A newer query has been issued since; this response is stale.
		// Busy filters stay busy: their state rides in the newer query.
		if mySeq != c.seq {
			return
		}

		// The latest query resolved, so no filter has anything in flight.
		for key := range c.busy {
			delete(c.busy, key)
		}

		if err != nil {
			c.state = StateError
			c.err = err
			c.result = nil
			return
		}
		c.state = StateResults
		c.err = nil
		c.result = result
	}()
}

// Wait blocks until every issued query has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Snapshot returns the controller's current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	busy := make(map[string]bool, len(c.busy))
	for key := range c.busy {
		busy[key] = true
	}

	return Snapshot{
		State:  c.state,
		Input:  c.input,
		Result: c.result,
		Err:    c.err,
		Busy:   busy,
	}
}

// MarkRequested records providers the session has already enquired with.
func (c *Controller) MarkRequested(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.requested[id] = struct{}{}
	}
}

// AlreadyRequested reports whether an enquiry was sent to the provider in
// this session.
func (c *Controller) AlreadyRequested(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.requested[id]
	return ok
}

// TopMatches returns up to n providers from the current result that have
// not yet received an enquiry, in result order. It feeds the batch
// enquiry flow.
func (c *Controller) TopMatches(n int) []*entities.Provider {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []*entities.Provider{}
	if c.result == nil {
		return out
	}
	for _, p := range c.result.Providers {
		if len(out) == n {
			break
		}
		if _, ok := c.requested[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
