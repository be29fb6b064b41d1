package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/postgres"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

var providerColumns = []interface{}{
	"id", "owner_name", "email", "phone", "category", "services",
	"description", "street", "city", "region", "state", "country",
	"radius_origin_city", "radius_distance", "payment_methods", "insured",
	"rating", "review_count", "verified", "expert", "application_status",
	"created_at", "updated_at",
}

// ProviderAdapter implements ProviderRepository against PostgreSQL
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new provider listing
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.Provider) error {
	normalizeTrustFlags(provider)

	insertSQL, args, err := a.db.Insert("providers").Rows(providerRecord(provider, true)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, insertSQL, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("provider with email %s already exists", provider.Email))
		}
		return apperrors.NewUnavailableError("failed to create provider", err)
	}

	return nil
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	selectSQL, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider, err := scanProvider(a.client.DB().QueryRowContext(ctx, selectSQL, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to get provider", err)
	}

	return provider, nil
}

// GetByIDs retrieves multiple providers by their IDs
func (a *ProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if len(ids) == 0 {
		return []*entities.Provider{}, nil
	}

	selectSQL, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryProviders(ctx, selectSQL, args...)
}

// Update updates a provider
func (a *ProviderAdapter) Update(ctx context.Context, provider *entities.Provider) error {
	normalizeTrustFlags(provider)
	provider.UpdatedAt = time.Now()

	updateSQL, args, err := a.db.Update("providers").
		Set(providerRecord(provider, false)).
		Where(goqu.Ex{"id": provider.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, updateSQL, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("provider with email %s already exists", provider.Email))
		}
		return apperrors.NewUnavailableError("failed to update provider", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("provider with id %s not found", provider.ID))
}

// SetVerified marks a provider as verified (or clears the flag)
func (a *ProviderAdapter) SetVerified(ctx context.Context, id string, verified bool) error {
	updateSQL, args, err := a.db.Update("providers").
		Set(goqu.Record{
			"verified":   verified,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build verify query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, updateSQL, args...)
	if err != nil {
		return apperrors.NewUnavailableError("failed to verify provider", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("provider with id %s not found", id))
}

// Delete removes a provider listing
func (a *ProviderAdapter) Delete(ctx context.Context, id string) error {
	deleteSQL, args, err := a.db.Delete("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, deleteSQL, args...)
	if err != nil {
		return apperrors.NewUnavailableError("failed to delete provider", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("provider with id %s not found", id))
}

// Discover executes a compiled filter specification.
//
// Non-distance predicates are evaluated in SQL over the whole collection
// before pagination. Distance-bounded (or distance-sorted) specs need a
// second stage because the stored radius is free text: every surviving
// candidate is fetched, its numeric radius derived, and filtering, sorting
// and pagination applied to the derived set. Count and page always come
// from the same filtered set.
func (a *ProviderAdapter) Discover(ctx context.Context, spec query.Spec) (*repositories.DiscoveryResult, error) {
	ds := a.discoveryDataset(spec)

	if !spec.DistanceBounded() {
		return a.discoverDirect(ctx, ds, spec)
	}

	return a.discoverWithDerivedDistance(ctx, ds, spec)
}

// discoverDirect pages entirely in SQL: count over the filtered set, then
// the sorted page via limit/offset.
func (a *ProviderAdapter) discoverDirect(ctx context.Context, ds *goqu.SelectDataset, spec query.Spec) (*repositories.DiscoveryResult, error) {
	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, apperrors.NewUnavailableError("failed to count providers", err)
	}

	pageSQL, pageArgs, err := ds.Select(providerColumns...).
		Order(orderedExpressions(spec.Sort)...).
		Limit(uint(spec.PageSize)).
		Offset(uint(spec.Offset())).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build page query", err)
	}

	items, err := a.queryProviders(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, err
	}

	return &repositories.DiscoveryResult{Providers: items, Total: total}, nil
}

// discoverWithDerivedDistance fetches all candidates surviving the
// non-distance predicates, then filters, sorts and pages on the derived
// kilometer value in memory.
func (a *ProviderAdapter) discoverWithDerivedDistance(ctx context.Context, ds *goqu.SelectDataset, spec query.Spec) (*repositories.DiscoveryResult, error) {
	candidatesSQL, args, err := ds.Select(providerColumns...).
		Order(orderedExpressions(spec.Sort)...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build candidate query", err)
	}

	candidates, err := a.queryProviders(ctx, candidatesSQL, args...)
	if err != nil {
		return nil, err
	}

	filtered := applyDistanceStage(candidates, spec)

	return &repositories.DiscoveryResult{
		Providers: paginate(filtered, spec.Offset(), spec.PageSize),
		Total:     len(filtered),
	}, nil
}

// discoveryDataset builds the conjunction of non-distance predicates.
func (a *ProviderAdapter) discoveryDataset(spec query.Spec) *goqu.SelectDataset {
	ds := a.db.From("providers").
		Where(goqu.Ex{"application_status": string(spec.Status)})

	if spec.Category != "" {
		ds = ds.Where(goqu.I("category").Eq(spec.Category))
	}
	if spec.VerifiedOnly {
		ds = ds.Where(goqu.I("verified").IsTrue())
	}
	if spec.ExpertOnly {
		ds = ds.Where(goqu.I("expert").IsTrue())
	}
	if spec.InsuredOnly {
		ds = ds.Where(goqu.I("insured").IsTrue())
	}
	if spec.MinRating > 0 {
		ds = ds.Where(goqu.I("rating").Gte(spec.MinRating))
	}
	if len(spec.Services) > 0 {
		ds = ds.Where(goqu.L("services && ?", pq.Array(spec.Services)))
	}
	if len(spec.PaymentMethods) > 0 {
		ds = ds.Where(goqu.L("payment_methods && ?", pq.Array(spec.PaymentMethods)))
	}

	if spec.CityToken != "" {
		pattern := "%" + spec.CityToken + "%"
		conditions := make([]goqu.Expression, 0, len(spec.CityFields))
		for _, field := range spec.CityFields {
			conditions = append(conditions, goqu.I(field).ILike(pattern))
		}
		ds = ds.Where(goqu.Or(conditions...))
	}

	return ds
}

// applyDistanceStage retains candidates whose derived service radius is
// within the requested cap and, for distance sorts, orders them nearest
// first. Candidates with unmapped radius text are excluded from any query
// where distance participates, but never fail the query. The sort is
// stable, so SQL-side tie-break ordering is preserved for equal distances.
func applyDistanceStage(candidates []*entities.Provider, spec query.Spec) []*entities.Provider {
	type measured struct {
		provider *entities.Provider
		km       float64
	}

	kept := make([]measured, 0, len(candidates))
	for _, p := range candidates {
		km, ok := query.ParseRadiusKm(p.ServiceRadius.Distance)
		if !ok {
			continue
		}
		if spec.MaxDistanceKm != query.NoDistanceLimit && km > spec.MaxDistanceKm {
			continue
		}
		kept = append(kept, measured{provider: p, km: km})
	}

	if spec.SortByDistance {
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].km < kept[j].km
		})
	}

	out := make([]*entities.Provider, len(kept))
	for i, m := range kept {
		out[i] = m.provider
	}
	return out
}

// paginate slices one page out of an already-sorted result set.
func paginate(items []*entities.Provider, offset, limit int) []*entities.Provider {
	if offset >= len(items) {
		return []*entities.Provider{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// orderedExpressions translates a compiled sort chain into goqu orderings.
func orderedExpressions(chain []query.Ordering) []exp.OrderedExpression {
	out := make([]exp.OrderedExpression, len(chain))
	for i, o := range chain {
		if o.Desc {
			out[i] = goqu.I(o.Field).Desc()
		} else {
			out[i] = goqu.I(o.Field).Asc()
		}
	}
	return out
}

// normalizeTrustFlags enforces the expert/rating invariant at write time.
func normalizeTrustFlags(provider *entities.Provider) {
	if provider.Rating >= entities.ExpertMinRating {
		provider.Expert = true
	} else {
		provider.Expert = false
	}
}

func providerRecord(p *entities.Provider, includeID bool) goqu.Record {
	record := goqu.Record{
		"owner_name":         p.OwnerName,
		"email":              p.Email,
		"phone":              p.Phone,
		"category":           p.Category,
		"services":           pq.Array(p.Services),
		"description":        p.Description,
		"street":             p.Address.Street,
		"city":               p.Address.City,
		"region":             p.Address.Region,
		"state":              p.Address.State,
		"country":            p.Address.Country,
		"radius_origin_city": p.ServiceRadius.OriginCity,
		"radius_distance":    p.ServiceRadius.Distance,
		"payment_methods":    pq.Array(p.PaymentMethods),
		"insured":            p.Insured,
		"rating":             p.Rating,
		"review_count":       p.ReviewCount,
		"verified":           p.Verified,
		"expert":             p.Expert,
		"application_status": string(p.Status),
		"updated_at":         p.UpdatedAt,
	}
	if includeID {
		record["id"] = p.ID
		record["created_at"] = p.CreatedAt
	}
	return record
}

func (a *ProviderAdapter) queryProviders(ctx context.Context, querySQL string, args ...interface{}) ([]*entities.Provider, error) {
	rows, err := a.client.DB().QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to query providers", err)
	}
	defer rows.Close()

	providers := []*entities.Provider{}
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		providers = append(providers, provider)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUnavailableError("error iterating providers", err)
	}

	return providers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*entities.Provider, error) {
	provider := &entities.Provider{}
	var status string

	err := row.Scan(
		&provider.ID,
		&provider.OwnerName,
		&provider.Email,
		&provider.Phone,
		&provider.Category,
		pq.Array(&provider.Services),
		&provider.Description,
		&provider.Address.Street,
		&provider.Address.City,
		&provider.Address.Region,
		&provider.Address.State,
		&provider.Address.Country,
		&provider.ServiceRadius.OriginCity,
		&provider.ServiceRadius.Distance,
		pq.Array(&provider.PaymentMethods),
		&provider.Insured,
		&provider.Rating,
		&provider.ReviewCount,
		&provider.Verified,
		&provider.Expert,
		&status,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	provider.Status = entities.ApplicationStatus(status)
	return provider, nil
}

func requireRowsAffected(result sql.Result, notFoundMessage string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFoundMessage)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
