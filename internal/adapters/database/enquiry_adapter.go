package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

var enquiryColumns = []interface{}{
	"id", "provider_id", "requester_id", "services", "category", "location",
	"budget", "description", "status", "preferred_date", "created_at", "updated_at",
}

// EnquiryAdapter implements EnquiryRepository against PostgreSQL
type EnquiryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEnquiryAdapter creates a new enquiry adapter
func NewEnquiryAdapter(client *postgres.Client) repositories.EnquiryRepository {
	return &EnquiryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts the enquiry and spends one unit of the requester's quota
// in a single transaction. The decrement is a compare-and-swap: the UPDATE
// only matches while enquiry_count is still positive, so two concurrent
// enquiries racing on a quota of one cannot both commit. The unique
// (provider_id, requester_id) constraint turns a duplicate enquiry into a
// conflict before any quota is spent.
func (a *EnquiryAdapter) Create(ctx context.Context, enquiry *entities.Enquiry) (int, error) {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var remaining int
	err = tx.QueryRowContext(ctx,
		`UPDATE requesters
		 SET enquiry_count = enquiry_count - 1, updated_at = $2
		 WHERE id = $1 AND enquiry_count > 0
		 RETURNING enquiry_count`,
		enquiry.RequesterID, time.Now(),
	).Scan(&remaining)
	if err == sql.ErrNoRows {
		return 0, apperrors.NewQuotaExhaustedError("enquiry allowance exhausted")
	}
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to reserve enquiry allowance", err)
	}

	insertSQL, args, err := a.db.Insert("enquiries").
		Rows(goqu.Record{
			"id":             enquiry.ID,
			"provider_id":    enquiry.ProviderID,
			"requester_id":   enquiry.RequesterID,
			"services":       pq.Array(enquiry.Services),
			"category":       enquiry.Category,
			"location":       enquiry.Location,
			"budget":         enquiry.Budget,
			"description":    enquiry.Description,
			"status":         string(enquiry.Status),
			"preferred_date": enquiry.PreferredDate,
			"created_at":     enquiry.CreatedAt,
			"updated_at":     enquiry.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError(
				fmt.Sprintf("an enquiry to provider %s already exists for this requester", enquiry.ProviderID))
		}
		return 0, apperrors.NewUnavailableError("failed to create enquiry", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewUnavailableError("failed to commit enquiry", err)
	}

	return remaining, nil
}

// GetByID retrieves an enquiry by ID
func (a *EnquiryAdapter) GetByID(ctx context.Context, id string) (*entities.Enquiry, error) {
	selectSQL, args, err := a.db.Select(enquiryColumns...).
		From("enquiries").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	enquiry, err := scanEnquiry(a.client.DB().QueryRowContext(ctx, selectSQL, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("enquiry with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to get enquiry", err)
	}

	return enquiry, nil
}

// List retrieves enquiries matching the filter with the total match count
func (a *EnquiryAdapter) List(ctx context.Context, filter repositories.EnquiryFilter) ([]*entities.Enquiry, int, error) {
	ds := a.db.From("enquiries")
	if filter.ProviderID != "" {
		ds = ds.Where(goqu.Ex{"provider_id": filter.ProviderID})
	}
	if filter.RequesterID != "" {
		ds = ds.Where(goqu.Ex{"requester_id": filter.RequesterID})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": string(filter.Status)})
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewUnavailableError("failed to count enquiries", err)
	}

	page := ds.Select(enquiryColumns...).Order(goqu.I("created_at").Desc())
	if filter.Limit > 0 {
		page = page.Limit(uint(filter.Limit)).Offset(uint(filter.Offset))
	}

	pageSQL, pageArgs, err := page.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build page query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, apperrors.NewUnavailableError("failed to query enquiries", err)
	}
	defer rows.Close()

	enquiries := []*entities.Enquiry{}
	for rows.Next() {
		enquiry, err := scanEnquiry(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan enquiry", err)
		}
		enquiries = append(enquiries, enquiry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewUnavailableError("error iterating enquiries", err)
	}

	return enquiries, total, nil
}

// UpdateStatus applies a workflow status transition
func (a *EnquiryAdapter) UpdateStatus(ctx context.Context, id string, status entities.EnquiryStatus) error {
	updateSQL, args, err := a.db.Update("enquiries").
		Set(goqu.Record{
			"status":     string(status),
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, updateSQL, args...)
	if err != nil {
		return apperrors.NewUnavailableError("failed to update enquiry status", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("enquiry with id %s not found", id))
}

func scanEnquiry(row rowScanner) (*entities.Enquiry, error) {
	enquiry := &entities.Enquiry{}
	var status string

	err := row.Scan(
		&enquiry.ID,
		&enquiry.ProviderID,
		&enquiry.RequesterID,
		pq.Array(&enquiry.Services),
		&enquiry.Category,
		&enquiry.Location,
		&enquiry.Budget,
		&enquiry.Description,
		&status,
		&enquiry.PreferredDate,
		&enquiry.CreatedAt,
		&enquiry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	enquiry.Status = entities.EnquiryStatus(status)
	return enquiry, nil
}
