package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

var requesterColumns = []interface{}{
	"id", "email", "name", "phone", "enquiry_count", "created_at", "updated_at",
}

// RequesterAdapter implements RequesterRepository against PostgreSQL
type RequesterAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRequesterAdapter creates a new requester adapter
func NewRequesterAdapter(client *postgres.Client) repositories.RequesterRepository {
	return &RequesterAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert resolves a requester by email, creating the record on first
// contact. The upsert races safely: concurrent first enquiries for the
// same email both land on the single stored row. An existing row keeps
// its quota; only the contact fields are refreshed.
func (a *RequesterAdapter) Upsert(ctx context.Context, requester *entities.Requester) (*entities.Requester, error) {
	now := time.Now()

	insertSQL, args, err := a.db.Insert("requesters").
		Rows(goqu.Record{
			"id":            requester.ID,
			"email":         requester.Email,
			"name":          requester.Name,
			"phone":         requester.Phone,
			"enquiry_count": requester.EnquiryCount,
			"created_at":    now,
			"updated_at":    now,
		}).
		OnConflict(goqu.DoUpdate("email", goqu.Record{
			"name":       requester.Name,
			"phone":      requester.Phone,
			"updated_at": now,
		})).
		Returning(requesterColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build upsert query", err)
	}

	stored, err := scanRequester(a.client.DB().QueryRowContext(ctx, insertSQL, args...))
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to upsert requester", err)
	}

	return stored, nil
}

// GetByID retrieves a requester by ID
func (a *RequesterAdapter) GetByID(ctx context.Context, id string) (*entities.Requester, error) {
	return a.getByField(ctx, "id", id)
}

// GetByEmail retrieves a requester by email
func (a *RequesterAdapter) GetByEmail(ctx context.Context, email string) (*entities.Requester, error) {
	return a.getByField(ctx, "email", email)
}

func (a *RequesterAdapter) getByField(ctx context.Context, field, value string) (*entities.Requester, error) {
	selectSQL, args, err := a.db.Select(requesterColumns...).
		From("requesters").
		Where(goqu.Ex{field: value}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	requester, err := scanRequester(a.client.DB().QueryRowContext(ctx, selectSQL, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("requester with %s %s not found", field, value))
	}
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to get requester", err)
	}

	return requester, nil
}

func scanRequester(row rowScanner) (*entities.Requester, error) {
	requester := &entities.Requester{}
	err := row.Scan(
		&requester.ID,
		&requester.Email,
		&requester.Name,
		&requester.Phone,
		&requester.EnquiryCount,
		&requester.CreatedAt,
		&requester.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return requester, nil
}
