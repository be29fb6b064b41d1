package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	tsclient "github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/typesense"
)

const collectionName = "providers"

// TypesenseAdapter implements provider typeahead suggestions using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.ProviderSuggestRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "services", Type: "string[]"},
			{Name: "city", Type: "string"},
			{Name: "approved", Type: "bool"},
			{Name: "rating", Type: "float"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a provider into the suggestion index
func (a *TypesenseAdapter) Index(ctx context.Context, provider *entities.Provider) error {
	document := map[string]interface{}{
		"id":         provider.ID,
		"name":       provider.OwnerName,
		"category":   provider.Category,
		"services":   provider.Services,
		"city":       provider.ServiceRadius.OriginCity,
		"approved":   provider.Status == entities.StatusApproved,
		"rating":     provider.Rating,
		"created_at": provider.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index provider: %w", err)
	}

	return nil
}

// DropCollection deletes the entire suggestion collection. The reindexer
// uses it before a full rebuild.
func (a *TypesenseAdapter) DropCollection(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop typesense collection: %w", err)
	}
	return nil
}

// Delete removes a provider from the suggestion index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete provider from index: %w", err)
	}
	return nil
}

// Suggest returns provider suggestions for a free-text prefix. Only
// approved listings surface; the match spans name, services and city.
func (a *TypesenseAdapter) Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String("name,services,city"),
		FilterBy: pointer.String("approved:=true"),
		SortBy:   pointer.String("_text_match:desc,rating:desc"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search providers: %w", err)
	}

	suggestions := []entities.Suggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document
		suggestion := entities.Suggestion{
			ID:       stringField(doc, "id"),
			Name:     stringField(doc, "name"),
			Category: stringField(doc, "category"),
			City:     stringField(doc, "city"),
		}
		if rating, ok := doc["rating"].(float64); ok {
			suggestion.Rating = rating
		}
		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

func stringField(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
