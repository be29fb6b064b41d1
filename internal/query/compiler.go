package query

import (
	"strings"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

// SortKey selects the discovery result ordering.
type SortKey string

const (
	SortDefault  SortKey = ""
	SortRating   SortKey = "rating"
	SortReviews  SortKey = "reviews"
	SortDistance SortKey = "distance"
)

// DefaultPageSize is used when a caller omits the page size.
const DefaultPageSize = 20

// Input is the unordered bag of optional filter values supplied by a caller.
// Zero values mean "not filtered" except Page/PageSize, which must be set.
type Input struct {
	Category       string
	VerifiedOnly   bool
	ExpertOnly     bool
	InsuredOnly    bool
	MinRating      float64
	City           string
	Services       []string
	PaymentMethods []string

	// MaxDistanceKm bounds results by declared service radius;
	// NoDistanceLimit means unbounded.
	MaxDistanceKm float64

	Sort     SortKey
	Page     int
	PageSize int

	// Status is an administrative override; the public path always
	// queries approved providers.
	Status entities.ApplicationStatus

	// MaxPageSize caps PageSize. Zero applies the compiled-in default.
	MaxPageSize int
}

// Ordering is one key of a sort chain.
type Ordering struct {
	Field string
	Desc  bool
}

// Spec is a compiled, normalized filter specification: a conjunction of
// field predicates plus ordering and pagination. It holds no persistent
// references and is valid for the duration of a single request.
type Spec struct {
	Category       string
	VerifiedOnly   bool
	ExpertOnly     bool
	InsuredOnly    bool
	MinRating      float64
	Services       []string
	PaymentMethods []string

	// CityToken matches as a disjunction across CityFields, because
	// providers populate the location-bearing columns inconsistently.
	CityToken  string
	CityFields []string

	MaxDistanceKm  float64
	Sort           []Ordering
	SortByDistance bool

	Status entities.ApplicationStatus

	Page     int
	PageSize int
}

// Offset returns the row offset for the requested page.
func (s Spec) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// DistanceBounded reports whether the spec requires the derived-distance
// evaluation stage.
func (s Spec) DistanceBounded() bool {
	return s.MaxDistanceKm != NoDistanceLimit || s.SortByDistance
}

// cityTokenFields are the location-bearing columns a city/region token
// expands across.
var cityTokenFields = []string{"radius_origin_city", "region", "state"}

// defaultOrder is the fixed tie-break chain used when no explicit sort key
// is given, and as the tie-break for every other sort. A trailing id key
// keeps pagination deterministic when all three tie.
func defaultOrder() []Ordering {
	return []Ordering{
		{Field: "rating", Desc: true},
		{Field: "verified", Desc: true},
		{Field: "expert", Desc: true},
		{Field: "id"},
	}
}

// Compile validates and normalizes a filter bag into a Spec.
//
// Blank text filters are dropped rather than matched against the empty
// string; the minimum rating is clamped to [0,5]; an unknown sort key falls
// back to the default chain. Invalid page and page-size values fail fast.
func Compile(in Input) (Spec, error) {
	if in.Page < 1 {
		return Spec{}, apperrors.NewValidationError("page must be >= 1")
	}
	if in.PageSize <= 0 {
		return Spec{}, apperrors.NewValidationError("page size must be > 0")
	}

	maxPageSize := in.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = 50
	}

	pageSize := in.PageSize
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	minRating := in.MinRating
	if minRating < 0 {
		minRating = 0
	}
	if minRating > 5 {
		minRating = 5
	}

	status := in.Status
	if status == "" {
		status = entities.StatusApproved
	}

	spec := Spec{
		Category:       strings.TrimSpace(in.Category),
		VerifiedOnly:   in.VerifiedOnly,
		ExpertOnly:     in.ExpertOnly,
		InsuredOnly:    in.InsuredOnly,
		MinRating:      minRating,
		Services:       trimAll(in.Services),
		PaymentMethods: trimAll(in.PaymentMethods),
		MaxDistanceKm:  in.MaxDistanceKm,
		Status:         status,
		Page:           in.Page,
		PageSize:       pageSize,
	}

	if spec.MaxDistanceKm <= 0 {
		spec.MaxDistanceKm = NoDistanceLimit
	}

	if token := strings.TrimSpace(in.City); token != "" {
		spec.CityToken = token
		spec.CityFields = cityTokenFields
	}

	switch in.Sort {
	case SortReviews:
		spec.Sort = append([]Ordering{{Field: "review_count", Desc: true}}, defaultOrder()...)
	case SortDistance:
		spec.SortByDistance = true
		spec.Sort = defaultOrder()
	default:
		// SortRating and unknown keys both resolve to the default chain.
		spec.Sort = defaultOrder()
	}

	return spec, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
