package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

func validInput() Input {
	return Input{
		Page:          1,
		PageSize:      DefaultPageSize,
		MaxDistanceKm: NoDistanceLimit,
	}
}

func TestCompile_Defaults(t *testing.T) {
	spec, err := Compile(validInput())
	require.NoError(t, err)

	assert.Equal(t, entities.StatusApproved, spec.Status)
	assert.Equal(t, NoDistanceLimit, spec.MaxDistanceKm)
	assert.False(t, spec.DistanceBounded())

	// Default ordering is the fixed tie-break chain, never a single key.
	require.Len(t, spec.Sort, 4)
	assert.Equal(t, Ordering{Field: "rating", Desc: true}, spec.Sort[0])
	assert.Equal(t, Ordering{Field: "verified", Desc: true}, spec.Sort[1])
	assert.Equal(t, Ordering{Field: "expert", Desc: true}, spec.Sort[2])
	assert.Equal(t, Ordering{Field: "id"}, spec.Sort[3])
}

func TestCompile_InvalidPagination(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Input)
	}{
		{"zero page", func(in *Input) { in.Page = 0 }},
		{"negative page", func(in *Input) { in.Page = -2 }},
		{"zero page size", func(in *Input) { in.PageSize = 0 }},
		{"negative page size", func(in *Input) { in.PageSize = -10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := Compile(in)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestCompile_PageSizeCapped(t *testing.T) {
	in := validInput()
	in.PageSize = 500

	spec, err := Compile(in)
	require.NoError(t, err)
	assert.Equal(t, 50, spec.PageSize)

	in.MaxPageSize = 25
	spec, err = Compile(in)
	require.NoError(t, err)
	assert.Equal(t, 25, spec.PageSize)
}

func TestCompile_MinRatingClamped(t *testing.T) {
	in := validInput()
	in.MinRating = -2
	spec, err := Compile(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, spec.MinRating)

	in.MinRating = 9.5
	spec, err = Compile(in)
	require.NoError(t, err)
	assert.Equal(t, 5.0, spec.MinRating)
}

func TestCompile_BlankTextFiltersDropped(t *testing.T) {
	in := validInput()
	in.Category = "   "
	in.City = "\t"
	in.Services = []string{" ", "", "plumbing "}
	in.PaymentMethods = []string{""}

	spec, err := Compile(in)
	require.NoError(t, err)

	assert.Empty(t, spec.Category)
	assert.Empty(t, spec.CityToken)
	assert.Empty(t, spec.CityFields)
	assert.Equal(t, []string{"plumbing"}, spec.Services)
	assert.Empty(t, spec.PaymentMethods)
}

func TestCompile_CityTokenExpandsAcrossLocationFields(t *testing.T) {
	in := validInput()
	in.City = " Toronto "

	spec, err := Compile(in)
	require.NoError(t, err)

	assert.Equal(t, "Toronto", spec.CityToken)
	assert.Equal(t, []string{"radius_origin_city", "region", "state"}, spec.CityFields)
}

func TestCompile_SortKeys(t *testing.T) {
	in := validInput()

	in.Sort = SortReviews
	spec, err := Compile(in)
	require.NoError(t, err)
	assert.Equal(t, Ordering{Field: "review_count", Desc: true}, spec.Sort[0])
	assert.False(t, spec.SortByDistance)

	in.Sort = SortDistance
	spec, err = Compile(in)
	require.NoError(t, err)
	assert.True(t, spec.SortByDistance)
	assert.True(t, spec.DistanceBounded())

	// Unknown keys fall back to the default chain rather than erroring.
	in.Sort = SortKey("popularity")
	spec, err = Compile(in)
	require.NoError(t, err)
	assert.Equal(t, Ordering{Field: "rating", Desc: true}, spec.Sort[0])
	assert.False(t, spec.SortByDistance)
}

func TestCompile_StatusDefaultsToApproved(t *testing.T) {
	in := validInput()
	spec, err := Compile(in)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusApproved, spec.Status)

	// Administrative callers may opt into another status explicitly.
	in.Status = entities.StatusPending
	spec, err = Compile(in)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, spec.Status)
}

func TestCompile_NegativeDistanceMeansUnbounded(t *testing.T) {
	in := validInput()
	in.MaxDistanceKm = -42

	spec, err := Compile(in)
	require.NoError(t, err)
	assert.Equal(t, NoDistanceLimit, spec.MaxDistanceKm)
}

func TestSpec_Offset(t *testing.T) {
	in := validInput()
	in.Page = 3
	in.PageSize = 10

	spec, err := Compile(in)
	require.NoError(t, err)
	assert.Equal(t, 20, spec.Offset())
}
