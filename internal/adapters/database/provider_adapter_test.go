package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
)

func radiusProvider(id, distance string) *entities.Provider {
	return &entities.Provider{
		ID:            id,
		ServiceRadius: entities.ServiceRadius{OriginCity: "Toronto", Distance: distance},
	}
}

func providerIDs(providers []*entities.Provider) []string {
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
	}
	return ids
}

func TestApplyDistanceStageSortsNearestFirst(t *testing.T) {
	candidates := []*entities.Provider{
		radiusProvider("a", "20 km"),
		radiusProvider("b", "5 km"),
		radiusProvider("c", "bogus"),
		radiusProvider("d", "10"),
	}

	spec := query.Spec{
		MaxDistanceKm:  query.NoDistanceLimit,
		SortByDistance: true,
	}

	got := applyDistanceStage(candidates, spec)

	assert.Equal(t, []string{"b", "d", "a"}, providerIDs(got),
		"unmapped radius text must be excluded and the rest ordered nearest first")
}

func TestApplyDistanceStageBoundsByCap(t *testing.T) {
	candidates := []*entities.Provider{
		radiusProvider("far", "12 km"),
		radiusProvider("near", "8 km"),
	}

	tests := []struct {
		name string
		cap  float64
		want []string
	}{
		{name: "cap excludes beyond 10", cap: 10, want: []string{"near"}},
		{name: "cap at 15 includes both", cap: 15, want: []string{"far", "near"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyDistanceStage(candidates, query.Spec{MaxDistanceKm: tt.cap})
			assert.Equal(t, tt.want, providerIDs(got))
		})
	}
}

func TestApplyDistanceStagePreservesInputOrderWithoutDistanceSort(t *testing.T) {
	candidates := []*entities.Provider{
		radiusProvider("a", "20 km"),
		radiusProvider("b", "5 km"),
	}

	got := applyDistanceStage(candidates, query.Spec{MaxDistanceKm: 25})

	assert.Equal(t, []string{"a", "b"}, providerIDs(got),
		"without a distance sort the SQL ordering must survive the filter")
}

func TestApplyDistanceStageStableForEqualDistances(t *testing.T) {
	candidates := []*entities.Provider{
		radiusProvider("first", "10 km"),
		radiusProvider("second", "10 km"),
		radiusProvider("third", "5 km"),
	}

	spec := query.Spec{
		MaxDistanceKm:  query.NoDistanceLimit,
		SortByDistance: true,
	}

	got := applyDistanceStage(candidates, spec)

	assert.Equal(t, []string{"third", "first", "second"}, providerIDs(got))
}

func TestPaginate(t *testing.T) {
	items := []*entities.Provider{
		radiusProvider("a", "1"),
		radiusProvider("b", "2"),
		radiusProvider("c", "3"),
	}

	assert.Equal(t, []string{"a", "b"}, providerIDs(paginate(items, 0, 2)))
	assert.Equal(t, []string{"c"}, providerIDs(paginate(items, 2, 2)))
	assert.Empty(t, paginate(items, 3, 2), "offset past the end yields an empty page")
}

func TestNormalizeTrustFlags(t *testing.T) {
	high := &entities.Provider{Rating: 4.2}
	normalizeTrustFlags(high)
	assert.True(t, high.Expert)

	low := &entities.Provider{Rating: 3.9, Expert: true}
	normalizeTrustFlags(low)
	assert.False(t, low.Expert, "a stale expert flag is cleared when the rating drops")
}
