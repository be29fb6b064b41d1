package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
)

func providersWithRatings(ratings ...float64) []*entities.Provider {
	items := make([]*entities.Provider, len(ratings))
	for i, r := range ratings {
		items[i] = &entities.Provider{ID: fmt.Sprintf("p%d", i), Rating: r}
	}
	return items
}

func TestBucket_SplitsByRatingThreshold(t *testing.T) {
	items := providersWithRatings(4.8, 3.2, 4.1, 2.0, 4.5, 3.9)

	buckets := Bucket(items, 6)

	require.Len(t, buckets.Recommended, 3)
	for _, p := range buckets.Recommended {
		assert.GreaterOrEqual(t, p.Rating, RecommendedMinRating)
	}
	assert.Equal(t, []string{"p0", "p2", "p4"}, ids(buckets.Recommended))
	assert.Equal(t, []string{"p1", "p3", "p5"}, ids(buckets.Other))
}

func TestBucket_RecommendedCappedAtHalf(t *testing.T) {
	// Every item qualifies; half the capacity belongs to Recommended and
	// the overflow spills into Other in original order.
	items := providersWithRatings(5, 4.9, 4.8, 4.7, 4.6, 4.5)

	buckets := Bucket(items, 4)

	assert.Equal(t, []string{"p0", "p1"}, ids(buckets.Recommended))
	assert.Equal(t, []string{"p2", "p3"}, ids(buckets.Other))
}

func TestBucket_OtherAbsorbsShortfall(t *testing.T) {
	// Only one recommended candidate: Other fills the rest of the page.
	items := providersWithRatings(4.2, 3.0, 2.5, 3.8, 1.0)

	buckets := Bucket(items, 4)

	assert.Equal(t, []string{"p0"}, ids(buckets.Recommended))
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(buckets.Other))
}

func TestBucket_Invariants(t *testing.T) {
	cases := [][]float64{
		{},
		{3.0},
		{4.5},
		{4.5, 4.4, 4.3, 4.2, 4.1, 4.0, 3.9, 3.8},
		{1, 2, 3, 4, 5},
	}

	for _, ratings := range cases {
		for n := 0; n <= len(ratings)+2; n++ {
			items := providersWithRatings(ratings...)
			buckets := Bucket(items, n)

			total := len(buckets.Recommended) + len(buckets.Other)
			assert.LessOrEqual(t, total, n)

			// No unused capacity while candidates remain.
			if len(items) >= n {
				assert.Equal(t, n, total)
			}

			seen := map[string]bool{}
			for _, p := range buckets.Recommended {
				assert.GreaterOrEqual(t, p.Rating, RecommendedMinRating)
				assert.False(t, seen[p.ID], "provider in both buckets")
				seen[p.ID] = true
			}
			for _, p := range buckets.Other {
				assert.False(t, seen[p.ID], "provider in both buckets")
				seen[p.ID] = true
			}
		}
	}
}

func TestBucket_ZeroCapacity(t *testing.T) {
	buckets := Bucket(providersWithRatings(4.5, 3.0), 0)
	assert.Empty(t, buckets.Recommended)
	assert.Empty(t, buckets.Other)
}

func ids(items []*entities.Provider) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}
