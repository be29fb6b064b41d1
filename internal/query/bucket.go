package query

import (
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
)

// RecommendedMinRating is the rating threshold for the recommended bucket.
const RecommendedMinRating = 4.0

// Buckets is a two-tier partition of a result page. Recommended providers
// render first.
type Buckets struct {
	Recommended []*entities.Provider `json:"recommended"`
	Other       []*entities.Provider `json:"other"`
}

// Bucket partitions an already-ordered result page into Recommended
// (rating >= 4.0, capped at n/2) and Other (the rest, up to n total).
// The partition preserves the incoming order within each bucket; it never
// re-sorts. If fewer than n/2 providers qualify as recommended, Other
// absorbs the shortfall so capacity is never wasted while candidates exist.
func Bucket(items []*entities.Provider, n int) Buckets {
	buckets := Buckets{}
	if n <= 0 {
		return buckets
	}

	recommendedCap := n / 2
	picked := make(map[int]bool, recommendedCap)

	for i, p := range items {
		if len(buckets.Recommended) == recommendedCap {
			break
		}
		if p.Rating >= RecommendedMinRating {
			buckets.Recommended = append(buckets.Recommended, p)
			picked[i] = true
		}
	}

	remaining := n - len(buckets.Recommended)
	for i, p := range items {
		if remaining == 0 {
			break
		}
		if picked[i] {
			continue
		}
		buckets.Other = append(buckets.Other, p)
		remaining--
	}

	return buckets
}
