// Package scoring computes the hot-rank score used to order the "hot"
// featured index.
package scoring

// Hot-rank configuration constants.
const (
	// minimumHotAverage excludes poorly rated entities from the hot index.
	minimumHotAverage = 50

	// naturalTimeDivisor converts a creation time in Unix milliseconds to
	// the slowly advancing baseline (~100 units per 12 hours).
	naturalTimeDivisor = 432000

	// promotionCap bounds the volume contribution for very popular entities.
	promotionCap = 300
)

// Excluded is returned for entities that must not appear in the hot index.
const Excluded = int64(-1)

// PromotionPotential maps a submission count to its promotion value.
// Piecewise with integer division: linear up to 10 submissions, then two
// progressively flatter segments, capped at 300 beyond 1000 submissions.
func PromotionPotential(n int) int64 {
	switch {
	case n <= 10:
		return int64(n) * 10
	case n <= 100:
		return 100 + int64((n-10)/9)*10
	case n <= 1000:
		return 200 + int64((n-100)/9)
	default:
		return promotionCap
	}
}

// HotRank combines submission volume, average rating and entity age into
// one sortable score. creationMillis is the node's creation time in Unix
// milliseconds; avg is the integer average overall rating (0-100).
// Entities averaging below 50 return Excluded and are left out of the hot
// index entirely.
func HotRank(submissions int, avg int, creationMillis int64) int64 {
	if avg < minimumHotAverage {
		return Excluded
	}
	natural := creationMillis / naturalTimeDivisor
	return natural + (PromotionPotential(submissions)*int64(avg))/100
}
