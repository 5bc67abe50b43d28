package repository

// distribution is a cumulative rating counter over a fixed bucket range.
// The overall rating uses 11 buckets (0, 10, ..., 100); per-criterion
// distributions use one bucket per submission-scale value.
type distribution struct {
	counts []int
	offset int   // value of the first bucket
	step   int   // value distance between adjacent buckets
	total  int   // number of ratings recorded
	sum    int64 // cumulative sum of rating values
}

func newDistribution(buckets, offset, step int) *distribution {
	return &distribution{
		counts: make([]int, buckets),
		offset: offset,
		step:   step,
	}
}

func (d *distribution) bucket(value int) int {
	return (value - d.offset) / d.step
}

func (d *distribution) add(value int) {
	d.counts[d.bucket(value)]++
	d.total++
	d.sum += int64(value)
}

// remove subtracts a previously added value. Callers guarantee the value
// was added; going negative is a contract violation upstream.
func (d *distribution) remove(value int) {
	d.counts[d.bucket(value)]--
	d.total--
	d.sum -= int64(value)
}

// average returns the rounded mean rating. Only meaningful for total > 0.
func (d *distribution) average() int {
	if d.total == 0 {
		return 0
	}
	return int((d.sum + int64(d.total)/2) / int64(d.total))
}

// percentages computes the per-bucket share of the total, summing to
// exactly 100. Each bucket's exact percentage is truncated, then the
// shortfall is handed out one point at a time to the buckets with the
// largest fractional remainder, ties going to the first-encountered
// bucket. Returns nil when the distribution is empty.
func (d *distribution) percentages() []int {
	if d.total == 0 {
		return nil
	}

	out := make([]int, len(d.counts))
	rems := make([]int, len(d.counts))
	allocated := 0
	for i, c := range d.counts {
		exact := c * 100
		out[i] = exact / d.total
		rems[i] = exact % d.total
		allocated += out[i]
	}

	// A bucket receives at most one extra point, so zeroing the winning
	// remainder keeps the allocation strictly decreasing.
	for shortfall := 100 - allocated; shortfall > 0; shortfall-- {
		best := -1
		for i, r := range rems {
			if r > 0 && (best == -1 || r > rems[best]) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		out[best]++
		rems[best] = 0
	}
	return out
}
