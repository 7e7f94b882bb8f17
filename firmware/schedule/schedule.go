// Package schedule interleaves the steps of several motors so they start and finish together
package schedule

// Interleave calls step once per whole step of every motor. Motor i takes |counts[i]| steps,
// spread evenly over max(|counts|) ticks. tick is called at the start of each tick, before its
// steps, and may be nil
func Interleave(counts []int, tick func(t int), step func(i int, forward bool)) {
	total := 0
	abs := make([]int, len(counts))
	for i, c := range counts {
		if c < 0 {
			c = -c
		}
		abs[i] = c
		if c > total {
			total = c
		}
	}
	if total == 0 {
		return
	}

	// Bresenham accumulators start half full so single steps land mid move
	acc := make([]int, len(counts))
	for i := range acc {
		acc[i] = total / 2
	}

	for t := 0; t < total; t++ {
		if tick != nil {
			tick(t)
		}
		for i := range counts {
			acc[i] += abs[i]
			if acc[i] >= total {
				acc[i] -= total
				step(i, counts[i] > 0)
			}
		}
	}
}
