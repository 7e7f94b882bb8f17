package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterleave(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{"Empty", nil},
		{"Zero", []int{0, 0, 0}},
		{"Single", []int{5}},
		{"Mixed", []int{120, -120, 0, 7, -3, 1}},
		{"Uneven", []int{3, 1000, -999, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]int, len(tt.counts))
			ticks := 0
			Interleave(tt.counts, func(int) { ticks++ }, func(i int, forward bool) {
				if forward {
					got[i]++
				} else {
					got[i]--
				}
			})

			assert.Equal(t, append([]int{}, tt.counts...), got)

			longest := 0
			for _, c := range tt.counts {
				if c < 0 {
					c = -c
				}
				longest = max(longest, c)
			}
			assert.Equal(t, longest, ticks)
		})
	}
}

func TestInterleaveSpread(t *testing.T) {
	// the short motor's steps are spread over the long motor's move
	var at []int
	tick := 0
	Interleave([]int{10, 2}, func(t int) { tick = t }, func(i int, _ bool) {
		if i == 1 {
			at = append(at, tick)
		}
	})

	assert.Equal(t, []int{2, 7}, at)
}
