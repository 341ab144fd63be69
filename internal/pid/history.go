package pid

import (
	"github.com/asecurityteam/rolling"
)

// ErrorHistory keeps the most recent error samples, evicting the oldest one once full.
// It is purely informational and never read by the control law.
type ErrorHistory struct {
	size   int
	count  int
	next   int
	window *rolling.PointPolicy
}

func NewErrorHistory(size int) *ErrorHistory {
	return &ErrorHistory{
		size:   size,
		window: rolling.NewPointPolicy(rolling.NewWindow(size)),
	}
}

func (h *ErrorHistory) Append(cte float64) {
	h.window.Append(cte)
	h.next = (h.next + 1) % h.size
	if h.count < h.size {
		h.count++
	}
}

// Values returns the held samples, oldest first
func (h *ErrorHistory) Values() []float64 {
	result := make([]float64, 0, h.count)
	h.window.Reduce(func(w rolling.Window) float64 {
		start := 0
		if h.count == h.size {
			start = h.next
		}
		for i := 0; i < h.count; i++ {
			result = append(result, w[(start+i)%h.size][0])
		}
		return 0
	})
	return result
}
