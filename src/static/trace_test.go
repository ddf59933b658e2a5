package static

import (
	"testing"

	"flowc/src/color"
)

func TestTraceColoringDoesNotPanic(t *testing.T) {
	items := []color.Item{
		{Group: "a", TreeID: 0, Lo: 0, Hi: 10, MaxStates: 10, MaxRepeats: 1},
		{Group: "b", TreeID: 1, Lo: 0, Hi: 5, MaxStates: 5, MaxRepeats: 2},
	}
	coloring := color.Coloring{"a": 0, "b": 0}
	aggregate := color.Aggregate(items, coloring)

	traceColoring(items, coloring, aggregate)
}

func TestTraceResetDoesNotPanic(t *testing.T) {
	traceReset(map[string]string{"g": "early_reset_g"}, map[string]string{"early_reset_g": "wrapper_early_reset_g"})
}
