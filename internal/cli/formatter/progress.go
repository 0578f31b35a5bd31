package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders a share-of-total bar like [████░░░░]  45%, with the
// filled part in the category color.
func RenderShare(pct float64, width int, hex string) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	if width < 2 {
		width = 2
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	empty := width - filled

	bar := CategoryStyle(hex).Render(strings.Repeat(filledBlock, filled)) +
		StyleDim.Render(strings.Repeat(emptyBlock, empty))

	return fmt.Sprintf("[%s] %3.0f%%", bar, pct*100)
}
