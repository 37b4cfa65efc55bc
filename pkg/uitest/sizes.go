package uitest

// Size represents terminal dimensions.
type Size struct {
	Width  int
	Height int
}

// Predefined terminal sizes for consistent testing.
var (
	// Tiny fits one short word per page, which keeps page counts obvious.
	Tiny     = Size{Width: 20, Height: 2}
	Compact  = Size{Width: 80, Height: 24}
	Standard = Size{Width: 120, Height: 40}
)
