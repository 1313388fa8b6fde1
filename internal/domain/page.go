package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request. The zero Page means "everything".
type Page struct {
	Number int
	Size   int
}

// NewPage clamps raw query values into a usable page.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Unbounded reports whether the page should return all rows.
func (p Page) Unbounded() bool {
	return p.Size <= 0
}

// Window applies the page to a slice length, returning [lo, hi).
func (p Page) Window(n int) (int, int) {
	if p.Unbounded() {
		return 0, n
	}
	lo := p.Offset()
	if lo > n {
		lo = n
	}
	hi := lo + p.Size
	if hi > n {
		hi = n
	}
	return lo, hi
}
