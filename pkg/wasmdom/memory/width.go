package memory

import "strconv"

// Width is the guest word width in bytes: the size of pointers is always 4,
// but native ints ("guest-width" fields) follow Width.
type Width uint32

const (
	// Width32 is the word width of a wasm32 guest with 32-bit ints.
	Width32 Width = 4
	// Width64 is the word width of a guest compiled with 64-bit ints.
	Width64 Width = 8
)

// Valid reports whether w is 4 or 8.
func (w Width) Valid() bool {
	return w == Width32 || w == Width64
}

// Validate returns a *ConfigError if w is not supported.
func (w Width) Validate() error {
	if !w.Valid() {
		return &ConfigError{Width: int(w)}
	}
	return nil
}

// ParseWidth converts a byte count into a Width.
func ParseWidth(n int) (Width, error) {
	w := Width(n)
	if n < 0 || !w.Valid() {
		return 0, &ConfigError{Width: n}
	}
	return w, nil
}

func (w Width) String() string {
	return strconv.Itoa(int(w))
}
