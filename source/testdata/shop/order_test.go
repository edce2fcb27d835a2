package shop

// Ghost must never show up in a store; test files are not part of the
// described package surface.
type Ghost struct {
	Boo string
}
