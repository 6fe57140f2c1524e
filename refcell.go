package refcell

// Releaser is implemented by values that give up one share of ownership when
// released. *refc.Handle[T] implements it for every T.
type Releaser interface {
	Release()
}

// Validator is optionally implemented by releasers that can report whether the
// underlying resource was allocated successfully.
type Validator interface {
	Valid() bool
}
