package skeleton

// DeriverBuilderOption is a functional option for configuring a Deriver via NewDeriver.
type DeriverBuilderOption func(*deriver)

// WithLengthFactor is an option builder that sets the bone length to x scale factor.
//
// Parameters:
//   - factor: the length factor
//
// Returns:
//   - DeriverBuilderOption: a function that applies the factor option to a deriver
func WithLengthFactor(factor float32) DeriverBuilderOption {
	return func(d *deriver) {
		d.lengthFactor = factor
	}
}

// WithSize is an option builder that sets the bone transform's y and z scale.
//
// Parameters:
//   - size: the bone size
//
// Returns:
//   - DeriverBuilderOption: a function that applies the size option to a deriver
func WithSize(size float32) DeriverBuilderOption {
	return func(d *deriver) {
		d.size = size
	}
}
