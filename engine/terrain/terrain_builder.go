package terrain

// GeneratorBuilderOption is a functional option used to configure a Generator during construction.
type GeneratorBuilderOption func(*generator)

// WithPolicy sets the tile placement policy.
//
// Parameters:
//   - p: the placement policy
//
// Returns:
//   - GeneratorBuilderOption: a function that sets the policy
func WithPolicy(p Policy) GeneratorBuilderOption {
	return func(g *generator) {
		g.policy = p
	}
}

// WithNoise sets the noise implementation.
//
// Parameters:
//   - kind: the noise implementation
//
// Returns:
//   - GeneratorBuilderOption: a function that sets the noise kind
func WithNoise(kind NoiseKind) GeneratorBuilderOption {
	return func(g *generator) {
		g.noise = kind
	}
}

// WithSparseColumns drops layered columns whose noise sample is not positive.
// Has no effect on the ring policy.
func WithSparseColumns(sparse bool) GeneratorBuilderOption {
	return func(g *generator) {
		g.sparseColumns = sparse
	}
}
