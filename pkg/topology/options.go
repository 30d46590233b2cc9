package topology

// DefaultReservedRoot is the name of CloudVision's top-level container.
const DefaultReservedRoot = "Tenant"

type config struct {
	reservedRoot string
	strict       bool
}

// Option configures [BuildTree] and [Extract].
type Option func(*config)

// WithReservedRoot sets the name of the synthetic root container. An empty
// name keeps [DefaultReservedRoot].
func WithReservedRoot(name string) Option {
	return func(c *config) {
		if name != "" {
			c.reservedRoot = name
		}
	}
}

// WithStrict makes duplicate container names an error instead of a recorded
// [Duplicate].
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

func newConfig(opts []Option) config {
	c := config{reservedRoot: DefaultReservedRoot}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
