package hwpdown

// Option configures parsing and conversion.
type Option func(*config)

type config struct {
	normalize    normalizeConfig
	skipMetadata bool
}

func newConfig(opts []Option) *config {
	cfg := &config{normalize: defaultNormalizeConfig()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithHeadingStyle adds a style-name prefix that marks heading paragraphs,
// on top of the built-in ones ("개요", "Heading", ...). The digit after
// the prefix selects the heading level.
func WithHeadingStyle(prefix string) Option {
	return func(cfg *config) {
		cfg.normalize.headingStyles = append(cfg.normalize.headingStyles, prefix)
	}
}

// WithoutMetadata skips reading the summary-information property set.
func WithoutMetadata() Option {
	return func(cfg *config) {
		cfg.skipMetadata = true
	}
}
