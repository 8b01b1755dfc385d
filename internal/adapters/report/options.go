package report

// Option applies a configuration option to text rendering.
type Option func(*textOptions)

type textOptions struct {
	color   bool
	details bool
}

// WithColor enables ANSI colour in the status line.
func WithColor(enabled bool) Option {
	return func(o *textOptions) {
		o.color = enabled
	}
}

// WithErrors adds each failed category's error message below the table.
func WithErrors(enabled bool) Option {
	return func(o *textOptions) {
		o.details = enabled
	}
}
