package files

// Option applies a configuration option to the Finder.
type Option func(*Finder)

// WithIgnoreDirs replaces the directory names skipped during walks. Names may
// be glob patterns such as "*.egg-info".
func WithIgnoreDirs(dirs ...string) Option {
	return func(f *Finder) {
		f.ignore = append([]string(nil), dirs...)
	}
}
