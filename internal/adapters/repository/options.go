package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMaxMatchesPerUser caps how many matches are retained per participant.
func WithMaxMatchesPerUser(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.maxPerUser = n
		}
	}
}
