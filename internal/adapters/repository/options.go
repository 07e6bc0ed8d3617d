package repository

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithRepeatRetirePolicy controls whether a shoe the user already retired
// may be retired again, producing a second graveyard entry. The default is
// false: a repeat retirement fails with ErrAlreadyRetired.
func WithRepeatRetirePolicy(allow bool) Option {
	return func(s *SQLiteStore) {
		s.allowRepeatRetire = allow
	}
}
