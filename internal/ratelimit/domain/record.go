package domain

import "time"

// Policy is the number of attempts allowed per fixed window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Record tracks attempts for one action:identity key inside the current window.
type Record struct {
	Key          string
	WindowStart  time.Time
	AttemptCount int
	Limit        int
	Window       time.Duration
}

// Elapsed reports whether the record's window has ended at now.
func (r *Record) Elapsed(now time.Time) bool {
	return now.Sub(r.WindowStart) >= r.Window
}

// Decision is the outcome of one attempt.
type Decision struct {
	Allowed bool
	// RetryAfter is how long until the window resets; zero when allowed.
	RetryAfter time.Duration
	// Remaining is how many further attempts the window allows.
	Remaining int
}

// Key builds the record key for action and identity.
func Key(action, identity string) string {
	return action + ":" + identity
}
