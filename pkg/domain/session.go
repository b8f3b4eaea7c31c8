package domain

// Session is the client's view of who is logged in.
// User is nil when nobody is authenticated.
type Session struct {
	User      *User `json:"user,omitempty"`
	IsLoading bool  `json:"is_loading"`
}

// Authenticated reports whether a user is present.
func (s Session) Authenticated() bool {
	return s.User != nil
}
