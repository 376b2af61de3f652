package models

// Authority names a permission granted to a session.
type Authority string

// AuthorityAdmin is the single authority every session carries.
const AuthorityAdmin Authority = "admin"

// SessionClaims is what identity resolution knows about the caller. It is
// assembled from a User record at sign-in and never carries the hash.
type SessionClaims struct {
	Username    string
	Authorities []Authority
	TokenID     string
}

// Has reports whether the session was granted a.
func (c SessionClaims) Has(a Authority) bool {
	for _, got := range c.Authorities {
		if got == a {
			return true
		}
	}
	return false
}
