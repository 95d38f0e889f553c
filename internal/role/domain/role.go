package domain

// Role names a set of permissions referenced from access token claims.
type Role struct {
	ID   string
	Name string
}
