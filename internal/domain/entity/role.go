package entity

// Roles assigned to users. Authorization decisions happen downstream; the
// auth core only embeds the role into access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
