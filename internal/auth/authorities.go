package auth

// RolePrefix marks authorities that represent role membership. A user
// assigned the role "manager" carries the authority "ROLE_MANAGER" next
// to every permission key the role grants.
const RolePrefix = "ROLE_"

// Authorities recognized by the role administration API.
const (
	PermReadRole   = "PERM_READ_ROLE"
	PermWriteRole  = "PERM_WRITE_ROLE"
	PermDeleteRole = "PERM_DELETE_ROLE"
	PermReadUser   = "PERM_READ_USER"
)
