package domain

// Permission is the access level carried by a session token.
type Permission string

const (
	PermissionCustomer Permission = "customer"
	PermissionEmployee Permission = "employee"
	PermissionManager  Permission = "manager"
	PermissionAdmin    Permission = "admin"
)

var permissionRank = map[Permission]int{
	PermissionCustomer: 1,
	PermissionEmployee: 2,
	PermissionManager:  3,
	PermissionAdmin:    4,
}

func (p Permission) Valid() bool {
	_, ok := permissionRank[p]
	return ok
}

// AtLeast reports whether p grants everything min grants.
func (p Permission) AtLeast(min Permission) bool {
	return p.Valid() && permissionRank[p] >= permissionRank[min]
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID     string     `json:"userId"`
	Permission Permission `json:"permission"`
}
