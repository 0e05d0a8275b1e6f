package domain

// UserRole controls what a registered account may do. Citizens submit
// reports and check ticket status; admins additionally manage ticket
// lifecycle.
type UserRole string

const (
	RoleCitizen UserRole = "citizen"
	RoleAdmin   UserRole = "admin"
)

// ValidRole reports whether the value belongs to the role enum.
func ValidRole(r UserRole) bool {
	return r == RoleCitizen || r == RoleAdmin
}

// User is a registered account.
type User struct {
	ID           string   `bson:"user_id"`
	Name         string   `bson:"name"`
	Email        string   `bson:"email"`
	Phone        string   `bson:"phone,omitempty"`
	PasswordHash string   `bson:"password_hash"`
	Role         UserRole `bson:"role"`
	CreatedAt    string   `bson:"created_at"`
}
