package model

const (
	RoleMember = "member"
	RoleStaff  = "staff"
)

// Identity is a resolved caller of the engine.
type Identity struct {
	MemberID int64
	Role     string
}
