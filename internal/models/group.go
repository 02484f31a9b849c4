package models

// Group represents a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// InviteCode is the 6-character code other users present to join.
	// Unique across groups.
	InviteCode string

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	// Members is the list of users in this group, in join order.
	// Populated by every store read.
	Members []GroupMember

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the group row.
	UpdatedAt int64
}

// GroupMember is a user's membership in a group.
type GroupMember struct {
	UserID      string
	DisplayName string
	Email       string
	JoinedAt    int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
