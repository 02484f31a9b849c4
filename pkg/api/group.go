package api

// Member is one user in a group.
type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	JoinedAt    int64  `json:"joinedAt"`
}

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedBy  string    `json:"createdBy"`
	Members    []*Member `json:"members"`
	CreatedAt  int64     `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type RegenerateInviteCodeRequest struct {
	GroupID string `json:"groupId"`
}

type RegenerateInviteCodeResponse struct {
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}
