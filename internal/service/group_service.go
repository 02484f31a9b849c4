package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/internal/auth"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/middleware"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/models"
	"github.com/FilipPawlowski3TP/MoneySplit/internal/storage"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api/apiconnect"
)

var errGroupIDRequired = errors.New("group_id required")

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// CreateGroup creates a new group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateGroup request received", "name", name, "user_id", userID)

	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name is required"))
	}

	group := &models.Group{Name: name, CreatedBy: userID}
	for attempt := 1; ; attempt++ {
		if group.InviteCode, err = newInviteCode(); err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}

		err = s.store.CreateGroup(ctx, group)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrAlreadyExists) || attempt == maxInviteCodeAttempts {
			slog.Error("CreateGroup failed", "attempt", attempt, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		slog.Debug("Invite code collision, retrying", "attempt", attempt)
		group.ID = ""
	}

	created, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to fetch created group", "group_id", group.ID, "error", err)
		return nil, storeError(err, "Group not found")
	}

	slog.Info("Group created", "group_id", created.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(created)}), nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storeError(err, "Group not found")
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// JoinGroup adds the caller to the group owning the invite code.
// Joining a group twice is a no-op.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	code := normalizeInviteCode(req.Msg.InviteCode)
	slog.Info("JoinGroup request received", "user_id", userID)

	if code == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invite code is required"))
	}

	group, err := s.store.GetGroupByInviteCode(ctx, code)
	if err != nil {
		slog.Warn("JoinGroup failed", "user_id", userID, "error", err)
		return nil, storeError(err, "Invalid invite code")
	}

	if !group.HasMember(userID) {
		if err := s.store.AddMember(ctx, group.ID, userID); err != nil {
			slog.Error("Failed to add group member", "group_id", group.ID, "user_id", userID, "error", err)
			return nil, storeError(err, "Group not found")
		}
		if group, err = s.store.GetGroup(ctx, group.ID); err != nil {
			return nil, storeError(err, "Group not found")
		}
		slog.Info("User joined group", "group_id", group.ID, "user_id", userID)
	}

	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group)}), nil
}

// RegenerateInviteCode replaces a group's invite code; the old code stops working.
func (s *GroupService) RegenerateInviteCode(ctx context.Context, req *connect.Request[api.RegenerateInviteCodeRequest]) (*connect.Response[api.RegenerateInviteCodeResponse], error) {
	slog.Info("RegenerateInviteCode request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}

	var err error
	for attempt := 1; attempt <= maxInviteCodeAttempts; attempt++ {
		var code string
		if code, err = newInviteCode(); err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		if err = s.store.UpdateInviteCode(ctx, req.Msg.GroupID, code); !errors.Is(err, storage.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		slog.Error("RegenerateInviteCode failed", "group_id", req.Msg.GroupID, "error", err)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("no free invite code after %d attempts", maxInviteCodeAttempts))
		}
		return nil, storeError(err, "Group not found")
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, storeError(err, "Group not found")
	}

	slog.Info("Invite code regenerated", "group_id", group.ID)
	return connect.NewResponse(&api.RegenerateInviteCodeResponse{Group: toAPIGroup(group)}), nil
}

// RemoveMember removes a user from a group. Their past expenses stay in the ledger.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)

	if req.Msg.GroupID == "" || req.Msg.UserID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group_id and user_id required"))
	}

	if err := s.store.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		slog.Error("RemoveMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storeError(err, "Member not found")
	}

	slog.Info("Member removed", "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// DeleteGroup removes a group by ID along with its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storeError(err, "Group not found")
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
