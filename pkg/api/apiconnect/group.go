package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/FilipPawlowski3TP/MoneySplit/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "moneysplit.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure          = "/moneysplit.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure             = "/moneysplit.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure           = "/moneysplit.v1.GroupService/ListGroups"
	GroupServiceJoinGroupProcedure            = "/moneysplit.v1.GroupService/JoinGroup"
	GroupServiceRegenerateInviteCodeProcedure = "/moneysplit.v1.GroupService/RegenerateInviteCode"
	GroupServiceRemoveMemberProcedure         = "/moneysplit.v1.GroupService/RemoveMember"
	GroupServiceDeleteGroupProcedure          = "/moneysplit.v1.GroupService/DeleteGroup"
)

// GroupServiceClient is a client for the moneysplit.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	RegenerateInviteCode(context.Context, *connect.Request[api.RegenerateInviteCodeRequest]) (*connect.Response[api.RegenerateInviteCodeResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
}

// NewGroupServiceClient constructs a client for the moneysplit.v1.GroupService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:          connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:             connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:           connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		joinGroup:            connect.NewClient[api.JoinGroupRequest, api.JoinGroupResponse](httpClient, baseURL+GroupServiceJoinGroupProcedure, opts...),
		regenerateInviteCode: connect.NewClient[api.RegenerateInviteCodeRequest, api.RegenerateInviteCodeResponse](httpClient, baseURL+GroupServiceRegenerateInviteCodeProcedure, opts...),
		removeMember:         connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		deleteGroup:          connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup          *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup             *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups           *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	joinGroup            *connect.Client[api.JoinGroupRequest, api.JoinGroupResponse]
	regenerateInviteCode *connect.Client[api.RegenerateInviteCodeRequest, api.RegenerateInviteCodeResponse]
	removeMember         *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	deleteGroup          *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) RegenerateInviteCode(ctx context.Context, req *connect.Request[api.RegenerateInviteCodeRequest]) (*connect.Response[api.RegenerateInviteCodeResponse], error) {
	return c.regenerateInviteCode.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by the moneysplit.v1.GroupService server.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	RegenerateInviteCode(context.Context, *connect.Request[api.RegenerateInviteCodeRequest]) (*connect.Response[api.RegenerateInviteCodeResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createGroup := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	getGroup := connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...)
	listGroups := connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...)
	joinGroup := connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts...)
	regenerateInviteCode := connect.NewUnaryHandler(GroupServiceRegenerateInviteCodeProcedure, svc.RegenerateInviteCode, opts...)
	removeMember := connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...)
	deleteGroup := connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...)

	return "/" + GroupServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroup.ServeHTTP(w, r)
		case GroupServiceListGroupsProcedure:
			listGroups.ServeHTTP(w, r)
		case GroupServiceJoinGroupProcedure:
			joinGroup.ServeHTTP(w, r)
		case GroupServiceRegenerateInviteCodeProcedure:
			regenerateInviteCode.ServeHTTP(w, r)
		case GroupServiceRemoveMemberProcedure:
			removeMember.ServeHTTP(w, r)
		case GroupServiceDeleteGroupProcedure:
			deleteGroup.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, unimplemented(GroupServiceCreateGroupProcedure)
}

func (UnimplementedGroupServiceHandler) GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return nil, unimplemented(GroupServiceGetGroupProcedure)
}

func (UnimplementedGroupServiceHandler) ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return nil, unimplemented(GroupServiceListGroupsProcedure)
}

func (UnimplementedGroupServiceHandler) JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return nil, unimplemented(GroupServiceJoinGroupProcedure)
}

func (UnimplementedGroupServiceHandler) RegenerateInviteCode(context.Context, *connect.Request[api.RegenerateInviteCodeRequest]) (*connect.Response[api.RegenerateInviteCodeResponse], error) {
	return nil, unimplemented(GroupServiceRegenerateInviteCodeProcedure)
}

func (UnimplementedGroupServiceHandler) RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return nil, unimplemented(GroupServiceRemoveMemberProcedure)
}

func (UnimplementedGroupServiceHandler) DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return nil, unimplemented(GroupServiceDeleteGroupProcedure)
}
