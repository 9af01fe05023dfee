package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "splitledger.v1.GroupService"

// Procedure paths of the GroupService.
const (
	GroupServiceCreateGroupProcedure     = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure        = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure      = "/splitledger.v1.GroupService/ListGroups"
	GroupServiceAddMemberProcedure       = "/splitledger.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure    = "/splitledger.v1.GroupService/RemoveMember"
	GroupServiceDeleteGroupProcedure     = "/splitledger.v1.GroupService/DeleteGroup"
	GroupServiceSetBudgetProcedure       = "/splitledger.v1.GroupService/SetBudget"
	GroupServiceGetBudgetStatusProcedure = "/splitledger.v1.GroupService/GetBudgetStatus"
)

// GroupServiceHandler manages groups, their rosters and budgets.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	SetBudget(context.Context, *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error)
	GetBudgetStatus(context.Context, *connect.Request[api.GetBudgetStatusRequest]) (*connect.Response[api.GetBudgetStatusResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceSetBudgetProcedure, connect.NewUnaryHandler(GroupServiceSetBudgetProcedure, svc.SetBudget, opts...))
	mux.Handle(GroupServiceGetBudgetStatusProcedure, connect.NewUnaryHandler(GroupServiceGetBudgetStatusProcedure, svc.GetBudgetStatus, opts...))
	return "/" + GroupServiceName + "/", mux
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

func (UnimplementedGroupServiceHandler) AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return nil, unimplemented(GroupServiceAddMemberProcedure)
}

func (UnimplementedGroupServiceHandler) RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return nil, unimplemented(GroupServiceRemoveMemberProcedure)
}

func (UnimplementedGroupServiceHandler) DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return nil, unimplemented(GroupServiceDeleteGroupProcedure)
}

func (UnimplementedGroupServiceHandler) SetBudget(context.Context, *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error) {
	return nil, unimplemented(GroupServiceSetBudgetProcedure)
}

func (UnimplementedGroupServiceHandler) GetBudgetStatus(context.Context, *connect.Request[api.GetBudgetStatusRequest]) (*connect.Response[api.GetBudgetStatusResponse], error) {
	return nil, unimplemented(GroupServiceGetBudgetStatusProcedure)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(strings.TrimPrefix(procedure, "/")+" is not implemented"))
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	SetBudget(context.Context, *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error)
	GetBudgetStatus(context.Context, *connect.Request[api.GetBudgetStatusRequest]) (*connect.Response[api.GetBudgetStatusResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService at baseURL
// (e.g. http://localhost:8080).
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:     connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:        connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:      connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMember:       connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		removeMember:    connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		deleteGroup:     connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		setBudget:       connect.NewClient[api.SetBudgetRequest, api.SetBudgetResponse](httpClient, baseURL+GroupServiceSetBudgetProcedure, opts...),
		getBudgetStatus: connect.NewClient[api.GetBudgetStatusRequest, api.GetBudgetStatusResponse](httpClient, baseURL+GroupServiceGetBudgetStatusProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup     *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup        *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups      *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember       *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	removeMember    *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	deleteGroup     *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	setBudget       *connect.Client[api.SetBudgetRequest, api.SetBudgetResponse]
	getBudgetStatus *connect.Client[api.GetBudgetStatusRequest, api.GetBudgetStatusResponse]
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

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) SetBudget(ctx context.Context, req *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error) {
	return c.setBudget.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetBudgetStatus(ctx context.Context, req *connect.Request[api.GetBudgetStatusRequest]) (*connect.Response[api.GetBudgetStatusResponse], error) {
	return c.getBudgetStatus.CallUnary(ctx, req)
}
