package domespb

import (
	"context"

	"google.golang.org/grpc"
)

// FleetServiceServer is the server-side contract the fleet gateway
// implements, in the shape protoc-gen-go-grpc would have generated from a
// fleet.proto service definition — hand-written here since no protoc
// toolchain runs in this build (see codec.go for how the wire format is
// substituted).
type FleetServiceServer interface {
	ListPods(context.Context, *ListPodsRequest) (*ListPodsResponse, error)
	ArmPod(context.Context, *ArmPodRequest) (*ArmPodResponse, error)
	TraceDump(context.Context, *TraceDumpRequest) (*TraceDumpResponse, error)
	GetHostStats(context.Context, *GetHostStatsRequest) (*GetHostStatsResponse, error)
}

// FleetServiceClient is the client-side stub.
type FleetServiceClient interface {
	ListPods(ctx context.Context, in *ListPodsRequest, opts ...grpc.CallOption) (*ListPodsResponse, error)
	ArmPod(ctx context.Context, in *ArmPodRequest, opts ...grpc.CallOption) (*ArmPodResponse, error)
	TraceDump(ctx context.Context, in *TraceDumpRequest, opts ...grpc.CallOption) (*TraceDumpResponse, error)
	GetHostStats(ctx context.Context, in *GetHostStatsRequest, opts ...grpc.CallOption) (*GetHostStatsResponse, error)
}

type fleetServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFleetServiceClient returns a client stub bound to cc.
func NewFleetServiceClient(cc grpc.ClientConnInterface) FleetServiceClient {
	return &fleetServiceClient{cc: cc}
}

func (c *fleetServiceClient) ListPods(ctx context.Context, in *ListPodsRequest, opts ...grpc.CallOption) (*ListPodsResponse, error) {
	out := new(ListPodsResponse)
	if err := c.cc.Invoke(ctx, "/domes.fleet.v1.FleetService/ListPods", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetServiceClient) ArmPod(ctx context.Context, in *ArmPodRequest, opts ...grpc.CallOption) (*ArmPodResponse, error) {
	out := new(ArmPodResponse)
	if err := c.cc.Invoke(ctx, "/domes.fleet.v1.FleetService/ArmPod", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetServiceClient) TraceDump(ctx context.Context, in *TraceDumpRequest, opts ...grpc.CallOption) (*TraceDumpResponse, error) {
	out := new(TraceDumpResponse)
	if err := c.cc.Invoke(ctx, "/domes.fleet.v1.FleetService/TraceDump", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetServiceClient) GetHostStats(ctx context.Context, in *GetHostStatsRequest, opts ...grpc.CallOption) (*GetHostStatsResponse, error) {
	out := new(GetHostStatsResponse)
	if err := c.cc.Invoke(ctx, "/domes.fleet.v1.FleetService/GetHostStats", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UnimplementedFleetServiceServer embeds into concrete implementations for
// forward compatibility, matching pb.UnimplementedHasherServiceServer's
// role in the teacher's server.go.
type UnimplementedFleetServiceServer struct{}

func (UnimplementedFleetServiceServer) ListPods(context.Context, *ListPodsRequest) (*ListPodsResponse, error) {
	return nil, errUnimplemented("ListPods")
}
func (UnimplementedFleetServiceServer) ArmPod(context.Context, *ArmPodRequest) (*ArmPodResponse, error) {
	return nil, errUnimplemented("ArmPod")
}
func (UnimplementedFleetServiceServer) TraceDump(context.Context, *TraceDumpRequest) (*TraceDumpResponse, error) {
	return nil, errUnimplemented("TraceDump")
}
func (UnimplementedFleetServiceServer) GetHostStats(context.Context, *GetHostStatsRequest) (*GetHostStatsResponse, error) {
	return nil, errUnimplemented("GetHostStats")
}

func errUnimplemented(method string) error {
	return &unimplementedError{method: method}
}

type unimplementedError struct{ method string }

func (e *unimplementedError) Error() string {
	return "domespb: " + e.method + " not implemented"
}

func _FleetService_ListPods_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListPodsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServiceServer).ListPods(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/domes.fleet.v1.FleetService/ListPods"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServiceServer).ListPods(ctx, req.(*ListPodsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FleetService_ArmPod_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ArmPodRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServiceServer).ArmPod(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/domes.fleet.v1.FleetService/ArmPod"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServiceServer).ArmPod(ctx, req.(*ArmPodRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FleetService_TraceDump_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TraceDumpRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServiceServer).TraceDump(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/domes.fleet.v1.FleetService/TraceDump"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServiceServer).TraceDump(ctx, req.(*TraceDumpRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FleetService_GetHostStats_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetHostStatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServiceServer).GetHostStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/domes.fleet.v1.FleetService/GetHostStats"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FleetServiceServer).GetHostStats(ctx, req.(*GetHostStatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// FleetService_ServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc
// would have emitted for a fleet.proto FleetService definition.
var FleetService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "domes.fleet.v1.FleetService",
	HandlerType: (*FleetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPods", Handler: _FleetService_ListPods_Handler},
		{MethodName: "ArmPod", Handler: _FleetService_ArmPod_Handler},
		{MethodName: "TraceDump", Handler: _FleetService_TraceDump_Handler},
		{MethodName: "GetHostStats", Handler: _FleetService_GetHostStats_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fleet.proto",
}

// RegisterFleetServiceServer registers srv on s, matching the generated
// pb.RegisterHasherServiceServer call in the teacher's cmd/driver entrypoints.
func RegisterFleetServiceServer(s grpc.ServiceRegistrar, srv FleetServiceServer) {
	s.RegisterService(&FleetService_ServiceDesc, srv)
}
