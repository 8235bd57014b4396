package snapshot

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// #endregion

// #region service-desc

const (
	ServiceName       = "ensemble.v1.SnapshotService"
	getSnapshotMethod = "/" + ServiceName + "/GetSnapshot"
)

// SnapshotServiceServer is the server side of the read-only snapshot service.
type SnapshotServiceServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// SnapshotServiceClient is the client side of the snapshot service.
type SnapshotServiceClient interface {
	GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// serviceDesc uses well-known message types only, so no generated code is needed.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SnapshotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ensemble/v1/snapshot.proto",
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SnapshotServiceServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SnapshotServiceServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterSnapshotServiceServer attaches srv to a gRPC server.
func RegisterSnapshotServiceServer(s grpc.ServiceRegistrar, srv SnapshotServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

type snapshotServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSnapshotServiceClient wraps a connection.
func NewSnapshotServiceClient(cc grpc.ClientConnInterface) SnapshotServiceClient {
	return &snapshotServiceClient{cc: cc}
}

func (c *snapshotServiceClient) GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getSnapshotMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion

// #region conversion

// ToStruct renders an engine state as the snapshot JSON object.
func ToStruct(s state.EngineState) (*structpb.Struct, error) {
	data, err := state.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode snapshot object: %w", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return st, nil
}

// FromStruct parses the snapshot JSON object back into an engine state.
func FromStruct(st *structpb.Struct) (state.EngineState, error) {
	data, err := json.Marshal(st.AsMap())
	if err != nil {
		return state.EngineState{}, fmt.Errorf("encode snapshot object: %w", err)
	}
	return state.Unmarshal(data)
}

// #endregion
