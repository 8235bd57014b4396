package snapshot

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
)

// #region client-struct
// Client reads engine snapshots from a running service.
type Client struct {
	conn   *grpc.ClientConn
	client SnapshotServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to the snapshot service. Extra dial options are
// applied after the default insecure transport credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewSnapshotServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
func NewClientWithService(svc SnapshotServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region get
// Get fetches the current engine state.
func (c *Client) Get(ctx context.Context) (state.EngineState, error) {
	resp, err := c.client.GetSnapshot(ctx, &emptypb.Empty{})
	if err != nil {
		return state.EngineState{}, fmt.Errorf("get snapshot rpc: %w", err)
	}
	s, err := FromStruct(resp)
	if err != nil {
		return state.EngineState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// #endregion get
