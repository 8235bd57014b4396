package snapshot

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// #endregion

// #region server-struct

// Provider hands out copies of the current engine state.
// *orchestrator.Controller satisfies it.
type Provider interface {
	Snapshot() state.EngineState
}

// Server exposes a Provider over gRPC. It has no write methods.
type Server struct {
	provider Provider
	log      *slog.Logger
	grpc     *grpc.Server
	health   *health.Server
}

// #endregion

// #region constructor

// NewServer builds a gRPC server with the snapshot and health services registered.
func NewServer(provider Provider, log *slog.Logger, opts ...grpc.ServerOption) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{
		provider: provider,
		log:      log.With("component", "snapshot"),
		grpc:     grpc.NewServer(opts...),
		health:   health.NewServer(),
	}
	RegisterSnapshotServiceServer(s.grpc, s)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// #endregion

// #region get-snapshot

// GetSnapshot returns the current engine state as a JSON object.
func (s *Server) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	st, err := ToStruct(s.provider.Snapshot())
	if err != nil {
		s.log.Error("snapshot encode failed", "err", err)
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return st, nil
}

// #endregion

// #region serve

// Serve accepts connections on lis until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpc.Serve(lis)
	}()
	s.log.Info("snapshot service listening", "addr", lis.Addr().String())

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("grpc serve: %w", err)
	}
}

// ListenAndServe listens on a TCP address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// #endregion
