package kvrpc

import (
	"context"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server serves a kv.Store to other bridge processes.
type Server struct {
	store kv.Store
}

// NewServer builds a gRPC server exposing store with logging, recovery and metrics middleware.
func NewServer(store kv.Store, logger *zap.Logger) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger, grpcZap.WithDecider(quietDecider)),
	}
	stream := []grpc.StreamServerInterceptor{
		grpcRecovery.StreamServerInterceptor(),
		grpcCtxTags.StreamServerInterceptor(),
		grpcPrometheus.StreamServerInterceptor,
		grpcZap.StreamServerInterceptor(logger, grpcZap.WithDecider(quietDecider)),
	}
	srv := grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.MaxRecvMsgSize(MaxMessageSize),
		grpc.MaxSendMsgSize(MaxMessageSize),
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(unary...)),
		grpc.StreamInterceptor(grpcMiddleware.ChainStreamServer(stream...)),
	)
	srv.RegisterService(&serviceDesc, &Server{store: store})
	grpcPrometheus.Register(srv)
	return srv
}

// Only failed calls are logged; the KV service is polled constantly.
func quietDecider(_ string, err error) bool {
	return err != nil
}

func (s *Server) Get(ctx context.Context, in *KeyRequest) (*GetResponse, error) {
	value, err := s.store.Get(ctx, in.Key)
	if err == kv.ErrNotFound {
		return &GetResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &GetResponse{Value: value, Found: true}, nil
}

func (s *Server) Has(ctx context.Context, in *KeyRequest) (*HasResponse, error) {
	found, err := s.store.Has(ctx, in.Key)
	if err != nil {
		return nil, err
	}
	return &HasResponse{Found: found}, nil
}

func (s *Server) Put(ctx context.Context, in *PutRequest) (*Empty, error) {
	if err := s.store.Put(ctx, in.Key, in.Value); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) Write(ctx context.Context, in *WriteRequest) (*Empty, error) {
	if err := s.store.Write(ctx, &kv.Batch{Ops: in.Ops}); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) Scan(in *ScanRequest, stream grpc.ServerStream) error {
	r := kv.Range{
		Prefix:   in.Prefix,
		Start:    in.Start,
		End:      in.End,
		Limit:    in.Limit,
		KeysOnly: in.KeysOnly,
		Reverse:  in.Reverse,
	}
	return s.store.Scan(stream.Context(), r, func(key string, value []byte) error {
		return stream.SendMsg(&ScanItem{Key: key, Value: value})
	})
}
