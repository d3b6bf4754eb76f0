package kvrpc

import (
	"context"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"google.golang.org/grpc"
)

const serviceName = "bridge.kv.v1.KV"

// MaxMessageSize bounds a single message; blob payloads can be large.
const MaxMessageSize = 256 << 20

type (
	KeyRequest struct {
		Key string `cbor:"1,keyasint"`
	}
	GetResponse struct {
		Value []byte `cbor:"1,keyasint"`
		Found bool   `cbor:"2,keyasint"`
	}
	HasResponse struct {
		Found bool `cbor:"1,keyasint"`
	}
	PutRequest struct {
		Key   string `cbor:"1,keyasint"`
		Value []byte `cbor:"2,keyasint"`
	}
	WriteRequest struct {
		Ops []kv.Op `cbor:"1,keyasint"`
	}
	Empty struct{}
	ScanRequest struct {
		Prefix   string `cbor:"1,keyasint"`
		Start    string `cbor:"2,keyasint"`
		End      string `cbor:"3,keyasint"`
		Limit    int    `cbor:"4,keyasint"`
		KeysOnly bool   `cbor:"5,keyasint"`
		Reverse  bool   `cbor:"6,keyasint"`
	}
	ScanItem struct {
		Key   string `cbor:"1,keyasint"`
		Value []byte `cbor:"2,keyasint,omitempty"`
	}
)

type kvServer interface {
	Get(context.Context, *KeyRequest) (*GetResponse, error)
	Has(context.Context, *KeyRequest) (*HasResponse, error)
	Put(context.Context, *PutRequest) (*Empty, error)
	Write(context.Context, *WriteRequest) (*Empty, error)
	Scan(*ScanRequest, grpc.ServerStream) error
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

func unaryHandler[Req any](name string, call func(kvServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(kvServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(kvServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*kvServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Get", func(s kvServer, ctx context.Context, in *KeyRequest) (any, error) {
			return s.Get(ctx, in)
		}),
		unaryHandler("Has", func(s kvServer, ctx context.Context, in *KeyRequest) (any, error) {
			return s.Has(ctx, in)
		}),
		unaryHandler("Put", func(s kvServer, ctx context.Context, in *PutRequest) (any, error) {
			return s.Put(ctx, in)
		}),
		unaryHandler("Write", func(s kvServer, ctx context.Context, in *WriteRequest) (any, error) {
			return s.Write(ctx, in)
		}),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName: "Scan",
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(ScanRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(kvServer).Scan(in, stream)
			},
			ServerStreams: true,
		},
	},
	Metadata: "kv.cbor",
}
