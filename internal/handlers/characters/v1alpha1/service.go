// Package v1alpha1 serves the character gallery over gRPC.
//
// The service is described by hand over protobuf well-known types, so no
// generated stubs are needed: characters travel as google.protobuf.Struct in
// the same JSON shape the store persists.
package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "charforge.v1alpha1.CharacterService"

// Full method names.
const (
	ListCharactersMethod     = "/" + ServiceName + "/ListCharacters"
	GetCharacterMethod       = "/" + ServiceName + "/GetCharacter"
	CreateCharacterMethod    = "/" + ServiceName + "/CreateCharacter"
	UpdateCharacterMethod    = "/" + ServiceName + "/UpdateCharacter"
	DeleteCharacterMethod    = "/" + ServiceName + "/DeleteCharacter"
	GeneratePortraitMethod   = "/" + ServiceName + "/GeneratePortrait"
	AttachPortraitMethod     = "/" + ServiceName + "/AttachPortrait"
	RegeneratePortraitMethod = "/" + ServiceName + "/RegeneratePortrait"
)

// CharacterServiceServer is the server API for the character service.
//
// Request and response shapes:
//
//	ListCharacters     Empty          -> {"items": [character...]}
//	GetCharacter       StringValue id -> character
//	CreateCharacter    character      -> character
//	UpdateCharacter    {"id", "patch"} -> character
//	DeleteCharacter    StringValue id -> StringValue id
//	GeneratePortrait   {"raceName", "className", "detail"} -> portrait
//	AttachPortrait     {"id", "imageUrl"} -> character
//	RegeneratePortrait {"id", "detail"} -> {"portrait", "character"}
//
// A portrait is {"requestId", "prompt", "contentType", "imageUrl"} where
// imageUrl is a data URL.
type CharacterServiceServer interface {
	ListCharacters(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetCharacter(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCharacter(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	GeneratePortrait(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AttachPortrait(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegeneratePortrait(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCharacterServiceServer registers srv on s.
func RegisterCharacterServiceServer(s grpc.ServiceRegistrar, srv CharacterServiceServer) {
	s.RegisterService(&CharacterServiceDesc, srv)
}

// unary adapts one typed server method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](
	method string,
	call func(CharacterServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CharacterServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CharacterServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CharacterServiceDesc is the grpc.ServiceDesc for the character service.
var CharacterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CharacterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCharacters", Handler: unary(ListCharactersMethod, CharacterServiceServer.ListCharacters)},
		{MethodName: "GetCharacter", Handler: unary(GetCharacterMethod, CharacterServiceServer.GetCharacter)},
		{MethodName: "CreateCharacter", Handler: unary(CreateCharacterMethod, CharacterServiceServer.CreateCharacter)},
		{MethodName: "UpdateCharacter", Handler: unary(UpdateCharacterMethod, CharacterServiceServer.UpdateCharacter)},
		{MethodName: "DeleteCharacter", Handler: unary(DeleteCharacterMethod, CharacterServiceServer.DeleteCharacter)},
		{MethodName: "GeneratePortrait", Handler: unary(GeneratePortraitMethod, CharacterServiceServer.GeneratePortrait)},
		{MethodName: "AttachPortrait", Handler: unary(AttachPortraitMethod, CharacterServiceServer.AttachPortrait)},
		{MethodName: "RegeneratePortrait", Handler: unary(RegeneratePortraitMethod, CharacterServiceServer.RegeneratePortrait)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "charforge/v1alpha1/character.proto",
}

// CharacterServiceClient is the client API for the character service.
type CharacterServiceClient interface {
	ListCharacters(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetCharacter(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateCharacter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateCharacter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteCharacter(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GeneratePortrait(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AttachPortrait(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RegeneratePortrait(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type characterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCharacterServiceClient creates a client over cc.
func NewCharacterServiceClient(cc grpc.ClientConnInterface) CharacterServiceClient {
	return &characterServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *characterServiceClient) ListCharacters(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, ListCharactersMethod, in, opts)
}

func (c *characterServiceClient) GetCharacter(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, GetCharacterMethod, in, opts)
}

func (c *characterServiceClient) CreateCharacter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, CreateCharacterMethod, in, opts)
}

func (c *characterServiceClient) UpdateCharacter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, UpdateCharacterMethod, in, opts)
}

func (c *characterServiceClient) DeleteCharacter(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, DeleteCharacterMethod, in, opts)
}

func (c *characterServiceClient) GeneratePortrait(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, GeneratePortraitMethod, in, opts)
}

func (c *characterServiceClient) AttachPortrait(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, AttachPortraitMethod, in, opts)
}

func (c *characterServiceClient) RegeneratePortrait(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RegeneratePortraitMethod, in, opts)
}
