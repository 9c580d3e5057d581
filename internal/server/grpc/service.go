package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "gophauth.v1.AuthService"

// Full method names.
const (
	MethodRegister = "/" + serviceName + "/Register"
	MethodLogin    = "/" + serviceName + "/Login"
	MethodLogout   = "/" + serviceName + "/Logout"
	MethodWhoAmI   = "/" + serviceName + "/WhoAmI"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	SubjectID string `json:"subject_id"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	SubjectID string `json:"subject_id"`
}

// AuthServiceServer is the server API of gophauth.v1.AuthService.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error)
}

func unaryMethod[Req, Resp any](name string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AuthServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Register", AuthServiceServer.Register),
		unaryMethod("Login", AuthServiceServer.Login),
		unaryMethod("Logout", AuthServiceServer.Logout),
		unaryMethod("WhoAmI", AuthServiceServer.WhoAmI),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth",
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&authServiceDesc, srv)
}
