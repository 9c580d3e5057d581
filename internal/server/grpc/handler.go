package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	c, err := s.auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateRegistration):
			return nil, status.Error(codes.AlreadyExists, services.PublicError(err))
		case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidPassword):
			return nil, status.Error(codes.InvalidArgument, services.PublicError(err))
		}
		return nil, s.internal(ctx, "registration failed", err)
	}

	return &RegisterResponse{SubjectID: c.SubjectID}, nil
}

// Login reports every failure as the same Unauthenticated status.
func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	session, err := s.auth.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidCredentials) {
			s.logger.Warn(ctx, "login failed", "error", err)
		}
		return nil, status.Error(codes.Unauthenticated, services.MsgInvalidCredentials)
	}
	return &LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt.Unix()}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *LogoutRequest) (*LogoutResponse, error) {
	if err := s.auth.Logout(ctx, bearerToken(ctx)); err != nil {
		if common.IsSessionError(err) {
			return nil, status.Error(codes.Unauthenticated, services.MsgNotAuthenticated)
		}
		return nil, s.internal(ctx, "logout failed", err)
	}
	return &LogoutResponse{}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *WhoAmIRequest) (*WhoAmIResponse, error) {
	subject, ok := auth.SubjectFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, services.MsgNotAuthenticated)
	}
	return &WhoAmIResponse{SubjectID: subject}, nil
}

func (s *GRPCServer) internal(ctx context.Context, msg string, err error) error {
	if st := status.FromContextError(err); st.Code() != codes.Unknown {
		return st.Err()
	}
	s.logger.Error(ctx, msg, "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
