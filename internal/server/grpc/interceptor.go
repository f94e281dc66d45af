package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/auth"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const ScopeKey ctxKey = "scope"

// publicMethods need no access token.
var publicMethods = map[string]bool{
	MethodPing: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	scope, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = logging.ContextWith(ctx, "user", scope.UserID)
	if scope.CompanyID != nil {
		ctx = logging.ContextWith(ctx, "company", scope.CompanyID.String())
	}
	return handler(context.WithValue(ctx, ScopeKey, scope), req)
}

func scopeFromContext(ctx context.Context) (models.Scope, error) {
	scope, ok := ctx.Value(ScopeKey).(models.Scope)
	if !ok {
		return models.Scope{}, status.Error(codes.Unauthenticated, "missing token")
	}
	return scope, nil
}
