package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

type assetService interface {
	Search(ctx context.Context, scope models.Scope, req search.Request) (*search.Result, error)
	List(ctx context.Context, scope models.Scope, folderID *uuid.UUID, sortBy, sortDir string, page, pageSize int) (*search.Result, error)
	RecycleBin(ctx context.Context, scope models.Scope, sortBy, sortDir string, page, pageSize int) (*search.Result, error)
	Get(ctx context.Context, scope models.Scope, id uuid.UUID) (*models.Asset, error)
	UpdateMetadata(ctx context.Context, scope models.Scope, ids []uuid.UUID, key, value string) (int, error)
	Move(ctx context.Context, scope models.Scope, id uuid.UUID, folderID *uuid.UUID) error
	Delete(ctx context.Context, scope models.Scope, ids []uuid.UUID) (int, error)
	Restore(ctx context.Context, scope models.Scope, ids []uuid.UUID) (int, error)
	PermanentlyDelete(ctx context.Context, scope models.Scope, ids []uuid.UUID) (int, error)
	DownloadURL(ctx context.Context, scope models.Scope, id uuid.UUID) (string, error)
}

type tagService interface {
	Create(ctx context.Context, scope models.Scope, name, color string) (*models.Tag, error)
	List(ctx context.Context, scope models.Scope) ([]*models.Tag, error)
	Delete(ctx context.Context, scope models.Scope, id uuid.UUID) error
	Assign(ctx context.Context, scope models.Scope, assetIDs, tagIDs []uuid.UUID) (int, error)
	Remove(ctx context.Context, scope models.Scope, assetIDs, tagIDs []uuid.UUID) (int, error)
	ForAsset(ctx context.Context, scope models.Scope, assetID uuid.UUID) ([]*models.Tag, error)
}

type GRPCServer struct {
	address      string
	assets       assetService
	tags         tagService
	logger       logging.Logger
	jwtSecret    []byte
	interceptors []grpc.UnaryServerInterceptor
}

// NewGRPCServer builds the catalog server. Extra interceptors run before the
// access token check.
func NewGRPCServer(a string, l logging.Logger, as assetService, ts tagService, secretKey string,
	interceptors ...grpc.UnaryServerInterceptor) *GRPCServer {
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		assets:       as,
		tags:         ts,
		jwtSecret:    []byte(secretKey),
		interceptors: interceptors,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	chain := append(append([]grpc.UnaryServerInterceptor{}, s.interceptors...), s.accessTokenInterceptor)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	srv.RegisterService(&CatalogServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
