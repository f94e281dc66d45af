package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	gs "github.com/dmitrijs2005/assetcatalog/internal/server/grpc"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	accessToken string
	timeout     time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewCatalogClient connects to endpointURL. Extra dial options are appended
// after the defaults (plaintext transport, token interceptor).
func NewCatalogClient(endpointURL, accessToken string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func call[Resp any](ctx context.Context, s *GRPCClient, method string, in any) (*Resp, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := gs.Invoke[Resp](ctx, s.conn, method, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := call[gs.PingResponse](ctx, s, gs.MethodPing, &gs.Empty{})
	if err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Search(ctx context.Context, req *search.Request) (*gs.AssetsResponse, error) {
	return call[gs.AssetsResponse](ctx, s, gs.MethodAdvancedSearch, req)
}

func (s *GRPCClient) ListAssets(ctx context.Context, req *gs.ListAssetsRequest) (*gs.AssetsResponse, error) {
	return call[gs.AssetsResponse](ctx, s, gs.MethodListAssets, req)
}

func (s *GRPCClient) ListDeleted(ctx context.Context, req *gs.ListDeletedRequest) (*gs.AssetsResponse, error) {
	return call[gs.AssetsResponse](ctx, s, gs.MethodListDeleted, req)
}

func (s *GRPCClient) GetAsset(ctx context.Context, id string) (*gs.Asset, error) {
	return call[gs.Asset](ctx, s, gs.MethodGetAsset, &gs.IDRequest{ID: id})
}

func (s *GRPCClient) UpdateMetadata(ctx context.Context, ids []string, key, value string) (int, error) {
	return s.count(ctx, gs.MethodUpdateMetadata, &gs.UpdateMetadataRequest{IDs: ids, Key: key, Value: value})
}

func (s *GRPCClient) MoveAsset(ctx context.Context, id, folderID string) error {
	_, err := call[gs.Empty](ctx, s, gs.MethodMoveAsset, &gs.MoveAssetRequest{ID: id, FolderID: folderID})
	return err
}

func (s *GRPCClient) DeleteAssets(ctx context.Context, ids []string) (int, error) {
	return s.count(ctx, gs.MethodDeleteAssets, &gs.IDsRequest{IDs: ids})
}

func (s *GRPCClient) RestoreAssets(ctx context.Context, ids []string) (int, error) {
	return s.count(ctx, gs.MethodRestoreAssets, &gs.IDsRequest{IDs: ids})
}

func (s *GRPCClient) PurgeAssets(ctx context.Context, ids []string) (int, error) {
	return s.count(ctx, gs.MethodPurgeAssets, &gs.IDsRequest{IDs: ids})
}

func (s *GRPCClient) DownloadURL(ctx context.Context, id string) (string, error) {
	resp, err := call[gs.URLResponse](ctx, s, gs.MethodGetDownloadURL, &gs.IDRequest{ID: id})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (s *GRPCClient) CreateTag(ctx context.Context, name, color string) (*gs.Tag, error) {
	return call[gs.Tag](ctx, s, gs.MethodCreateTag, &gs.CreateTagRequest{Name: name, Color: color})
}

func (s *GRPCClient) ListTags(ctx context.Context) ([]gs.Tag, error) {
	return s.tags(ctx, gs.MethodListTags, &gs.Empty{})
}

func (s *GRPCClient) DeleteTag(ctx context.Context, id string) error {
	_, err := call[gs.Empty](ctx, s, gs.MethodDeleteTag, &gs.IDRequest{ID: id})
	return err
}

func (s *GRPCClient) AssignTags(ctx context.Context, assetIDs, tagIDs []string) (int, error) {
	return s.count(ctx, gs.MethodAssignTags, &gs.TagLinksRequest{AssetIDs: assetIDs, TagIDs: tagIDs})
}

func (s *GRPCClient) RemoveTags(ctx context.Context, assetIDs, tagIDs []string) (int, error) {
	return s.count(ctx, gs.MethodRemoveTags, &gs.TagLinksRequest{AssetIDs: assetIDs, TagIDs: tagIDs})
}

func (s *GRPCClient) AssetTags(ctx context.Context, assetID string) ([]gs.Tag, error) {
	return s.tags(ctx, gs.MethodAssetTags, &gs.IDRequest{ID: assetID})
}

func (s *GRPCClient) count(ctx context.Context, method string, in any) (int, error) {
	resp, err := call[gs.CountResponse](ctx, s, method, in)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *GRPCClient) tags(ctx context.Context, method string, in any) ([]gs.Tag, error) {
	resp, err := call[gs.TagsResponse](ctx, s, method, in)
	if err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrInvalid, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
