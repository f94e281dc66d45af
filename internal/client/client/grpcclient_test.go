package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	gs "github.com/dmitrijs2005/assetcatalog/internal/server/grpc"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

/*************
 * Fake catalog server
 *************/

type fakeCatalog struct {
	gs.CatalogServer

	lastToken  string
	lastSearch *search.Request
	lastLinks  *gs.TagLinksRequest
	lastMove   *gs.MoveAssetRequest

	err   error
	block time.Duration
}

func (f *fakeCatalog) token(ctx context.Context) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			f.lastToken = v[0]
		}
	}
}

func (f *fakeCatalog) Ping(ctx context.Context, _ *gs.Empty) (*gs.PingResponse, error) {
	return &gs.PingResponse{Status: "OK"}, f.err
}

func (f *fakeCatalog) AdvancedSearch(ctx context.Context, req *search.Request) (*gs.AssetsResponse, error) {
	f.token(ctx)
	f.lastSearch = req
	if f.block > 0 {
		select {
		case <-time.After(f.block):
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &gs.AssetsResponse{Assets: []gs.Asset{{ID: "a1", FileName: "hero.png"}}, Total: 1, Page: 1}, nil
}

func (f *fakeCatalog) MoveAsset(ctx context.Context, req *gs.MoveAssetRequest) (*gs.Empty, error) {
	f.lastMove = req
	return &gs.Empty{}, f.err
}

func (f *fakeCatalog) AssignTags(ctx context.Context, req *gs.TagLinksRequest) (*gs.CountResponse, error) {
	f.lastLinks = req
	if f.err != nil {
		return nil, f.err
	}
	return &gs.CountResponse{Count: len(req.AssetIDs) * len(req.TagIDs)}, nil
}

func (f *fakeCatalog) ListTags(ctx context.Context, _ *gs.Empty) (*gs.TagsResponse, error) {
	return &gs.TagsResponse{Tags: []gs.Tag{{ID: "t1", Name: "Hero", Color: "#FF0000"}}}, f.err
}

func (f *fakeCatalog) GetDownloadURL(ctx context.Context, req *gs.IDRequest) (*gs.URLResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gs.URLResponse{URL: "https://signed/" + req.ID}, nil
}

func newTestClient(t *testing.T, f *fakeCatalog, token string, timeout time.Duration) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&gs.CatalogServiceDesc, f)
	go func() { _ = srv.Serve(lis) }()

	c, err := NewCatalogClient("passthrough:///bufnet", token, timeout,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
	})
	return c
}

func TestGRPCClient_SearchSendsTokenAndRequest(t *testing.T) {
	f := &fakeCatalog{}
	c := newTestClient(t, f, "tok-1", time.Second)

	req := &search.Request{Logic: "OR", Conditions: []search.Condition{{Field: "tags", Operator: "containsAll", Values: []string{"x"}}}}
	resp, err := c.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", f.lastToken)
	assert.Equal(t, req, f.lastSearch)
	require.Len(t, resp.Assets, 1)
	assert.Equal(t, "hero.png", resp.Assets[0].FileName)
}

func TestGRPCClient_NoTokenWhenEmpty(t *testing.T) {
	f := &fakeCatalog{}
	c := newTestClient(t, f, "", time.Second)

	_, err := c.Search(context.Background(), &search.Request{})
	require.NoError(t, err)
	assert.Empty(t, f.lastToken)
}

func TestGRPCClient_Operations(t *testing.T) {
	f := &fakeCatalog{}
	c := newTestClient(t, f, "tok", time.Second)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.MoveAsset(ctx, "a1", "f1"))
	assert.Equal(t, &gs.MoveAssetRequest{ID: "a1", FolderID: "f1"}, f.lastMove)

	n, err := c.AssignTags(ctx, []string{"a1", "a2"}, []string{"t1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Hero", tags[0].Name)

	url, err := c.DownloadURL(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/a1", url)
}

func TestGRPCClient_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{status.Error(codes.Unauthenticated, "missing token"), ErrUnauthorized},
		{status.Error(codes.PermissionDenied, "no"), ErrUnauthorized},
		{status.Error(codes.NotFound, "not found"), ErrNotFound},
		{status.Error(codes.InvalidArgument, "invalid id"), ErrInvalid},
		{status.Error(codes.FailedPrecondition, "object storage disabled"), ErrInvalid},
		{status.Error(codes.Unavailable, "down"), ErrUnavailable},
	}
	for _, tt := range tests {
		c := newTestClient(t, &fakeCatalog{err: tt.err}, "tok", time.Second)
		_, err := c.Search(context.Background(), &search.Request{})
		assert.ErrorIs(t, err, tt.want, "status %v", tt.err)
	}

	c := newTestClient(t, &fakeCatalog{err: status.Error(codes.Internal, "internal error")}, "tok", time.Second)
	_, err := c.Search(context.Background(), &search.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc error")
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestGRPCClient_TimeoutIsUnavailable(t *testing.T) {
	c := newTestClient(t, &fakeCatalog{block: time.Second}, "tok", 50*time.Millisecond)

	_, err := c.Search(context.Background(), &search.Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old", "x-other", "1")
	ctx = withAccessToken(ctx, "new")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"1"}, md.Get("x-other"))
}
