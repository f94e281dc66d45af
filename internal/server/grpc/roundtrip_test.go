package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/auth"
	"github.com/dmitrijs2005/assetcatalog/internal/server/metrics"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startBufconn(t *testing.T, a *fakeAssets, tg *fakeTags, m *metrics.Metrics) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer("bufnet", logging.Nop(), a, tg, "secret", m.UnaryServerInterceptor())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return conn
}

func TestRoundTrip_JSONCodecAndAuth(t *testing.T) {
	company := uuid.New()
	asset := &models.Asset{ID: uuid.New(), FileName: "hero.png", FileSize: 10, CompanyID: &company}
	a := &fakeAssets{result: &search.Result{Assets: []*models.Asset{asset}, Total: 1, Page: 1}}
	m := metrics.New(prometheus.NewRegistry())
	conn := startBufconn(t, a, &fakeTags{}, m)
	ctx := context.Background()

	ping, err := Invoke[PingResponse](ctx, conn, MethodPing, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", ping.Status)

	_, err = Invoke[AssetsResponse](ctx, conn, MethodAdvancedSearch, &search.Request{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	token, err := auth.GenerateToken("u1", &company, []byte("secret"), time.Hour)
	require.NoError(t, err)
	authCtx := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)

	req := &search.Request{
		Logic: "AND",
		Conditions: []search.Condition{
			{Field: "fileSize", Operator: "between", Range: &search.Range{From: "1", To: "5"}, Unit: "MB"},
		},
		SortBy:   "metadata.project",
		Page:     1,
		PageSize: 20,
	}
	resp, err := Invoke[AssetsResponse](authCtx, conn, MethodAdvancedSearch, req)
	require.NoError(t, err)
	require.Len(t, resp.Assets, 1)
	assert.Equal(t, asset.ID.String(), resp.Assets[0].ID)
	assert.Equal(t, 1, resp.Total)

	assert.Equal(t, *req, a.gotReq)
	assert.Equal(t, "u1", a.gotScope.UserID)
	require.NotNil(t, a.gotScope.CompanyID)
	assert.Equal(t, company, *a.gotScope.CompanyID)

	a.err = common.ErrorNotFound
	_, err = Invoke[Asset](authCtx, conn, MethodGetAsset, &IDRequest{ID: asset.ID.String()})
	assert.Equal(t, codes.NotFound, status.Code(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsTotal.WithLabelValues(MethodPing, codes.OK.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsTotal.WithLabelValues(MethodAdvancedSearch, codes.Unauthenticated.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsTotal.WithLabelValues(MethodAdvancedSearch, codes.OK.String())))
}
