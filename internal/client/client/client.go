package client

import (
	"context"

	gs "github.com/dmitrijs2005/assetcatalog/internal/server/grpc"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Search(ctx context.Context, req *search.Request) (*gs.AssetsResponse, error)
	ListAssets(ctx context.Context, req *gs.ListAssetsRequest) (*gs.AssetsResponse, error)
	ListDeleted(ctx context.Context, req *gs.ListDeletedRequest) (*gs.AssetsResponse, error)
	GetAsset(ctx context.Context, id string) (*gs.Asset, error)
	UpdateMetadata(ctx context.Context, ids []string, key, value string) (int, error)
	MoveAsset(ctx context.Context, id, folderID string) error
	DeleteAssets(ctx context.Context, ids []string) (int, error)
	RestoreAssets(ctx context.Context, ids []string) (int, error)
	PurgeAssets(ctx context.Context, ids []string) (int, error)
	DownloadURL(ctx context.Context, id string) (string, error)

	CreateTag(ctx context.Context, name, color string) (*gs.Tag, error)
	ListTags(ctx context.Context) ([]gs.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	AssignTags(ctx context.Context, assetIDs, tagIDs []string) (int, error)
	RemoveTags(ctx context.Context, assetIDs, tagIDs []string) (int, error)
	AssetTags(ctx context.Context, assetID string) ([]gs.Tag, error)
}
