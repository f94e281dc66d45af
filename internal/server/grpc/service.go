// Package grpc serves the catalog over gRPC.
//
// There is no .proto file: the service descriptor below is declared by hand
// and every message is a plain Go struct that travels as JSON through the
// codec registered in codec.go. Clients must call with
// grpc.CallContentSubtype(CodecName). A new method needs a CatalogServer
// method plus an entry in CatalogServiceDesc.Methods.
package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"google.golang.org/grpc"
)

const serviceName = "catalog.CatalogService"

// Full method names.
const (
	MethodPing           = "/" + serviceName + "/Ping"
	MethodAdvancedSearch = "/" + serviceName + "/AdvancedSearch"
	MethodListAssets     = "/" + serviceName + "/ListAssets"
	MethodListDeleted    = "/" + serviceName + "/ListDeleted"
	MethodGetAsset       = "/" + serviceName + "/GetAsset"
	MethodUpdateMetadata = "/" + serviceName + "/UpdateMetadata"
	MethodMoveAsset      = "/" + serviceName + "/MoveAsset"
	MethodDeleteAssets   = "/" + serviceName + "/DeleteAssets"
	MethodRestoreAssets  = "/" + serviceName + "/RestoreAssets"
	MethodPurgeAssets    = "/" + serviceName + "/PurgeAssets"
	MethodGetDownloadURL = "/" + serviceName + "/GetDownloadURL"
	MethodCreateTag      = "/" + serviceName + "/CreateTag"
	MethodListTags       = "/" + serviceName + "/ListTags"
	MethodDeleteTag      = "/" + serviceName + "/DeleteTag"
	MethodAssignTags     = "/" + serviceName + "/AssignTags"
	MethodRemoveTags     = "/" + serviceName + "/RemoveTags"
	MethodAssetTags      = "/" + serviceName + "/AssetTags"
)

// ---- messages ----

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type Asset struct {
	ID           string     `json:"id"`
	FileName     string     `json:"fileName"`
	FileType     string     `json:"fileType"`
	MimeType     string     `json:"mimeType"`
	FileSize     int64      `json:"fileSize"`
	Checksum     string     `json:"checksum,omitempty"`
	FolderID     string     `json:"folderId,omitempty"`
	UserID       string     `json:"userId"`
	CompanyID    string     `json:"companyId,omitempty"`
	UserMetadata string     `json:"userMetadata,omitempty"`
	TagIDs       []string   `json:"tagIds"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	IsDeleted    bool       `json:"isDeleted"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// AssetsResponse is one page of assets.
type AssetsResponse struct {
	Assets  []Asset `json:"assets"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	HasMore bool    `json:"hasMore"`
}

type ListAssetsRequest struct {
	// FolderID limits the listing to a folder and its subfolders.
	FolderID string `json:"folderId,omitempty"`
	SortBy   string `json:"sortBy"`
	SortDir  string `json:"sortDir"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type ListDeletedRequest struct {
	SortBy   string `json:"sortBy"`
	SortDir  string `json:"sortDir"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type IDsRequest struct {
	IDs []string `json:"ids"`
}

type UpdateMetadataRequest struct {
	IDs   []string `json:"ids"`
	Key   string   `json:"key"`
	Value string   `json:"value"`
}

type MoveAssetRequest struct {
	ID string `json:"id"`
	// FolderID is empty for the root folder.
	FolderID string `json:"folderId,omitempty"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type URLResponse struct {
	URL string `json:"url"`
}

type Tag struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	AssetCount int       `json:"assetCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TagsResponse struct {
	Tags []Tag `json:"tags"`
}

type TagLinksRequest struct {
	AssetIDs []string `json:"assetIds"`
	TagIDs   []string `json:"tagIds"`
}

// ---- service ----

// CatalogServer is the server API of catalog.CatalogService.
type CatalogServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	AdvancedSearch(context.Context, *search.Request) (*AssetsResponse, error)
	ListAssets(context.Context, *ListAssetsRequest) (*AssetsResponse, error)
	ListDeleted(context.Context, *ListDeletedRequest) (*AssetsResponse, error)
	GetAsset(context.Context, *IDRequest) (*Asset, error)
	UpdateMetadata(context.Context, *UpdateMetadataRequest) (*CountResponse, error)
	MoveAsset(context.Context, *MoveAssetRequest) (*Empty, error)
	DeleteAssets(context.Context, *IDsRequest) (*CountResponse, error)
	RestoreAssets(context.Context, *IDsRequest) (*CountResponse, error)
	PurgeAssets(context.Context, *IDsRequest) (*CountResponse, error)
	GetDownloadURL(context.Context, *IDRequest) (*URLResponse, error)
	CreateTag(context.Context, *CreateTagRequest) (*Tag, error)
	ListTags(context.Context, *Empty) (*TagsResponse, error)
	DeleteTag(context.Context, *IDRequest) (*Empty, error)
	AssignTags(context.Context, *TagLinksRequest) (*CountResponse, error)
	RemoveTags(context.Context, *TagLinksRequest) (*CountResponse, error)
	AssetTags(context.Context, *IDRequest) (*TagsResponse, error)
}

func unary[Req, Resp any](fullMethod string, call func(CatalogServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: fullMethod[len(serviceName)+2:],
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CatalogServer), ctx, req.(*Req))
			})
		},
	}
}

// CatalogServiceDesc describes catalog.CatalogService for grpc.Server.RegisterService.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, CatalogServer.Ping),
		unary(MethodAdvancedSearch, CatalogServer.AdvancedSearch),
		unary(MethodListAssets, CatalogServer.ListAssets),
		unary(MethodListDeleted, CatalogServer.ListDeleted),
		unary(MethodGetAsset, CatalogServer.GetAsset),
		unary(MethodUpdateMetadata, CatalogServer.UpdateMetadata),
		unary(MethodMoveAsset, CatalogServer.MoveAsset),
		unary(MethodDeleteAssets, CatalogServer.DeleteAssets),
		unary(MethodRestoreAssets, CatalogServer.RestoreAssets),
		unary(MethodPurgeAssets, CatalogServer.PurgeAssets),
		unary(MethodGetDownloadURL, CatalogServer.GetDownloadURL),
		unary(MethodCreateTag, CatalogServer.CreateTag),
		unary(MethodListTags, CatalogServer.ListTags),
		unary(MethodDeleteTag, CatalogServer.DeleteTag),
		unary(MethodAssignTags, CatalogServer.AssignTags),
		unary(MethodRemoveTags, CatalogServer.RemoveTags),
		unary(MethodAssetTags, CatalogServer.AssetTags),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog",
}

// Invoke calls one catalog method over cc using the JSON codec.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
