package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *Empty) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) AdvancedSearch(ctx context.Context, req *search.Request) (*AssetsResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.assets.Search(ctx, scope, *req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAssetsResponse(res), nil
}

func (s *GRPCServer) ListAssets(ctx context.Context, req *ListAssetsRequest) (*AssetsResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	folderID, err := parseOptionalID(req.FolderID)
	if err != nil {
		return nil, err
	}

	res, err := s.assets.List(ctx, scope, folderID, req.SortBy, req.SortDir, req.Page, req.PageSize)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAssetsResponse(res), nil
}

func (s *GRPCServer) ListDeleted(ctx context.Context, req *ListDeletedRequest) (*AssetsResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.assets.RecycleBin(ctx, scope, req.SortBy, req.SortDir, req.Page, req.PageSize)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAssetsResponse(res), nil
}

func (s *GRPCServer) GetAsset(ctx context.Context, req *IDRequest) (*Asset, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	a, err := s.assets.Get(ctx, scope, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := toAsset(a)
	return &out, nil
}

func (s *GRPCServer) UpdateMetadata(ctx context.Context, req *UpdateMetadataRequest) (*CountResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		return nil, err
	}

	n, err := s.assets.UpdateMetadata(ctx, scope, ids, req.Key, req.Value)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &CountResponse{Count: n}, nil
}

func (s *GRPCServer) MoveAsset(ctx context.Context, req *MoveAssetRequest) (*Empty, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	folderID, err := parseOptionalID(req.FolderID)
	if err != nil {
		return nil, err
	}

	if err := s.assets.Move(ctx, scope, id, folderID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) DeleteAssets(ctx context.Context, req *IDsRequest) (*CountResponse, error) {
	return s.countByIDs(ctx, req, s.assets.Delete)
}

func (s *GRPCServer) RestoreAssets(ctx context.Context, req *IDsRequest) (*CountResponse, error) {
	return s.countByIDs(ctx, req, s.assets.Restore)
}

func (s *GRPCServer) PurgeAssets(ctx context.Context, req *IDsRequest) (*CountResponse, error) {
	return s.countByIDs(ctx, req, s.assets.PermanentlyDelete)
}

func (s *GRPCServer) countByIDs(ctx context.Context, req *IDsRequest,
	fn func(context.Context, models.Scope, []uuid.UUID) (int, error)) (*CountResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		return nil, err
	}

	n, err := fn(ctx, scope, ids)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &CountResponse{Count: n}, nil
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, req *IDRequest) (*URLResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	url, err := s.assets.DownloadURL(ctx, scope, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &URLResponse{URL: url}, nil
}

func (s *GRPCServer) CreateTag(ctx context.Context, req *CreateTagRequest) (*Tag, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.tags.Create(ctx, scope, req.Name, req.Color)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := toTag(t)
	return &out, nil
}

func (s *GRPCServer) ListTags(ctx context.Context, _ *Empty) (*TagsResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.tags.List(ctx, scope)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toTagsResponse(list), nil
}

func (s *GRPCServer) DeleteTag(ctx context.Context, req *IDRequest) (*Empty, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	if err := s.tags.Delete(ctx, scope, id); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) AssignTags(ctx context.Context, req *TagLinksRequest) (*CountResponse, error) {
	return s.tagLinks(ctx, req, s.tags.Assign)
}

func (s *GRPCServer) RemoveTags(ctx context.Context, req *TagLinksRequest) (*CountResponse, error) {
	return s.tagLinks(ctx, req, s.tags.Remove)
}

func (s *GRPCServer) tagLinks(ctx context.Context, req *TagLinksRequest,
	fn func(context.Context, models.Scope, []uuid.UUID, []uuid.UUID) (int, error)) (*CountResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	assetIDs, err := parseIDs(req.AssetIDs)
	if err != nil {
		return nil, err
	}
	tagIDs, err := parseIDs(req.TagIDs)
	if err != nil {
		return nil, err
	}

	n, err := fn(ctx, scope, assetIDs, tagIDs)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &CountResponse{Count: n}, nil
}

func (s *GRPCServer) AssetTags(ctx context.Context, req *IDRequest) (*TagsResponse, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	list, err := s.tags.ForAsset(ctx, scope, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toTagsResponse(list), nil
}

// toStatus maps service errors to gRPC status codes. Unexpected errors are
// logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorStorageDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, "unauthorized")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

func parseOptionalID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseIDs(list []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(list))
	for _, s := range list {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func toAsset(a *models.Asset) Asset {
	out := Asset{
		ID:           a.ID.String(),
		FileName:     a.FileName,
		FileType:     a.FileType,
		MimeType:     a.MimeType,
		FileSize:     a.FileSize,
		Checksum:     a.Checksum,
		UserID:       a.UserID,
		UserMetadata: a.UserMetadata,
		TagIDs:       make([]string, 0, len(a.TagIDs)),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		IsDeleted:    a.IsDeleted,
		DeletedAt:    a.DeletedAt,
	}
	if a.FolderID != nil {
		out.FolderID = a.FolderID.String()
	}
	if a.CompanyID != nil {
		out.CompanyID = a.CompanyID.String()
	}
	for _, id := range a.TagIDs {
		out.TagIDs = append(out.TagIDs, id.String())
	}
	return out
}

func toAssetsResponse(res *search.Result) *AssetsResponse {
	out := &AssetsResponse{
		Assets:  make([]Asset, 0, len(res.Assets)),
		Total:   res.Total,
		Page:    res.Page,
		HasMore: res.HasMore,
	}
	for _, a := range res.Assets {
		out.Assets = append(out.Assets, toAsset(a))
	}
	return out
}

func toTag(t *models.Tag) Tag {
	return Tag{
		ID:         t.ID.String(),
		Name:       t.Name,
		Color:      t.Color,
		AssetCount: t.AssetCount,
		CreatedAt:  t.CreatedAt,
	}
}

func toTagsResponse(list []*models.Tag) *TagsResponse {
	out := &TagsResponse{Tags: make([]Tag, 0, len(list))}
	for _, t := range list {
		out.Tags = append(out.Tags, toTag(t))
	}
	return out
}
