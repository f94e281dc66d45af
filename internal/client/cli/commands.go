package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/assetcatalog/internal/filex"
	"github.com/dmitrijs2005/assetcatalog/internal/netx"
	gs "github.com/dmitrijs2005/assetcatalog/internal/server/grpc"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
)

type command struct {
	help string
	run  func(ctx context.Context, a *App, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"ping":       {"check that the server is reachable", runPing},
		"search":     {"advanced search: -where field:operator:value[:secondary] ... or -f request.json", runSearch},
		"ls":         {"list assets: [-folder id] [-sort key] [-dir asc|desc] [-page n] [-size n]", runList},
		"trash":      {"list the recycle bin: [-sort key] [-dir asc|desc] [-page n] [-size n]", runTrash},
		"get":        {"show one asset: <id>", runGet},
		"meta":       {"set a metadata key: -key k [-value v] <id>...; an empty value removes the key", runMeta},
		"mv":         {"move an asset: <id> [folderId]; no folder moves it to the root", runMove},
		"rm":         {"move assets to the recycle bin: <id>...", countCmd((*App).deleteAssets)},
		"restore":    {"restore assets from the recycle bin: <id>...", countCmd((*App).restoreAssets)},
		"purge":      {"permanently delete recycled assets: <id>...", countCmd((*App).purgeAssets)},
		"url":        {"presigned download URL: <id>", runURL},
		"download":   {"download an asset file: [-dir path] <id>", runDownload},
		"tags":       {"list tags", runTags},
		"tag-create": {"create a tag: -name n -color #RRGGBB", runTagCreate},
		"tag-rm":     {"delete a tag: <id>", runTagDelete},
		"tag":        {"assign tags: -tags t1,t2 <assetId>...", linkCmd(true)},
		"untag":      {"remove tags: -tags t1,t2 <assetId>...", linkCmd(false)},
		"asset-tags": {"tags of one asset: <id>", runAssetTags},
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return nil
}

func exactArgs(fs *flag.FlagSet, min, max int) error {
	if n := fs.NArg(); n < min || n > max {
		return fmt.Errorf("%w: %s: wrong number of arguments", ErrUsage, fs.Name())
	}
	return nil
}

func runPing(ctx context.Context, a *App, _ []string) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	return a.print(map[string]string{"status": "OK"})
}

// multiFlag collects repeated string flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ", ") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type pagingFlags struct {
	sortBy, sortDir string
	page, size      int
}

func (p *pagingFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.sortBy, "sort", "", "sort key (date, name, size, type, deletedAt, metadata.<key>)")
	fs.StringVar(&p.sortDir, "dir", "desc", "sort direction")
	fs.IntVar(&p.page, "page", 1, "page number")
	fs.IntVar(&p.size, "size", 50, "page size, 0 for everything")
}

func runSearch(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("search")
	var where multiFlag
	var paging pagingFlags
	logic := fs.String("logic", "AND", "AND or OR")
	unit := fs.String("unit", "", "size unit for fileSize conditions (B, KB, MB, GB)")
	folder := fs.String("folder", "", "limit to a folder and its subfolders")
	file := fs.String("f", "", "read the request as JSON from a file, - for stdin")
	fs.Var(&where, "where", "condition field:operator:value[:secondary], repeatable")
	paging.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	var req search.Request
	if *file != "" {
		if err := a.readRequest(*file, &req); err != nil {
			return err
		}
	} else {
		req = search.Request{
			Logic:    *logic,
			SortBy:   paging.sortBy,
			SortDir:  paging.sortDir,
			Page:     paging.page,
			PageSize: paging.size,
		}
		for _, w := range where {
			c, err := ParseCondition(w)
			if err != nil {
				return err
			}
			c.Unit = *unit
			req.Conditions = append(req.Conditions, c)
		}
		if *folder != "" {
			id, err := uuid.Parse(*folder)
			if err != nil {
				return fmt.Errorf("%w: invalid folder id %q", ErrUsage, *folder)
			}
			req.FolderID = &id
		}
	}

	resp, err := a.client.Search(ctx, &req)
	if err != nil {
		return err
	}
	return a.print(resp)
}

func (a *App) readRequest(path string, req *search.Request) error {
	var r io.Reader = a.in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(req); err != nil {
		return fmt.Errorf("%w: request JSON: %v", ErrUsage, err)
	}
	return nil
}

func runList(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("ls")
	var paging pagingFlags
	folder := fs.String("folder", "", "folder id")
	paging.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	resp, err := a.client.ListAssets(ctx, &gs.ListAssetsRequest{
		FolderID: *folder,
		SortBy:   paging.sortBy,
		SortDir:  paging.sortDir,
		Page:     paging.page,
		PageSize: paging.size,
	})
	if err != nil {
		return err
	}
	return a.print(resp)
}

func runTrash(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("trash")
	var paging pagingFlags
	paging.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	resp, err := a.client.ListDeleted(ctx, &gs.ListDeletedRequest{
		SortBy:   paging.sortBy,
		SortDir:  paging.sortDir,
		Page:     paging.page,
		PageSize: paging.size,
	})
	if err != nil {
		return err
	}
	return a.print(resp)
}

func runGet(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("get")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1, 1); err != nil {
		return err
	}

	asset, err := a.client.GetAsset(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return a.print(asset)
}

func runMeta(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("meta")
	key := fs.String("key", "", "metadata key")
	value := fs.String("value", "", "metadata value")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1, 1<<16); err != nil {
		return err
	}

	n, err := a.client.UpdateMetadata(ctx, fs.Args(), *key, *value)
	if err != nil {
		return err
	}
	return a.print(gs.CountResponse{Count: n})
}

func runMove(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("mv")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1, 2); err != nil {
		return err
	}

	if err := a.client.MoveAsset(ctx, fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	return a.print(map[string]string{"status": "moved"})
}

func (a *App) deleteAssets(ctx context.Context, ids []string) (int, error) {
	return a.client.DeleteAssets(ctx, ids)
}

func (a *App) restoreAssets(ctx context.Context, ids []string) (int, error) {
	return a.client.RestoreAssets(ctx, ids)
}

func (a *App) purgeAssets(ctx context.Context, ids []string) (int, error) {
	return a.client.PurgeAssets(ctx, ids)
}

func countCmd(fn func(*App, context.Context, []string) (int, error)) func(context.Context, *App, []string) error {
	return func(ctx context.Context, a *App, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: at least one asset id is required", ErrUsage)
		}
		n, err := fn(a, ctx, args)
		if err != nil {
			return err
		}
		return a.print(gs.CountResponse{Count: n})
	}
}

func runURL(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: url: exactly one asset id is required", ErrUsage)
	}
	url, err := a.client.DownloadURL(ctx, args[0])
	if err != nil {
		return err
	}
	return a.print(gs.URLResponse{URL: url})
}

func runDownload(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("download")
	dir := fs.String("dir", ".", "target directory")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1, 1); err != nil {
		return err
	}

	asset, err := a.client.GetAsset(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	url, err := a.client.DownloadURL(ctx, asset.ID)
	if err != nil {
		return err
	}

	target, err := filex.EnsureDir(*dir)
	if err != nil {
		return err
	}
	f, err := filex.CreateExclusive(target, asset.FileName)
	if err != nil {
		return err
	}

	n, err := netx.DownloadFromPresignedURL(ctx, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return a.print(map[string]any{"path": f.Name(), "bytes": n})
}

func runTags(ctx context.Context, a *App, _ []string) error {
	tags, err := a.client.ListTags(ctx)
	if err != nil {
		return err
	}
	return a.print(gs.TagsResponse{Tags: tags})
}

func runTagCreate(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("tag-create")
	name := fs.String("name", "", "tag name")
	color := fs.String("color", "", "tag color #RRGGBB")
	if err := parse(fs, args); err != nil {
		return err
	}

	tag, err := a.client.CreateTag(ctx, *name, *color)
	if err != nil {
		return err
	}
	return a.print(tag)
}

func runTagDelete(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: tag-rm: exactly one tag id is required", ErrUsage)
	}
	if err := a.client.DeleteTag(ctx, args[0]); err != nil {
		return err
	}
	return a.print(map[string]string{"status": "deleted"})
}

func linkCmd(assign bool) func(context.Context, *App, []string) error {
	return func(ctx context.Context, a *App, args []string) error {
		fs := newFlagSet("tag")
		tagList := fs.String("tags", "", "comma-separated tag ids")
		if err := parse(fs, args); err != nil {
			return err
		}
		tagIDs := splitList(*tagList)
		if len(tagIDs) == 0 || fs.NArg() == 0 {
			return fmt.Errorf("%w: tag ids and asset ids are required", ErrUsage)
		}

		var n int
		var err error
		if assign {
			n, err = a.client.AssignTags(ctx, fs.Args(), tagIDs)
		} else {
			n, err = a.client.RemoveTags(ctx, fs.Args(), tagIDs)
		}
		if err != nil {
			return err
		}
		return a.print(gs.CountResponse{Count: n})
	}
}

func runAssetTags(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: asset-tags: exactly one asset id is required", ErrUsage)
	}
	tags, err := a.client.AssetTags(ctx, args[0])
	if err != nil {
		return err
	}
	return a.print(gs.TagsResponse{Tags: tags})
}
