// Package cli provides the catalog command-line client.
//
// Each invocation runs one command against the catalog gRPC service and
// prints the response as JSON, indented when stdout is a terminal. For
// example:
//
//	catalogctl -a 127.0.0.1:50051 -t <token> search -logic OR \
//	    -where fileName:contains:hero -where metadata.project:is:Apollo
//
// See commands for the full list.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dmitrijs2005/assetcatalog/internal/client/client"
	"github.com/dmitrijs2005/assetcatalog/internal/client/config"
	"github.com/dmitrijs2005/assetcatalog/internal/flagx"
	"golang.org/x/term"
)

var ErrUsage = errors.New("usage error")

type App struct {
	config *config.Config
	client client.Client
	out    io.Writer
	in     io.Reader
	// indent is set when out is a terminal.
	indent bool
}

func NewApp(c *config.Config, out io.Writer) (*App, error) {
	apiClient, err := client.NewCatalogClient(c.ServerEndpointAddr, c.AccessToken, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	a := &App{config: c, client: apiClient, out: out, in: os.Stdin}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.indent = true
	}
	return a, nil
}

func (a *App) Close() error {
	return a.client.Close()
}

// Run executes args[0] with the remaining arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.usage()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(ctx, a, args[1:])
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Usage: catalogctl [-a addr] [-t token] [-w seconds] [-c config.json] <command> [args]")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-11s %s\n", name, commands[name].help)
	}
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	if a.indent {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// globalFlags precede the command name.
var globalFlags = append(append([]string{}, flagx.ConfigFlags...), config.Flags...)

// CommandArgs strips the global flags (and their values) from the front of
// args and returns the command with its arguments.
func CommandArgs(args []string) []string {
	isGlobal := func(name string) bool {
		for _, f := range globalFlags {
			if name == f || name == "-"+f {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return args[i:]
		}
		name, _, hasValue := strings.Cut(arg, "=")
		if !isGlobal(name) {
			return args[i:]
		}
		if !hasValue {
			i++
		}
	}
	return nil
}
