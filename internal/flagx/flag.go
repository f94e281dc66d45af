// Package flagx lets several components share one command line: each picks
// out the flags it owns and parses them with its own flag.FlagSet.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// ConfigFlags name the JSON configuration file for both binaries.
var ConfigFlags = []string{"-c", "-config"}

// FilterArgs keeps the flags listed in allowed, with their values, and drops
// everything else. A value is either attached ("-a=:50051") or the next
// argument when that argument does not start with "-". Names in boolFlags
// never consume the next argument, so "-strict search" keeps "search" out.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	valued := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		valued[f] = true
	}
	for _, f := range boolFlags {
		valued[f] = false
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, ok := strings.Cut(arg, "="); ok {
			if _, known := valued[name]; known {
				filtered = append(filtered, arg)
			}
			continue
		}

		takesValue, known := valued[arg]
		if !known {
			continue
		}
		filtered = append(filtered, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ConfigPath returns the file named by -c or -config in args, or "" when
// neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to the JSON config file")
	fs.StringVar(&path, "c", "", "path to the JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFlags))

	return path
}
