// Package flagx lets several components share os.Args: each one picks out
// only the flags it owns before handing them to its own flag.FlagSet.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the arguments that belong to the named flags, in
// their original order. Names are given without dashes and match both the
// -name and --name spellings, with the value either joined by '=' or in
// the next argument. Flags listed in bools never take a separate value, so
// "-m false" keeps only "-m"; use "-m=false" instead, as with package flag.
// Filtering stops at a bare "--".
func FilterArgs(args []string, names []string, bools ...string) []string {
	known := make(map[string]bool, len(names)+len(bools))
	for _, n := range names {
		known[n] = false
	}
	for _, n := range bools {
		known[n] = true
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		name, hasValue, ok := flagName(arg)
		if !ok {
			continue
		}
		isBool, allowed := known[name]
		if !allowed {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue || isBool {
			continue
		}
		// a following token that is not itself a flag is the value
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// flagName strips one or two leading dashes and any "=value" suffix.
func flagName(arg string) (name string, hasValue bool, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false, false
	}
	name = strings.TrimPrefix(arg[1:], "-")
	if name == "" || name[0] == '-' || name[0] == '=' {
		return "", false, false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}

// ConfigFile returns the path given with -c or -config in args, or "" when
// neither is present. The last occurrence wins.
func ConfigFile(args []string) string {
	var config string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"c", "config"}))

	return config
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
