package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/checks"
	"github.com/LeStarch/fplint/internal/config"
	"github.com/LeStarch/fplint/internal/logging"
	"github.com/LeStarch/fplint/internal/prompt"
	"github.com/LeStarch/fplint/internal/reconcile"
	"github.com/LeStarch/fplint/internal/report"
)

// topologySuffix names the files searched for when no topology is given.
const topologySuffix = "TopologyAppAi.xml"

// errLintFailed signals a completed run with surviving problems.
var errLintFailed = errors.New("lint failed")

// stdout receives reports and listings.
var stdout io.Writer = os.Stdout

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "check",
		short: "Lint a topology",
		usage: "fplint check [flags] [topology...]",
		long: `Load a topology, reconcile it with its component and port descriptions,
and run every check not excluded by the configuration.

Each topology is loaded and checked on its own; one that fails to load does
not stop the others. Without a topology argument the current directory is searched for exactly
one **/*` + topologySuffix + ` file.

Flags:
  -config <file>        configuration (default: fplint.yml or fplint.toml in .)
  -settings-dir <dir>   directory holding settings.ini
                        (default: parent of the topology directory)
  -report <file>        also write a YAML report
  -interactive          prompt for check parameters that are still missing
  -<param> <value>      set a check parameter; see 'fplint list'

Exits 0 when every topology loads and no problem survives filtering,
1 otherwise.
`,
		run: runCheck,
	},
	{
		name:  "list",
		short: "List checks, identifiers and parameters",
		usage: "fplint list",
		long: `Print every check with the identifiers it may report and the parameters
it needs.
`,
		run: runList,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "fplint - F´ topology linter\n\n")
	fmt.Fprintf(w, "Usage:\n  fplint <command> [arguments]\n  fplint [check flags] [topology...]\n\n")
	fmt.Fprintf(w, "Without a command, fplint runs check.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'fplint help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "fplint: unknown command %q\n\nRun 'fplint help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 {
		return runCheck(nil)
	}
	if args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(stdout, args[1])
		} else {
			printUsage(stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	// fplint [flags] <topology...> is shorthand for check.
	if _, err := os.Stat(args[0]); err == nil || strings.HasPrefix(args[0], "-") {
		return runCheck(args)
	}
	return fmt.Errorf("unknown command %q\n\nRun 'fplint help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

type checkFlags struct {
	config      string
	settingsDir string
	report      string
	interactive bool
	params      map[string]*string
}

func parseCheckFlags(args []string, registry []check.Check) (*checkFlags, []string, error) {
	fl := &checkFlags{params: map[string]*string{}}
	fset := flag.NewFlagSet("check", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&fl.config, "config", "", "configuration file")
	fset.StringVar(&fl.settingsDir, "settings-dir", "", "directory holding settings.ini")
	fset.StringVar(&fl.report, "report", "", "YAML report output file")
	fset.BoolVar(&fl.interactive, "interactive", false, "prompt for missing parameters")
	for _, p := range check.KnownParams(registry) {
		fl.params[p.Name] = fset.String(p.Name, "", p.Help)
	}
	if err := fset.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w\nusage: fplint check [flags] [topology...]", err)
	}
	return fl, fset.Args(), nil
}

func runCheck(args []string) error {
	logging.Configure(logging.ProfileRuntime)
	loader := &reconcile.Loader{Log: log.Logger}
	registry := checks.All(loader)

	fl, rest, err := parseCheckFlags(args, registry)
	if err != nil {
		return err
	}
	loader.SettingsDir = fl.settingsDir

	cfgPath := fl.config
	if cfgPath == "" {
		cfgPath = config.Find(".")
	}
	cfg, err := config.Load(cfgPath, registry)
	if err != nil {
		return err
	}
	for name, v := range fl.params {
		if *v != "" {
			cfg.Params[name] = *v
		}
	}
	if fl.interactive {
		if err := askMissing(cfg, registry); err != nil {
			return err
		}
	}

	paths := rest
	if len(paths) == 0 {
		path, err := findTopology(".")
		if err != nil {
			return err
		}
		paths = []string{path}
	}

	// A topology that fails to load is reported and the rest still run.
	engine := &check.Engine{Checks: registry, Log: log.Logger}
	doc := report.New()
	var loadErrs []error
	for _, path := range paths {
		top, err := loader.LoadTopology(path)
		if err != nil {
			loadErrs = append(loadErrs, err)
			doc.AddFailure(path, err)
			continue
		}
		run := engine.Run(top, cfg.RunOptions())
		report.Console(stdout, run)
		doc.Add(path, run)
	}

	if fl.report != "" {
		if err := report.Write(fl.report, doc); err != nil {
			return err
		}
	}
	if len(loadErrs) > 0 {
		return errors.Join(loadErrs...)
	}
	if !doc.Pass {
		return errLintFailed
	}
	return nil
}

// askMissing prompts for the required parameters of active checks that
// have no value yet.
func askMissing(cfg *config.Config, registry []check.Check) error {
	var missing []check.Param
	seen := map[string]bool{}
	for _, c := range registry {
		if slices.Contains(cfg.Exclusions, c.Name()) {
			continue
		}
		for _, p := range c.Params() {
			if p.Optional || cfg.Params[p.Name] != "" || seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			missing = append(missing, p)
		}
	}
	answers, err := prompt.Ask(prompt.ForParams(missing))
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	for k, v := range answers {
		cfg.Params[k] = strings.TrimSpace(v)
	}
	return nil
}

// findTopology returns the single topology file below root. Hidden
// directories are not searched.
func findTopology(root string) (string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), topologySuffix) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search for topology: %w", err)
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no topology matching **/*%s found; specify one", topologySuffix)
	case 1:
		return found[0], nil
	}
	sort.Strings(found)
	return "", fmt.Errorf("found %d topologies matching **/*%s (%s); specify one",
		len(found), topologySuffix, strings.Join(found, ", "))
}

// ---------------------------------------------------------------------------
// list
// ---------------------------------------------------------------------------

func runList(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: fplint list")
	}
	for _, c := range checks.All(nil) {
		fmt.Fprintln(stdout, c.Name())
		ids := c.Identifiers()
		names := make([]string, 0, len(ids))
		for id := range ids {
			names = append(names, id)
		}
		sort.Strings(names)
		for _, id := range names {
			fmt.Fprintf(stdout, "  %-45s %s\n", id, ids[id])
		}
		for _, p := range c.Params() {
			fmt.Fprintf(stdout, "  -%s <%s>  %s\n", p.Name, p.Type, p.Help)
		}
	}
	return nil
}

func main() {
	err := dispatch(os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errLintFailed):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "fplint: %v\n", err)
		os.Exit(1)
	}
}
