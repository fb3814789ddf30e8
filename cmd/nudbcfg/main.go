package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	nudbconfig "github.com/ssb-nudb/nudb-config-go"
	"github.com/ssb-nudb/nudb-config-go/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// cliFlags holds the parsed command-line flags.
type cliFlags struct {
	key       string
	listKeys  bool
	overrides string
	version   bool
}

// parseFlags parses all CLI flags.
//
// Flags:
//
//	-k dotted path to look up, e.g. variables.fnr.dtype (empty = whole tree)
//	-keys list the child keys under -k instead of printing the value
//	-overrides directory with override YAML files merged before the lookup
//	-version print build information and exit
func parseFlags() *cliFlags {
	f := &cliFlags{}

	flag.StringVar(&f.key, "k", "", "Dotted path to look up (e.g. variables.fnr.dtype)")
	flag.BoolVar(&f.listKeys, "keys", false, "List child keys instead of printing the value")
	flag.StringVar(&f.overrides, "overrides", "", "Directory with override YAML files")
	flag.BoolVar(&f.version, "version", false, "Print build information and exit")

	flag.Parse()

	return f
}

func main() {
	flags := parseFlags()
	if flags.version {
		printBuildInfo()
		return
	}

	log := logger.NewStderrLogger("nudbcfg")

	opts := []nudbconfig.Option{nudbconfig.WithLogger(log)}
	if flags.overrides != "" {
		opts = append(opts, nudbconfig.WithOverrideDirs(flags.overrides))
	}

	cfg, err := nudbconfig.Load(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading settings")
	}

	view, err := cfg.Lookup(flags.key)
	if err != nil {
		log.Fatal().Err(err).Str("key", flags.key).Msg("lookup failed")
	}

	if flags.listKeys {
		for _, k := range view.Keys() {
			fmt.Println(k)
		}
		return
	}

	if view.IsLeaf() {
		fmt.Println(view.Value())
		return
	}

	out, err := yaml.Marshal(view.Value())
	if err != nil {
		log.Fatal().Err(err).Msg("error rendering value")
	}
	os.Stdout.Write(out)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
