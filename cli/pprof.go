//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cfgconv/log"
	"github.com/ardnew/cfgconv/pkg"
	"github.com/ardnew/cfgconv/profile"
)

type pprofConfig struct {
	Mode  string `default:""            enum:",${pprofModeEnum}" help:"Write a profile of the given kind (${enum})." placeholder:"MODE" short:"p"`
	Dir   string `default:"${pprofDir}" help:"Profile output directory."                                                               type:"path"`
	Quiet bool   `default:"true"        help:"Suppress profiler status messages."                                                    negatable:""`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), "pprof"),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling options"}
}

// start begins profiling if a mode was selected and returns the function
// that writes the profile.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	settings := profile.Settings{Mode: f.Mode, Dir: f.Dir, Quiet: f.Quiet}
	if !settings.Enabled() {
		return func() {}
	}

	log.DebugContext(ctx, "profiling", slog.String("mode", f.Mode), slog.String("dir", f.Dir))

	p := settings.Start()

	return func() {
		p.Stop()
		log.DebugContext(ctx, "profile written", slog.String("mode", f.Mode), slog.String("dir", f.Dir))
	}
}
