// Package extension wires docfold's plugin lifecycle. An App collects
// extensions, runs their setup in registration order, and fires two
// lifecycle phases around third-party setup so built-ins can act both
// before and after user extensions exist.
package extension

import (
	"fmt"
	"log/slog"

	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/events"
	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/suppress"
)

// Extension is a pluggable unit of functionality. Modules lists the
// logging modules the extension owns, dotted submodules included, so
// the suppression installer can target them.
type Extension interface {
	Name() string
	Modules() []string
	Setup(app *App) error
}

// Hook runs at a lifecycle phase boundary.
type Hook func(app *App)

// App is the extension host. Built-ins (suppress, confval, event) are
// always present; user extensions are added with Register before Setup.
type App struct {
	domain *directives.Domain
	bus    *events.Bus
	log    *slog.Logger

	builtins   []Extension
	registered []Extension
	active     []Extension

	beforeHooks []Hook
	afterHooks  []Hook
	setupDone   bool
}

// NewApp creates an App around the given domain and event bus. The
// suppression configuration feeds the built-in suppress extension.
func NewApp(domain *directives.Domain, bus *events.Bus, suppressCfg suppress.Config) *App {
	return &App{
		domain: domain,
		bus:    bus,
		log:    logging.GetLogger("app"),
		builtins: []Extension{
			newSuppressExtension(suppressCfg),
			confvalExtension{},
			eventExtension{},
		},
	}
}

// Domain returns the directive object domain.
func (a *App) Domain() *directives.Domain { return a.domain }

// Bus returns the event bus.
func (a *App) Bus() *events.Bus { return a.bus }

// Register adds a user extension. Must be called before Setup.
func (a *App) Register(ext Extension) {
	a.registered = append(a.registered, ext)
}

// OnBeforeExtensions registers a hook fired after built-in setup and
// before any user extension runs.
func (a *App) OnBeforeExtensions(h Hook) {
	a.beforeHooks = append(a.beforeHooks, h)
}

// OnAfterExtensions registers a hook fired once every extension has
// finished self-registering.
func (a *App) OnAfterExtensions(h Hook) {
	a.afterHooks = append(a.afterHooks, h)
}

// Extensions returns the extensions whose setup succeeded, built-ins
// first, in registration order.
func (a *App) Extensions() []Extension {
	out := make([]Extension, len(a.active))
	copy(out, a.active)
	return out
}

// Setup runs the lifecycle: built-in setup, the before phase, user
// extension setup, then the after phase. A failing built-in aborts with
// an error; a failing user extension is logged and skipped so the rest
// still load.
func (a *App) Setup() error {
	if a.setupDone {
		return fmt.Errorf("setup already ran")
	}
	a.setupDone = true

	for _, ext := range a.builtins {
		if err := ext.Setup(a); err != nil {
			return fmt.Errorf("builtin extension %s: %w", ext.Name(), err)
		}
		a.active = append(a.active, ext)
	}

	a.fire(a.beforeHooks)

	for _, ext := range a.registered {
		if err := ext.Setup(a); err != nil {
			a.log.Warn("Extension setup failed, skipping",
				"extension", ext.Name(),
				"error", err)
			continue
		}
		a.active = append(a.active, ext)
	}

	a.fire(a.afterHooks)
	return nil
}

func (a *App) fire(hooks []Hook) {
	for _, h := range hooks {
		h(a)
	}
}

// suppressTargets maps the active extensions into installer targets and
// appends a synthetic "core" target covering registered logging modules
// no extension claims.
func (a *App) suppressTargets() []suppress.ExtensionModules {
	claimed := make(map[string]bool)
	targets := make([]suppress.ExtensionModules, 0, len(a.active)+1)
	for _, ext := range a.active {
		targets = append(targets, ext)
		for _, m := range ext.Modules() {
			claimed[m] = true
		}
	}

	var rest []string
	for _, m := range logging.Modules() {
		if !claimed[m] {
			rest = append(rest, m)
		}
	}
	return append(targets, coreTarget(rest))
}

// coreTarget stands in for the application's own logging modules.
type coreTarget []string

func (c coreTarget) Name() string      { return "core" }
func (c coreTarget) Modules() []string { return c }
