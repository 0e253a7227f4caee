package suppress

import (
	"github.com/docfold/docfold/internal/logging"
)

// ExtensionModules is the view of an extension the installer needs: its name
// and the logger modules it owns (dotted submodules included).
type ExtensionModules interface {
	Name() string
	Modules() []string
}

// Installer attaches the registry's rules to registered module loggers. It
// is a one-shot pass over the extension list: each module is visited at most
// once per run, and attachment itself deduplicates by rule identity, so
// running the installer again (the second lifecycle phase) only touches
// loggers that appeared in between.
type Installer struct {
	registry *Registry
	protect  map[string]struct{}
}

// NewInstaller creates an installer for the given registry. Extensions and
// modules named in protect are never scanned.
func NewInstaller(registry *Registry, protect []string) *Installer {
	protected := make(map[string]struct{}, len(protect))
	for _, name := range protect {
		protected[name] = struct{}{}
	}
	return &Installer{
		registry: registry,
		protect:  protected,
	}
}

// Install walks the extension list and attaches the applicable rules plus
// the default rule to every registered logger of every non-protected
// extension. Modules without a registered logger contribute nothing.
func (in *Installer) Install(extensions []ExtensionModules) {
	seen := make(map[string]struct{})

	for _, ext := range extensions {
		if in.protected(ext.Name()) {
			continue
		}

		for _, module := range ext.Modules() {
			if in.protected(module) {
				continue
			}
			if _, visited := seen[module]; visited {
				continue
			}
			seen[module] = struct{}{}

			in.installModule(module)
		}
	}
}

// installModule attaches every matching-prefix rule and the default rule to
// one module's logger. AttachFilter skips rules already attached and modules
// without a registered logger.
func (in *Installer) installModule(module string) {
	name := logging.Qualified(module)
	for _, rule := range in.registry.RulesFor(name) {
		logging.AttachFilter(module, rule)
	}
	logging.AttachFilter(module, in.registry.DefaultRule())
}

func (in *Installer) protected(name string) bool {
	_, ok := in.protect[name]
	return ok
}
