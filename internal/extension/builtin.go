package extension

import (
	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/suppress"
)

// suppressExtension installs log-record suppression rules. The rule
// registry is built once during setup; both lifecycle phases reuse it
// so loggers created early and late are covered without double
// attachment.
type suppressExtension struct {
	cfg       suppress.Config
	installer *suppress.Installer
}

func newSuppressExtension(cfg suppress.Config) *suppressExtension {
	return &suppressExtension{cfg: cfg}
}

func (s *suppressExtension) Name() string { return "suppress" }

func (s *suppressExtension) Modules() []string { return []string{"suppress"} }

func (s *suppressExtension) Setup(app *App) error {
	registry, err := suppress.Build(s.cfg)
	if err != nil {
		return err
	}
	s.installer = suppress.NewInstaller(registry, s.cfg.Protect)
	app.OnBeforeExtensions(s.install)
	app.OnAfterExtensions(s.install)
	return nil
}

func (s *suppressExtension) install(app *App) {
	s.installer.Install(app.suppressTargets())
}

// confvalExtension registers the confval directive and role.
type confvalExtension struct{}

func (confvalExtension) Name() string { return "confval" }

func (confvalExtension) Modules() []string { return []string{"directives"} }

func (confvalExtension) Setup(app *App) error {
	return app.Domain().RegisterDirective(directives.Confval())
}

// eventExtension registers the event directive and role.
type eventExtension struct{}

func (eventExtension) Name() string { return "event" }

func (eventExtension) Modules() []string { return []string{"directives"} }

func (eventExtension) Setup(app *App) error {
	return app.Domain().RegisterDirective(directives.Event())
}
