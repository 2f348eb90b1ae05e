package main

import (
	"os"

	"github.com/matsen/bjjflow/internal/config"
	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/geometry"
	"github.com/matsen/bjjflow/internal/storage"
)

// session is one workspace loaded into an editor for the duration of a command.
type session struct {
	root   string
	cfg    *config.Config
	state  *storage.StateStore
	editor *editor.Editor
	source string
}

// mustOpenSession finds the workspace and boots an editor from the bundled
// workspace file, then the saved state, then the built-in template.
func mustOpenSession() *session {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)

	state, err := storage.NewOSStateStore(config.StatePath(root))
	if err != nil {
		exitWithError(ExitConfigError, "opening workspace state: %v", err)
	}

	ed := editor.New(editorOptions(cfg)...)

	var sources []editor.Source
	if bundled := cfg.ResolveBundledPath(root); bundled != "" {
		sources = append(sources, editor.Source{
			Name: "bundled workspace " + bundled,
			Load: func() ([]byte, error) { return os.ReadFile(bundled) },
		})
	}
	sources = append(sources, editor.Source{Name: "saved workspace", Load: state.Load})

	return &session{
		root:   root,
		cfg:    cfg,
		state:  state,
		editor: ed,
		source: ed.Boot(sources...),
	}
}

func editorOptions(cfg *config.Config) []editor.Option {
	opts := []editor.Option{editor.WithLogger(newLogger())}
	if cfg.ViewportWidth > 0 || cfg.ViewportHeight > 0 {
		opts = append(opts, editor.WithViewport(geometry.Viewport{
			Width:  cfg.ViewportWidth,
			Height: cfg.ViewportHeight,
		}))
	}
	return opts
}

// save writes the workspace to the state file.
func (s *session) save(data []byte) error {
	return s.state.Save(data)
}

// mustSave persists the whole workspace, exits on error.
func (s *session) mustSave() {
	data, err := s.editor.SerializeWorkspace()
	if err != nil {
		exitWithError(ExitError, "serializing workspace: %v", err)
	}
	if err := s.save(data); err != nil {
		exitWithError(ExitError, "saving workspace: %v", err)
	}
}

// mustApply runs cmds in order and saves the workspace once. It returns the
// last command's result. Validation errors exit with ExitDataError.
func (s *session) mustApply(cmds ...editor.Command) editor.Result {
	var res editor.Result
	for _, cmd := range cmds {
		var err error
		if res, err = s.editor.Apply(cmd); err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
	}
	s.mustSave()
	return res
}

// chartName is the active chart's key as shown to users.
func (s *session) chartName() string {
	return s.editor.Key().String()
}
