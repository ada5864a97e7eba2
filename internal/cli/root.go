// Package cli implements the hxel command line: rendering fixture
// documents, serving them over HTTP and keeping element snapshots.
package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pthm/hxel"
	"github.com/pthm/hxel/examples/widgets"
	"github.com/pthm/hxel/internal/config"
	"github.com/pthm/hxel/internal/fixture"
	"github.com/pthm/hxel/internal/store"
	"github.com/pthm/hxel/lib/dom"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
)

// app is the state shared by the commands of one invocation.
type app struct {
	configPath string
	cfg        *config.Config
	reg        *hxel.Registry
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "hxel",
		Short: "Render and serve documents built from hxel custom elements",
		Long: `hxel builds documents from YAML fixtures, upgrades their custom
elements, waits for deferred work and renders the result as HTML with
declarative shadow DOM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./hxel.yaml)")

	root.AddCommand(newVersionCommand())
	root.AddCommand(newRenderCommand(a))
	root.AddCommand(newServeCommand(a))
	root.AddCommand(newTagsCommand(a))
	root.AddCommand(newSnapshotCommand(a))
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			title := color.New(color.FgCyan, color.Bold)
			w := cmd.OutOrStdout()
			title.Fprint(w, "hxel version: ")
			fmt.Fprintln(w, Version)
			title.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, GitCommit)
			title.Fprint(w, "Go version: ")
			fmt.Fprintln(w, runtime.Version())
		},
	}
}

// setup loads the configuration, installs the logger and defines the
// widgets on a fresh registry.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	hxel.SetLogger(logger)

	a.cfg = cfg
	a.reg = hxel.NewRegistry([]byte(cfg.Key))
	widgets.Define(a.reg)
	return nil
}

// build loads a fixture, optionally restores stored snapshots and settles
// deferred work.
func (a *app) build(ctx context.Context, path string, restore bool) (*dom.Document, error) {
	f, err := fixture.LoadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := f.Build(a.reg)
	if err != nil {
		return nil, err
	}
	if restore {
		if err := a.restore(doc); err != nil {
			return nil, err
		}
	}
	if err := a.settle(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *app) settle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SettleTimeout)
	defer cancel()
	return hxel.Settle(ctx)
}

func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Store == "" {
		return nil, errors.New("no snapshot store configured (set store in hxel.yaml or HXEL_STORE)")
	}
	return store.Open(a.cfg.Store)
}

// restore applies stored snapshots to upgraded elements that have an id.
func (a *app) restore(doc *dom.Document) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, el := range identified(doc) {
		id := el.Node().ID()
		s, err := st.Get(id)
		if errors.Is(err, store.ErrNoSnapshot) {
			continue
		}
		if err != nil {
			return err
		}
		if err := a.reg.Restore(el, s, a.cfg.Sensitive); err != nil {
			return fmt.Errorf("restore %s: %w", id, err)
		}
	}
	return nil
}

// identified returns the upgraded elements of doc that carry an id, in
// document order.
func identified(doc *dom.Document) []*hxel.Element {
	var found []*hxel.Element
	doc.Node().Walk(func(n *dom.Node) {
		if el := hxel.ElementOf(n); el != nil && el.Upgraded() && n.ID() != "" {
			found = append(found, el)
		}
	})
	return found
}
