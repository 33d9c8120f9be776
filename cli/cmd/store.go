package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

// Store manages the SQLite template store named by --db.
type Store struct {
	Put    StorePut    `cmd:"" help:"Store a template under a name."`
	Import StoreImport `cmd:"" help:"Store every matching template in a directory."`
	Ls     StoreList   `cmd:"" help:"List stored templates."`
	Rm     StoreRemove `cmd:"" help:"Remove stored templates."`
}

// StorePut stores one template.
type StorePut struct {
	Name string `arg:"" help:"Name the template is loaded by."`
	File string `arg:"" default:"-" help:"Template source file, or '-' for stdin."`
}

// Run executes the store put command.
func (p *StorePut) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	r, err := openInput(p.File)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).With(slog.String("file", p.File))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).With(slog.String("file", p.File))
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Put(ctx, p.Name, string(data))
}

// StoreImport stores every template in a directory matching a pattern.
type StoreImport struct {
	Dir     string `arg:"" help:"Directory to import from."            type:"existingdir"`
	Pattern string `arg:"" default:"**/*.html" help:"Doublestar pattern selecting files relative to the directory." optional:""`
}

// Run executes the store import command.
func (i *StoreImport) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	abs, err := filepath.Abs(i.Dir)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Import(ctx, afero.NewIOFS(afero.NewBasePathFs(afero.NewOsFs(), abs)), i.Pattern)

	st := newStyler(outputFrom(ctx))
	fmt.Fprintf(outputFrom(ctx), "imported %s templates from %s\n",
		st.ok(fmt.Sprint(n)), st.name(i.Dir))

	if err != nil {
		return ErrImportFailed.Wrap(err).With(slog.Int("imported", n))
	}

	log.DebugContext(ctx, "imported templates",
		slog.String("dir", abs),
		slog.String("pattern", i.Pattern),
		slog.Int("count", n),
	)

	return nil
}

// StoreList lists stored templates.
type StoreList struct {
	Long bool `help:"Show size, hash, and modification time." short:"l"`
}

// Run executes the store ls command.
func (l *StoreList) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(ctx)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)
	st := newStyler(w)

	if !l.Long {
		for _, e := range entries {
			fmt.Fprintln(w, st.name(e.Name))
		}

		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			e.Name, e.Size, e.Hash, e.Updated.Format(time.DateTime))
	}

	return tw.Flush()
}

// StoreRemove removes stored templates.
type StoreRemove struct {
	Names []string `arg:"" help:"Names of templates to remove." name:"name"`
}

// Run executes the store rm command.
func (r *StoreRemove) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, name := range r.Names {
		if err := s.Delete(ctx, name); err != nil {
			return err
		}

		log.DebugContext(ctx, "removed template", slog.String("name", name))
	}

	return nil
}
