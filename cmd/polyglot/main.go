package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-polyglot"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/identity"
	"github.com/goliatone/go-polyglot/internal/titles"
	"github.com/google/uuid"
)

var moduleBuilder = func(cfg polyglot.Config) (*polyglot.Module, error) {
	return polyglot.New(cfg)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("polyglot: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: polyglot <migrate|merge|title|repair> [flags]")
	}
	switch args[0] {
	case "migrate":
		return runMigrate(ctx, args[1:], out)
	case "merge":
		return runMerge(ctx, args[1:], out)
	case "title":
		return runTitle(ctx, args[1:], out)
	case "repair":
		return runRepair(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type common struct {
	config *string
	env    *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		config: fs.String("config", "", "Path to a YAML config file"),
		env:    fs.String("env-file", ".env", "Comma separated .env files to preload"),
	}
}

func (c common) open() (*polyglot.Module, error) {
	cfg, err := polyglot.LoadConfig(polyglot.LoadOptions{
		Path:   *c.config,
		DotEnv: splitList(*c.env),
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyglot-migrate", flag.ContinueOnError)
	flags := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	module, err := flags.open()
	if err != nil {
		return err
	}
	defer module.Close()

	if err := module.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(out, "schema up to date")
	return nil
}

func runMerge(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyglot-merge", flag.ContinueOnError)
	flags := commonFlags(fs)
	kind := fs.String("kind", "", "Owner kind: artist, music or place")
	self := fs.String("self", "", "Surviving owner id")
	other := fs.String("other", "", "Owner id merged into self")
	priorities := fs.String("priorities", "default=self", "Comma separated key=self|other pairs")
	actor := fs.String("actor", "", "Actor id stamped on updated records (defaults to the CLI actor)")
	commit := fs.Bool("commit", false, "Persist the merge instead of previewing it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	selfRef, err := parseRef(*kind, *self)
	if err != nil {
		return fmt.Errorf("parse self: %w", err)
	}
	otherRef, err := parseRef(*kind, *other)
	if err != nil {
		return fmt.Errorf("parse other: %w", err)
	}
	actorID, err := parseActor(*actor)
	if err != nil {
		return fmt.Errorf("parse actor: %w", err)
	}
	pairs, err := parsePriorities(*priorities)
	if err != nil {
		return err
	}

	module, err := flags.open()
	if err != nil {
		return err
	}
	defer module.Close()

	report, err := module.Merge(ctx, actorID, selfRef, otherRef, pairs, *commit)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runTitle(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyglot-title", flag.ContinueOnError)
	flags := commonFlags(fs)
	kind := fs.String("kind", "", "Owner kind: artist, music or place")
	id := fs.String("id", "", "Owner id")
	lang := fs.String("lang", "", "Preferred language")
	policy := fs.String("fallback", "either", "Fallback policy: never, either or both")
	def := fs.String("default", "", "Value printed when no title resolves")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ref, err := parseRef(*kind, *id)
	if err != nil {
		return err
	}
	fallback, err := titles.ParseFallbackPolicy(*policy)
	if err != nil {
		return err
	}

	module, err := flags.open()
	if err != nil {
		return err
	}
	defer module.Close()

	title, err := module.Title(ctx, ref, *lang, fallback, *def)
	if err != nil {
		return fmt.Errorf("resolve title: %w", err)
	}
	fmt.Fprintln(out, title)
	return nil
}

func runRepair(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyglot-repair", flag.ContinueOnError)
	flags := commonFlags(fs)
	kind := fs.String("kind", "", "Owner kind: artist, music or place")
	id := fs.String("id", "", "Owner id")
	actor := fs.String("actor", "", "Actor id stamped on updated records (defaults to the CLI actor)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ref, err := parseRef(*kind, *id)
	if err != nil {
		return err
	}
	actorID, err := parseActor(*actor)
	if err != nil {
		return fmt.Errorf("parse actor: %w", err)
	}

	module, err := flags.open()
	if err != nil {
		return err
	}
	defer module.Close()

	kept, err := module.RepairOriginals(ctx, actorID, ref)
	if err != nil {
		return fmt.Errorf("repair originals: %w", err)
	}
	if kept == nil {
		fmt.Fprintln(out, "no original translation")
		return nil
	}
	fmt.Fprintf(out, "original: %s (%s)\n", kept.ID, kept.Langcode)
	return nil
}

func parseRef(kind, id string) (domain.OwnerRef, error) {
	k := domain.NormalizeOwnerKind(kind)
	switch k {
	case domain.OwnerKindArtist, domain.OwnerKindMusic, domain.OwnerKindPlace:
	default:
		return domain.OwnerRef{}, fmt.Errorf("unknown owner kind %q", kind)
	}
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return domain.OwnerRef{}, fmt.Errorf("invalid owner id %q: %w", id, err)
	}
	return domain.Ref(k, parsed), nil
}

// parseActor falls back to the deterministic CLI actor when value is blank.
func parseActor(value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return identity.ActorUUID("cli"), nil
	}
	return uuid.Parse(value)
}

func parsePriorities(value string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(value) {
		key, side, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("priority %q must be key=self|other", pair)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(side)
	}
	return out, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
