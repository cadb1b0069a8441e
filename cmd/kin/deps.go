package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/ports"
	"github.com/ersonp/kin-core/internal/domain/services"
	"github.com/ersonp/kin-core/internal/infrastructure/config"
	embedder "github.com/ersonp/kin-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/kin-core/internal/infrastructure/logging"
	"github.com/ersonp/kin-core/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/kin-core/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Trees         *config.TreesConfig
	Logger        *log.Logger
	Relationships *handlers.RelationshipHandler
	Members       *handlers.MemberHandler
	Materialize   *handlers.MaterializeHandler
	Search        *handlers.SearchHandler
	Export        *handlers.ExportHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
	index        *qdrant.Repository
}

// withDeps loads config and builds dependencies for the selected tree,
// then calls the provided function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}

	if globalTree == "" {
		return errors.New("tree is required (use --tree flag)")
	}

	collection, err := trees.GetCollection(globalTree)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: config.SQLitePathForTree(cwd, globalTree)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	deps := &internalDeps{relationalDB: relationalDB}

	var kin *services.KinshipIndex
	if cfg.Index.Enabled {
		repo, emb, err := openIndex(cfg, collection)
		if err != nil {
			return err
		}
		defer repo.Close()
		deps.index = repo
		kin = services.NewKinshipIndex(repo, emb, relationalDB, logger)
	}

	memberService := services.NewMemberService(relationalDB, kin, logger)
	relationshipService := services.NewRelationshipService(relationalDB, kin, logger)
	materializer := services.NewMaterializer(relationalDB, memberService, kin, cfg.Materializer.Parallelism, logger)

	deps.Deps = Deps{
		Config:        cfg,
		Trees:         trees,
		Logger:        logger,
		Relationships: handlers.NewRelationshipHandler(relationshipService),
		Members:       handlers.NewMemberHandler(memberService),
		Materialize:   handlers.NewMaterializeHandler(materializer),
		Search:        handlers.NewSearchHandler(kin),
		Export:        handlers.NewExportHandler(memberService, relationshipService),
	}

	return fn(deps)
}

// openIndex connects to the tree's Qdrant collection and the embedder.
func openIndex(cfg *config.Config, collection string) (*qdrant.Repository, *embedder.Embedder, error) {
	qdrantCfg := cfg.Qdrant
	qdrantCfg.Collection = collection

	repo, err := qdrant.NewRepository(qdrantCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating qdrant repository: %w", err)
	}

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	return repo, emb, nil
}

// newLogger builds the logger, honoring --log-level.
func newLogger(cfg *config.Config) *log.Logger {
	logCfg := cfg.Log
	if globalLogLevel != "" {
		logCfg.Level = globalLogLevel
	}
	return logging.New(logCfg)
}

// withRelationshipHandler provides access to the RelationshipHandler for relationship commands.
func withRelationshipHandler(fn func(*handlers.RelationshipHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.Relationships)
	})
}

// withMemberHandler provides access to the MemberHandler for member commands.
func withMemberHandler(fn func(*handlers.MemberHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.Members)
	})
}

// withTreeDB opens the database of a tree that may not be registered yet.
func withTreeDB(basePath, tree string, fn func(ports.RelationalDB) error) error {
	db, err := sqlite.NewRepository(config.SQLiteConfig{Path: config.SQLitePathForTree(basePath, tree)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer db.Close()
	return fn(db)
}
