package costbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jkwon/costbook/core/clarify"
	"github.com/jkwon/costbook/core/pipeline"
	"github.com/jkwon/costbook/core/resolve"
	"github.com/jkwon/costbook/database"
	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
	loadSql "github.com/jkwon/costbook/sql"
)

// Similarity search defaults of the optional embedding pre match.
const (
	preMatchCount     = 5
	preMatchThreshold = 0.4
)

// Costbook provides a unified interface to the catalog store and the
// resolution engine.
type Costbook struct {
	DB       *helper.Database
	Chunks   *database.ChunksDBHandler
	Entities *database.EntitiesDBHandler
	Store    *database.CatalogStore
	Engine   *resolve.Engine
	Embedder pipeline.EmbedFunc // Optional, enables the embedding pre match
	// Logging
	log *slog.Logger
}

// NewCostbook creates a new Costbook instance with all handlers initialized.
// The synonym dictionaries are validated here so a broken dictionary fails
// at startup, not on the first query.
func NewCostbook(config *helper.DatabaseConfiguration) (*Costbook, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	dict, err := resolve.DefaultDictionary()
	if err != nil {
		return nil, helper.NewError("load synonym dictionaries", err)
	}

	// Initialize database
	db := helper.NewDatabase("costbook", config, logger)
	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	chunks, err := database.NewChunksDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	store := database.NewCatalogStore(entities, chunks)
	engine := resolve.NewEngine(store, dict, logger)

	return &Costbook{
		DB:       db,
		Chunks:   chunks,
		Entities: entities,
		Store:    store,
		Engine:   engine,
		log:      logger,
	}, nil
}

// Close closes the database connection
func (c *Costbook) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// UseDefaultEmbedder sets up the multilingual sentence transformer embedder
// used by the embedding pre match.
func (c *Costbook) UseDefaultEmbedder() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}
	c.Embedder = embedder
	return nil
}

// Resolve runs one resolution call end to end: cascade, scoring,
// classification and clarification. A ResolvedEntitySet comes back only
// when the call narrowed down to a single work type and the caller asked
// to skip clarification; every other outcome is a ClarifyResult.
func (c *Costbook) Resolve(ctx context.Context, rc *model.ResolveContext) (*model.Resolution, error) {
	result, err := c.Engine.Resolve(ctx, rc)
	if err != nil {
		return nil, helper.NewError("resolve query", err)
	}

	c.log.Info("Resolved query",
		slog.String("level", string(result.Level)),
		slog.Int("sections", len(result.Sections)),
		slog.Int("work_types", len(result.WorkTypes)))

	if rc.AutoResolve && result.Level == model.LevelWorkTypeFew && len(result.WorkTypes) == 1 {
		return &model.Resolution{
			Level: result.Level,
			Resolved: &model.ResolvedEntitySet{
				WorkTypes: result.WorkTypes,
				SectionID: result.PrimarySectionID,
			},
		}, nil
	}

	return &model.Resolution{
		Level:   result.Level,
		Clarify: clarify.Present(result),
	}, nil
}

// PreMatchSections finds the sections closest to the query by embedding
// similarity, for seeding ResolveContext.PreMatchedSections. Requires an
// embedder, see UseDefaultEmbedder.
func (c *Costbook) PreMatchSections(ctx context.Context, query string) ([]*model.Entity, error) {
	if c.Embedder == nil {
		return nil, helper.NewError("pre match sections", fmt.Errorf("embedder not set, use UseDefaultEmbedder() first"))
	}

	embedding, err := c.Embedder(query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	return c.Entities.SelectSectionsByEmbedding(ctx, embedding, preMatchCount, preMatchThreshold)
}
