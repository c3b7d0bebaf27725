package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
	loadSql "github.com/jkwon/costbook/sql"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// EntitiesDBHandlerFunctions defines the interface for catalog entity
// database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(ctx context.Context, entity *model.Entity) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error
	SelectSectionsByNamePattern(ctx context.Context, pattern string, synonymPatterns []string, limit int) ([]*model.Entity, error)
	SelectSectionsByAllTokens(ctx context.Context, tokenPatterns []string, limit int) ([]*model.Entity, error)
	SelectWorkTypesBySection(ctx context.Context, sectionID string, limit int) ([]*model.Entity, error)
	SelectWorkTypesByNamePatterns(ctx context.Context, patterns []string, limit int) ([]*model.Entity, error)
	SelectEntitiesByKeyword(ctx context.Context, keyword string, limit int) ([]*model.Entity, error)
	SelectEntitiesBySections(ctx context.Context, sectionIDs []string, entityType model.EntityType, limit int) ([]*model.Entity, error)
	CountNotes(ctx context.Context, sectionID string) (int, error)
	SelectSectionsByEmbedding(ctx context.Context, embedding []float32, matchCount int, threshold float64) ([]*model.Entity, error)
}

// EntitiesDBHandler handles catalog entity database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new catalog entities database handler.
// It loads the entity-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	handler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(handler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = handler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return handler, nil
}

// CreateTable creates the 'catalog_entities' table and its indexes.
// If the table already exists, it does not create it again.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_catalog_entities();`)
	if err != nil {
		log.Panicf("error initializing catalog_entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table catalog_entities")

	return nil
}

// InsertEntity inserts a new catalog entity and fills in the generated fields
func (h *EntitiesDBHandler) InsertEntity(ctx context.Context, entity *model.Entity) error {
	var embeddingText *string
	if len(entity.Embedding) > 0 {
		s := pgvector.NewVector(entity.Embedding).String()
		embeddingText = &s
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_catalog_entity($1, $2, $3, $4, $5)`,
		entity.Name,
		string(entity.Type),
		nullableString(entity.SourceSection),
		entity.Properties,
		embeddingText,
	)

	return scanEntityRow(row, entity)
}

// DeleteEntity deletes a catalog entity by id
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_catalog_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectSectionsByNamePattern retrieves sections whose name matches the
// pattern or any of the synonym patterns.
func (h *EntitiesDBHandler) SelectSectionsByNamePattern(ctx context.Context, pattern string, synonymPatterns []string, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_sections_by_name_pattern($1, $2, $3)`,
		pattern,
		pq.Array(synonymPatterns),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanEntities(rows)
}

// SelectSectionsByAllTokens retrieves sections whose name matches every
// token pattern, the token split fallback of the resolver.
func (h *EntitiesDBHandler) SelectSectionsByAllTokens(ctx context.Context, tokenPatterns []string, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_sections_by_all_tokens($1, $2)`,
		pq.Array(tokenPatterns),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanEntities(rows)
}

// SelectWorkTypesBySection retrieves the work types of one section
func (h *EntitiesDBHandler) SelectWorkTypesBySection(ctx context.Context, sectionID string, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_work_types_by_section($1, $2)`,
		sectionID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanEntities(rows)
}

// SelectWorkTypesByNamePatterns retrieves work types whose name or
// korean_alias matches any of the patterns.
func (h *EntitiesDBHandler) SelectWorkTypesByNamePatterns(ctx context.Context, patterns []string, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_work_types_by_name_patterns($1, $2)`,
		pq.Array(patterns),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanEntities(rows)
}

// SelectEntitiesByKeyword retrieves work types and sections matching a
// single keyword in name or alias.
func (h *EntitiesDBHandler) SelectEntitiesByKeyword(ctx context.Context, keyword string, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_keyword($1, $2)`,
		keyword,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanEntities(rows)
}

// SelectEntitiesBySections retrieves entities of one type belonging to any
// of the given sections.
func (h *EntitiesDBHandler) SelectEntitiesBySections(ctx context.Context, sectionIDs []string, entityType model.EntityType, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_sections($1, $2, $3)`,
		pq.Array(sectionIDs),
		string(entityType),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanEntities(rows)
}

// CountNotes counts the auxiliary Note entities of a section
func (h *EntitiesDBHandler) CountNotes(ctx context.Context, sectionID string) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT count_catalog_notes($1)`,
		sectionID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// SelectSectionsByEmbedding performs cosine similarity search over section
// embeddings.
func (h *EntitiesDBHandler) SelectSectionsByEmbedding(ctx context.Context, embedding []float32, matchCount int, threshold float64) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_sections_by_embedding($1, $2, $3)`,
		pgvector.NewVector(embedding).String(),
		matchCount,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		var entityType string
		var sourceSection sql.NullString
		err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entityType,
			&sourceSection,
			&entity.Properties,
			&entity.CreatedAt,
			&entity.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		entity.Type = model.EntityType(entityType)
		entity.SourceSection = sourceSection.String
		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanEntityRow(row *sql.Row, entity *model.Entity) error {
	var entityType string
	var sourceSection sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entityType,
		&sourceSection,
		&entity.Properties,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	entity.Type = model.EntityType(entityType)
	entity.SourceSection = sourceSection.String
	return nil
}

func scanEntities(rows *sql.Rows) ([]*model.Entity, error) {
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		var entityType string
		var sourceSection sql.NullString
		err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entityType,
			&sourceSection,
			&entity.Properties,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		entity.Type = model.EntityType(entityType)
		entity.SourceSection = sourceSection.String
		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}
