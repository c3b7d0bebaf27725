package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
	loadSql "github.com/jkwon/costbook/sql"
	"github.com/lib/pq"
)

// Chunk represents one source document chunk. A chunk carries the
// breadcrumb metadata of its catalog section and the raw document text.
type Chunk struct {
	ID         int64     `json:"id"`
	SectionID  string    `json:"section_id"`
	Department string    `json:"department"`
	Chapter    string    `json:"chapter"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChunksDBHandlerFunctions defines the interface for source document chunk
// database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(ctx context.Context, chunk *Chunk) error
	SelectBreadcrumb(ctx context.Context, sectionID string) (*model.Breadcrumb, error)
	SelectBreadcrumbs(ctx context.Context, sectionIDs []string) (map[string]model.Breadcrumb, error)
	SelectSectionsByText(ctx context.Context, pattern string, limit int) ([]*model.ChildSection, error)
	SelectChildSections(ctx context.Context, prefix string, department string, limit int) ([]*model.ChildSection, error)
	SelectChunkContent(ctx context.Context, sectionID string) (*Chunk, error)
}

// ChunksDBHandler handles source document chunk database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads the chunk-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	handler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(handler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = handler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return handler, nil
}

// CreateTable creates the 'catalog_chunks' table and its indexes.
// If the table already exists, it does not create it again.
func (h *ChunksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_catalog_chunks();`)
	if err != nil {
		log.Panicf("error initializing catalog_chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table catalog_chunks")

	return nil
}

// InsertChunk inserts a new source document chunk
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *Chunk) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_catalog_chunk($1, $2, $3, $4, $5)`,
		chunk.SectionID,
		chunk.Department,
		chunk.Chapter,
		chunk.Title,
		chunk.Content,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.SectionID,
		&chunk.Department,
		&chunk.Chapter,
		&chunk.Title,
		&chunk.Content,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectBreadcrumb retrieves the department/chapter/title path of one
// section, or nil when the section has no source document.
func (h *ChunksDBHandler) SelectBreadcrumb(ctx context.Context, sectionID string) (*model.Breadcrumb, error) {
	breadcrumb := &model.Breadcrumb{}
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_breadcrumb($1)`,
		sectionID,
	).Scan(
		&breadcrumb.Department,
		&breadcrumb.Chapter,
		&breadcrumb.Title,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, helper.NewError("scan", err)
	}

	return breadcrumb, nil
}

// SelectBreadcrumbs retrieves the breadcrumbs of many sections at once,
// keyed by section id. Sections without a source document are absent.
func (h *ChunksDBHandler) SelectBreadcrumbs(ctx context.Context, sectionIDs []string) (map[string]model.Breadcrumb, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_breadcrumbs($1)`,
		pq.Array(sectionIDs),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	breadcrumbs := map[string]model.Breadcrumb{}
	for rows.Next() {
		var sectionID string
		var breadcrumb model.Breadcrumb
		err := rows.Scan(
			&sectionID,
			&breadcrumb.Department,
			&breadcrumb.Chapter,
			&breadcrumb.Title,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		breadcrumbs[sectionID] = breadcrumb
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return breadcrumbs, nil
}

// SelectSectionsByText retrieves the sections whose document text contains
// the pattern.
func (h *ChunksDBHandler) SelectSectionsByText(ctx context.Context, pattern string, limit int) ([]*model.ChildSection, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT section_id, title, department FROM select_chunk_sections_by_text($1, $2)`,
		pattern,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanChildSections(rows)
}

// SelectChildSections retrieves sections whose id textually extends the
// prefix, optionally restricted to one department.
func (h *ChunksDBHandler) SelectChildSections(ctx context.Context, prefix string, department string, limit int) ([]*model.ChildSection, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_child_sections($1, $2, $3)`,
		prefix,
		department,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanChildSections(rows)
}

// SelectChunkContent retrieves the full source document of one section, or
// nil when there is none.
func (h *ChunksDBHandler) SelectChunkContent(ctx context.Context, sectionID string) (*Chunk, error) {
	chunk := &Chunk{}
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_chunk_content($1)`,
		sectionID,
	).Scan(
		&chunk.SectionID,
		&chunk.Department,
		&chunk.Chapter,
		&chunk.Title,
		&chunk.Content,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

func scanChildSections(rows *sql.Rows) ([]*model.ChildSection, error) {
	defer rows.Close()

	var sections []*model.ChildSection
	for rows.Next() {
		section := &model.ChildSection{}
		err := rows.Scan(
			&section.SectionID,
			&section.Title,
			&section.Department,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		sections = append(sections, section)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return sections, nil
}
