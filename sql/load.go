// Package sql embeds the catalog store schema and loads its SQL functions.
package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	"github.com/lib/pq"
)

//go:embed init.sql
var initSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed chunks.sql
var chunksSQL string

// Function lists for verification
var EntitiesFunctions = []string{
	"init_catalog_entities",
	"insert_catalog_entity",
	"select_sections_by_name_pattern",
	"select_sections_by_all_tokens",
	"select_work_types_by_section",
	"select_work_types_by_name_patterns",
	"select_entities_by_keyword",
	"select_entities_by_sections",
	"count_catalog_notes",
	"select_sections_by_embedding",
	"delete_catalog_entity",
}

var ChunksFunctions = []string{
	"init_catalog_chunks",
	"insert_catalog_chunk",
	"select_breadcrumb",
	"select_breadcrumbs",
	"select_chunk_sections_by_text",
	"select_child_sections",
	"select_chunk_content",
}

// Init initializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadEntitiesSql loads entity-related SQL functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	return loadFunctions(db, entitiesSQL, EntitiesFunctions, force, "entities")
}

// LoadChunksSql loads chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	return loadFunctions(db, chunksSQL, ChunksFunctions, force, "chunks")
}

func loadFunctions(db *sql.DB, sqlText string, functions []string, force bool, name string) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %v functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(sqlText)
	if err != nil {
		return fmt.Errorf("error executing %v SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Printf("SQL %v functions loaded successfully", name)
	return nil
}

// checkFunctions reports whether all named functions exist in the database.
func checkFunctions(db *sql.DB, functions []string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(DISTINCT proname) FROM pg_proc WHERE proname = ANY($1)`,
		pq.Array(functions),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == len(functions), nil
}
