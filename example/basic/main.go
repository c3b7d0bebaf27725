package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jkwon/costbook"
	"github.com/jkwon/costbook/database"
	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "costbook_test",
		Username: "postgres",
		Password: "postgres",
		Schema:   "public",
	}

	cb, err := costbook.NewCostbook(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create costbook: %v", err)
	}
	defer cb.Close()

	ctx := context.Background()

	// Seed a small piping section
	fmt.Println("Seeding catalog...")
	err = cb.Chunks.InsertChunk(ctx, &database.Chunk{
		SectionID:  "13-2-3",
		Department: "기계설비부문",
		Chapter:    "용접공사",
		Title:      "강관용접",
		Content:    "강관용접 품셈. 관경 및 SCH별 용접 기준을 따른다.",
	})
	if err != nil {
		log.Fatalf("Failed to insert chunk: %v", err)
	}

	entities := []*model.Entity{
		{Name: "강관용접", Type: model.EntityTypeSection, SourceSection: "13-2-3"},
		{Name: "강관용접(100, SCH 40)", Type: model.EntityTypeWorkType, SourceSection: "13-2-3"},
		{Name: "강관용접(200, SCH 40)", Type: model.EntityTypeWorkType, SourceSection: "13-2-3"},
		{Name: "강관용접(200, SCH 80)", Type: model.EntityTypeWorkType, SourceSection: "13-2-3"},
	}
	for _, entity := range entities {
		if err := cb.Entities.InsertEntity(ctx, entity); err != nil {
			log.Fatalf("Failed to insert entity: %v", err)
		}
	}

	// Resolve a free text query
	query := "강관용접 품셈 알려줘"
	fmt.Printf("\nResolving: %s\n", query)

	resolution, err := cb.Resolve(ctx, &model.ResolveContext{
		WorkName: "강관용접",
		Keywords: []string{"품셈"},
		RawQuery: query,
	})
	if err != nil {
		log.Fatalf("Failed to resolve: %v", err)
	}

	fmt.Printf("Level: %s\n", resolution.Level)
	if resolution.Clarify != nil {
		fmt.Printf("Message: %s\n", resolution.Clarify.Message)
		for _, option := range resolution.Clarify.Options {
			fmt.Printf("  - %s\n", option.Label)
		}
	}

	// Narrow down within the chosen section
	fmt.Println("\nResolving scoped to section 13-2-3...")
	scoped, err := cb.Resolve(ctx, &model.ResolveContext{
		RawQuery: "강관용접",
		Scope:    model.SectionScope{SectionID: "13-2-3"},
	})
	if err != nil {
		log.Fatalf("Failed to resolve scoped: %v", err)
	}

	fmt.Printf("Level: %s\n", scoped.Level)
	if scoped.Clarify != nil {
		for _, option := range scoped.Clarify.Options {
			fmt.Printf("  - %s\n", option.Label)
		}
	}
}
