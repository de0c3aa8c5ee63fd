// Package main provides a read-only inspection tool for the catalog database.
//
// Usage:
//
//	DATA_PATH=~/Pictor go run ./cmd/dbinspect
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Pictor")
	}
	dbPath := filepath.Join(dataPath, "pictor.db")

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Catalog Inspection ===")
	fmt.Println()

	fmt.Println("Counts:")
	for _, table := range []string{"posts", "tags", "post_tags", "pools", "pool_posts", "post_sources"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		fmt.Printf("  %-13s %d\n", table, n)
	}
	fmt.Println()

	fmt.Println("Posts by media kind:")
	printGrouped(db, "SELECT media_kind, COUNT(*) FROM posts GROUP BY media_kind ORDER BY media_kind")
	fmt.Println()

	fmt.Println("Posts by rating:")
	printGrouped(db, "SELECT rating, COUNT(*) FROM posts GROUP BY rating ORDER BY rating")
	fmt.Println()

	fmt.Println("Top tags:")
	printGrouped(db, `
		SELECT t.normalized_name, COUNT(pt.post_id)
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY COUNT(pt.post_id) DESC, t.normalized_name
		LIMIT 15`)
	fmt.Println()

	checkPoolDensity(db)
	checkMissingThumbnails(db)
}

// printGrouped runs a two-column (label, count) query and prints each row.
func printGrouped(db *sql.DB, query string) {
	rows, err := db.Query(query)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("  %-20s %d\n", label, count)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Error iterating rows: %v", err)
	}
}

// checkPoolDensity reports pools whose positions are not exactly 1..n.
func checkPoolDensity(db *sql.DB) {
	rows, err := db.Query(`
		SELECT pool_id, COUNT(*), MIN(position), MAX(position)
		FROM pool_posts
		GROUP BY pool_id`)
	if err != nil {
		log.Fatalf("Pool density query failed: %v", err)
	}
	defer rows.Close()

	broken := 0
	for rows.Next() {
		var poolID int64
		var count, minPos, maxPos int
		if err := rows.Scan(&poolID, &count, &minPos, &maxPos); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		if minPos != 1 || maxPos != count {
			broken++
			fmt.Printf("  pool %d has gaps: %d members, positions %d..%d\n", poolID, count, minPos, maxPos)
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Error iterating pools: %v", err)
	}

	if broken == 0 {
		fmt.Println("Pool ordering: all pools dense")
	} else {
		fmt.Printf("Pool ordering: %d pools with gaps\n", broken)
	}
}

// checkMissingThumbnails reports posts whose thumbnail column is empty.
func checkMissingThumbnails(db *sql.DB) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM posts WHERE thumbnail_path IS NULL OR thumbnail_path = ''").Scan(&n)
	if err != nil {
		log.Fatalf("Thumbnail query failed: %v", err)
	}
	if n == 0 {
		fmt.Println("Thumbnails: every post has one")
	} else {
		fmt.Printf("Thumbnails: %d posts missing\n", n)
	}
}
