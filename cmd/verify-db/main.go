// Command verify-db checks database connectivity and reports audit
// table row counts. Ops tooling for deployments.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

func main() {
	flag.Parse()

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetConnMaxLifetime(time.Minute)
	if err := db.Ping(); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
	fmt.Println("database connection: ok")

	for _, table := range []string{"consumed_authorizations", "deposit_records", "withdrawal_records"} {
		var count int64
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			fmt.Printf("%-24s unavailable (%v)\n", table, err)
			continue
		}
		fmt.Printf("%-24s %d rows\n", table, count)
	}
}
