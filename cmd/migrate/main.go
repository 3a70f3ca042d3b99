package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"wishop.org/authd/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("WISHOP_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or WISHOP_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|version]")
	}

	switch flag.Arg(0) {
	case "up":
		if err := pg.RunMigrations(*dsn); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("migrations applied")
	case "down":
		m, err := pg.NewMigrator(*dsn)
		if err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		defer m.Close()
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("rolled back one migration")
	case "version":
		m, err := pg.NewMigrator(*dsn)
		if err != nil {
			log.Fatalf("migrate version: %v", err)
		}
		defer m.Close()
		v, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Println("no migrations applied")
				return
			}
			log.Fatalf("migrate version: %v", err)
		}
		fmt.Printf("version %d dirty %v\n", v, dirty)
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
}
