// migrate runs DB migrations from embedded SQL: go run ./cmd/migrate -direction up.
// SESSION_SECRET is required by config but unused.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/config"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Printf("migrate: %s complete\n", *direction)
}
