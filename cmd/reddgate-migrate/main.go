// reddgate-migrate aplica el esquema postgres embebido.
//
//	reddgate-migrate -config configs/config.yaml up
//	reddgate-migrate down [steps]
package main

import (
	"context"
	"flag"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/reddgate/internal/config"
	migrations "github.com/dropDatabas3/reddgate/migrations/postgres"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "ruta al YAML de config")
	flag.Parse()

	_ = godotenv.Load()

	action := "up"
	steps := 0
	if args := flag.Args(); len(args) >= 1 {
		action = strings.ToLower(args[0])
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
				steps = n
			}
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("storage.dsn vacío: las migraciones requieren postgres")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	var suffix string
	switch action {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		log.Fatalf("acción desconocida: %q (up|down)", action)
	}

	files, err := listSQL(suffix)
	if err != nil {
		log.Fatalf("listar migraciones: %v", err)
	}
	if len(files) == 0 {
		log.Printf("sin migraciones %s, nada que hacer", suffix)
		return
	}

	sort.Strings(files)
	if action == "down" {
		// down se aplica en orden inverso
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	log.Printf("aplicando %d migración(es) %s...", len(files), action)
	for _, f := range files {
		sqlBytes, err := migrations.FS.ReadFile(f)
		if err != nil {
			log.Fatalf("leer %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		log.Printf("ok: %s", f)
	}
	log.Println("migraciones completadas")
}

func listSQL(suffix string) ([]string, error) {
	entries, err := migrations.FS.ReadDir(migrations.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, path.Join(migrations.Dir, e.Name()))
		}
	}
	return out, nil
}
