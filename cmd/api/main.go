package main

import (
	"log"

	"github.com/joho/godotenv"

	"deeplinkqr/internal/app"
	"deeplinkqr/internal/config"
	"deeplinkqr/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment as-is")
	}

	cfg := config.Load()

	gdb, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open db:", err)
	}

	a := app.New(cfg, gdb)
	log.Fatal(a.Run(cfg.Addr))
}
