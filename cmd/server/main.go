package main

import (
	"log"
	"net/http"
	"os"

	"agentbattle/internal/api"
	"agentbattle/internal/engine"
	"agentbattle/internal/settlement"
)

func main() {
	// DATABASE_URL selects the Postgres ledger; without it the in-memory
	// mock settles games, which is enough for local play and tests.
	var gateway settlement.Gateway
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		ledger, err := settlement.NewLedgerFromDB(connStr)
		if err != nil {
			log.Fatalf("failed to connect settlement ledger: %v", err)
		}
		gateway = ledger
		log.Println("settlement: postgres ledger")
	} else {
		gateway = settlement.NewMock()
	}

	eng := engine.New(gateway)

	mux := http.NewServeMux()
	api.New(eng).Register(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server starting on port " + port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
