package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	router := mux.NewRouter()

	services.Web.Routes(router)
	router.HandleFunc("/ws/matches/{id}", services.Gateway.ServeWS)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // restrict in production
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Authorization"},
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
