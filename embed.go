package main

import (
	"embed"
	"io/fs"
	"log"
)

// The status page and its assets.
//
//go:embed frontend
var frontendFiles embed.FS

func getFrontendFS() fs.FS {
	sub, err := fs.Sub(frontendFiles, "frontend")
	if err != nil {
		log.Fatalf("Embedded frontend missing: %v", err)
	}
	return sub
}
