package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/soar/ovrinput/internal/hub"
)

// asset is one frontend file, minified when its type allows it.
type asset struct {
	contentType string
	body        []byte
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	commander   hub.Commander
	assets      map[string]asset
	addr        string
	httpServer  *http.Server
}

// New loads and minifies every file of frontendFS.
func New(h *hub.Hub, b *hub.Broadcaster, c hub.Commander, frontendFS fs.FS, addr string) (*Server, error) {
	assets, err := loadAssets(frontendFS)
	if err != nil {
		return nil, err
	}
	return &Server{
		hub:         h,
		broadcaster: b,
		commander:   c,
		assets:      assets,
		addr:        addr,
	}, nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}

func loadAssets(fsys fs.FS) (map[string]asset, error) {
	m := newMinifier()
	assets := make(map[string]asset)

	var before, after int
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		ct := mime.TypeByExtension(path.Ext(p))
		if ct == "" {
			ct = "application/octet-stream"
		}
		mediatype, _, _ := strings.Cut(ct, ";")

		body := data
		if out, err := m.Bytes(mediatype, data); err == nil {
			body = out
		} else if err != minify.ErrNotExist {
			return fmt.Errorf("minify %s: %w", p, err)
		}

		before += len(data)
		after += len(body)
		assets["/"+p] = asset{contentType: ct, body: body}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load frontend: %w", err)
	}
	log.Printf("Frontend loaded: %d files, %d -> %d bytes", len(assets), before, after)
	return assets, nil
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	a, ok := s.assets[p]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.contentType)
	w.Write(a.body)
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.commander))

	// Static files (frontend)
	mux.HandleFunc("/", s.serveAsset)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
