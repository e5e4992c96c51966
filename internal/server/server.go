// Package server serves generated diagrams over HTTP.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Logger receives request and lifecycle messages
type Logger interface {
	Verbose(format string, args ...interface{})
	Info(format string, args ...interface{})
}

// Server exposes an output directory: an index page, the files themselves
// and a health check
type Server struct {
	dir    string
	addr   string
	logger Logger
	router *gin.Engine
}

// Index is the data behind the index page
type Index struct {
	Dir      string
	Diagrams []string
	Sources  []string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html><html>
<head><meta charset="utf-8"><title>erdviewer - {{.Dir}}</title></head>
<body>
<h1>{{.Dir}}</h1>
<h2>Diagrams</h2>
<ul>{{range .Diagrams}}
<li><a href="/files/{{.}}">{{.}}</a></li>{{else}}
<li>none</li>{{end}}
</ul>
<h2>Sources</h2>
<ul>{{range .Sources}}
<li><a href="/files/{{.}}">{{.}}</a></li>{{else}}
<li>none</li>{{end}}
</ul>
</body></html>
`))

// New creates a server for dir listening on addr
func New(dir, addr string, logger Logger) *Server {
	s := &Server{dir: dir, addr: addr, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodHead},
		MaxAge:          12 * time.Hour,
	}))
	router.SetHTMLTemplate(indexTemplate)

	router.GET("/", s.index)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	router.StaticFS("/files", gin.Dir(dir, false))

	s.router = router
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving %s on %s", s.dir, s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server gracefully ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// ListArtifacts groups the diagrams and sources found in dir by kind
func ListArtifacts(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	idx := &Index{Dir: filepath.Base(dir)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".html":
			idx.Diagrams = append(idx.Diagrams, e.Name())
		case ".sql", ".dot":
			idx.Sources = append(idx.Sources, e.Name())
		}
	}
	return idx, nil
}

func (s *Server) index(c *gin.Context) {
	idx, err := ListArtifacts(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.String(http.StatusNotFound, "output directory %s does not exist", s.dir)
			return
		}
		c.String(http.StatusInternalServerError, "failed to list %s", s.dir)
		return
	}
	c.HTML(http.StatusOK, "index", idx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Verbose("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
