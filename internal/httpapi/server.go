// Package httpapi exposes the studio over HTTP: a JSON API for the browser
// front-end plus static file serving for the page itself and the artifact
// directories.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/book-expert/logger"

	"github.com/book-expert/mira-studio/internal/history"
	"github.com/book-expert/mira-studio/internal/reference"
	"github.com/book-expert/mira-studio/internal/studio"
)

// Upload limits and URL prefixes.
const (
	maxUploadBytes     = 64 << 20 // 64 MiB reference clip cap
	outputURLPrefix    = "/static/output/"
	referenceURLPrefix = "/static/reference_audio/"
	multipartFormFile  = "file"
)

// Server routes API and static requests to the studio.
type Server struct {
	studio *studio.Studio
	refs   *reference.Store
	webDir string
	log    *logger.Logger
	mux    *http.ServeMux
}

// NewServer creates the HTTP server for the studio. outputDir and the
// reference store's directory are exposed read-only under /static/.
func NewServer(
	st *studio.Studio,
	refs *reference.Store,
	outputDir, webDir string,
	log *logger.Logger,
) *Server {
	server := &Server{
		studio: st,
		refs:   refs,
		webDir: webDir,
		log:    log,
		mux:    http.NewServeMux(),
	}
	server.routes(outputDir)

	return server
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.mux.ServeHTTP(writer, request)
}

func (s *Server) routes(outputDir string) {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /api/references", s.handleListReferences)
	s.mux.HandleFunc("POST /api/references", s.handleUploadReference)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)

	s.mux.Handle(outputURLPrefix,
		http.StripPrefix(outputURLPrefix, http.FileServer(http.Dir(outputDir))))
	s.mux.Handle(referenceURLPrefix,
		http.StripPrefix(referenceURLPrefix, http.FileServer(http.Dir(s.refs.Dir()))))

	s.mux.Handle("/", http.FileServer(http.Dir(s.webDir)))
}

func (s *Server) handleHealthz(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("ok"))
}

type referenceEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

func (s *Server) handleListReferences(writer http.ResponseWriter, _ *http.Request) {
	clips, err := s.refs.List()
	if err != nil {
		s.log.Error("Failed to list reference clips: %v", err)
		s.writeError(writer, http.StatusInternalServerError, "failed to list reference clips")

		return
	}

	entries := make([]referenceEntry, 0, len(clips))
	for _, clip := range clips {
		entries = append(entries, referenceEntry{
			Name: clip.Name,
			URL:  path.Join(referenceURLPrefix, clip.Name),
			Size: clip.Size,
		})
	}

	s.writeJSON(writer, http.StatusOK, entries)
}

func (s *Server) handleUploadReference(writer http.ResponseWriter, request *http.Request) {
	err := request.ParseMultipartForm(maxUploadBytes)
	if err != nil {
		s.writeError(writer, http.StatusBadRequest, "invalid multipart form")

		return
	}

	file, header, err := request.FormFile(multipartFormFile)
	if err != nil {
		s.writeError(writer, http.StatusBadRequest, "missing 'file' form field")

		return
	}
	defer func() { _ = file.Close() }()

	// Read one byte past the cap so an oversized clip is rejected rather
	// than silently truncated.
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.writeError(writer, http.StatusBadRequest, "failed to read uploaded clip")

		return
	}

	if len(data) > maxUploadBytes {
		s.writeError(writer, http.StatusRequestEntityTooLarge, "reference clip exceeds the upload limit")

		return
	}

	savedPath, err := s.refs.Save(header.Filename, data)
	if err != nil {
		if errors.Is(err, reference.ErrEmptyFilename) {
			s.writeError(writer, http.StatusBadRequest, err.Error())

			return
		}

		s.log.Error("Failed to save reference clip: %v", err)
		s.writeError(writer, http.StatusInternalServerError, "failed to save reference clip")

		return
	}

	s.writeJSON(writer, http.StatusCreated, map[string]string{
		"name": path.Base(savedPath),
		"url":  path.Join(referenceURLPrefix, path.Base(savedPath)),
	})
}

type generateRequest struct {
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

type generateResponse struct {
	Name      string         `json:"name"`
	AudioURL  string         `json:"audio_url"`
	Sentences int            `json:"sentences"`
	History   []historyEntry `json:"history"`
}

func (s *Server) handleGenerate(writer http.ResponseWriter, request *http.Request) {
	var body generateRequest

	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		s.writeError(writer, http.StatusBadRequest, "invalid json")

		return
	}

	referencePath := ""
	if body.Reference != "" {
		referencePath = s.refs.Path(body.Reference)
	}

	result, err := s.studio.Generate(request.Context(), studio.Request{
		Text:          body.Text,
		ReferencePath: referencePath,
	})
	if err != nil {
		s.writeGenerateError(writer, err)

		return
	}

	s.writeJSON(writer, http.StatusOK, generateResponse{
		Name:      result.BaseName,
		AudioURL:  path.Join(outputURLPrefix, result.BaseName+".wav"),
		Sentences: result.Sentences,
		History:   toHistoryEntries(result.History),
	})
}

// writeGenerateError maps validation failures to 400 and everything else,
// which means the synthesis backend failed, to 502 with the cause visible.
func (s *Server) writeGenerateError(writer http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, studio.ErrTextEmpty),
		errors.Is(err, studio.ErrReferenceEmpty),
		errors.Is(err, studio.ErrNoSentences):
		s.writeError(writer, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("Generation failed: %v", err)
		s.writeError(writer, http.StatusBadGateway, fmt.Sprintf("synthesis failed: %v", err))
	}
}

type historyEntry struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Preview string `json:"preview"`
}

func (s *Server) handleHistory(writer http.ResponseWriter, _ *http.Request) {
	s.writeJSON(writer, http.StatusOK, toHistoryEntries(s.studio.History()))
}

func toHistoryEntries(entries []history.Entry) []historyEntry {
	out := make([]historyEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntry{
			Name:    entry.Name,
			URL:     path.Join(outputURLPrefix, entry.Name),
			Preview: entry.Preview,
		})
	}

	return out
}

func (s *Server) writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	err := json.NewEncoder(writer).Encode(payload)
	if err != nil {
		s.log.Error("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(writer http.ResponseWriter, status int, message string) {
	s.writeJSON(writer, status, map[string]string{"error": message})
}
