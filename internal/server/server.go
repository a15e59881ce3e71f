// Package server exposes the simplifier over HTTP and keeps an in-memory
// spatial index of the features it has simplified.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"geometry-simplifier/internal/config"
	"geometry-simplifier/internal/geojsonio"
	"geometry-simplifier/internal/index"
	"geometry-simplifier/simplifier"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 32 << 20

type CoordinatesRequest struct {
	Coordinates simplifier.Node `json:"coordinates"`
	Threshold   *float64        `json:"threshold,omitempty"`
}

type CoordinatesResponse struct {
	Coordinates simplifier.Node `json:"coordinates"`
}

type IngestResponse struct {
	Success  bool `json:"success"`
	Indexed  int  `json:"indexed"`
	Skipped  int  `json:"skipped"`
	Features int  `json:"features"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Features int    `json:"features"`
}

// Server handles simplification requests.
type Server struct {
	cfg    config.Config
	index  *index.Index
	logger logr.Logger
	mux    *http.ServeMux
}

func New(cfg config.Config, logger logr.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		index:  index.New(),
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/simplify", corsMiddleware(s.simplifyHandler))
	s.mux.HandleFunc("/coordinates", corsMiddleware(s.coordinatesHandler))
	s.mux.HandleFunc("/features", corsMiddleware(s.featuresHandler))
	s.mux.HandleFunc("/health", corsMiddleware(s.healthHandler))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Index returns the spatial index backing /features.
func (s *Server) Index() *index.Index {
	return s.index
}

// Ingest simplifies features and adds them to the index. Features without
// positions are counted as skipped.
func (s *Server) Ingest(features []*geojson.Feature, opts ...simplifier.Option) (IngestResponse, error) {
	resp := IngestResponse{Success: true, Features: len(features)}
	opts = append(s.cfg.SimplifierOptions(s.logger), opts...)

	for _, f := range features {
		if f == nil {
			resp.Skipped++
			continue
		}
		simplified, err := geojsonio.SimplifyFeature(f, opts...)
		if err != nil {
			return resp, err
		}
		if err := s.index.Insert(simplified); err != nil {
			if errors.Is(err, index.ErrNoPositions) {
				resp.Skipped++
				continue
			}
			return resp, err
		}
		resp.Indexed++
	}

	s.logger.V(1).Info("ingested features", "indexed", resp.Indexed, "skipped", resp.Skipped)
	return resp, nil
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// POST /simplify - simplify a Geometry, Feature or FeatureCollection
func (s *Server) simplifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.decodeDocument(r)
	if err != nil {
		s.logger.V(1).Info("rejected simplify request", "error", err.Error())
		http.Error(w, "Invalid GeoJSON object", http.StatusBadRequest)
		return
	}

	out, err := doc.Simplify(opts...)
	if err != nil {
		s.logger.V(1).Info("could not simplify document", "type", doc.Type(), "error", err.Error())
		http.Error(w, "Invalid GeoJSON object", http.StatusBadRequest)
		return
	}

	s.logger.V(1).Info("simplified document", "type", doc.Type())
	s.writeJSON(w, http.StatusOK, out)
}

// POST /coordinates - simplify a bare coordinate structure
func (s *Server) coordinatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CoordinatesRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	opts := s.cfg.SimplifierOptions(s.logger)
	if req.Threshold != nil {
		opt, err := s.thresholdOption(*req.Threshold)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts = append(opts, opt)
	}

	out := simplifier.New(req.Coordinates, opts...).Simplify()
	s.writeJSON(w, http.StatusOK, CoordinatesResponse{Coordinates: out})
}

// /features - POST to ingest, GET to query by bbox
func (s *Server) featuresHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.ingestHandler(w, r)
	case http.MethodGet:
		s.queryHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.decodeDocument(r)
	if err != nil {
		http.Error(w, "Invalid GeoJSON object", http.StatusBadRequest)
		return
	}

	resp, err := s.Ingest(doc.Features(), opts...)
	if err != nil {
		s.logger.Error(err, "ingest failed")
		http.Error(w, "Invalid GeoJSON object", http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	bound, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, f := range s.index.Query(bound) {
		fc.AddFeature(f)
	}

	s.logger.V(1).Info("queried features", "bbox", bound, "matches", len(fc.Features))
	s.writeJSON(w, http.StatusOK, fc)
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ready",
		Features: s.index.Len(),
	})
}

func (s *Server) decodeDocument(r *http.Request) (geojsonio.Document, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return geojsonio.Document{}, errors.Wrap(err, "read body")
	}
	return geojsonio.Decode(body)
}

// requestOptions reads an optional threshold query parameter.
func (s *Server) requestOptions(r *http.Request) ([]simplifier.Option, error) {
	raw := r.URL.Query().Get("threshold")
	if raw == "" {
		return nil, nil
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Errorf("invalid threshold %q", raw)
	}
	opt, err := s.thresholdOption(threshold)
	if err != nil {
		return nil, err
	}
	return []simplifier.Option{opt}, nil
}

// thresholdOption holds a per-request threshold to the same bounds as the
// configured one.
func (s *Server) thresholdOption(threshold float64) (simplifier.Option, error) {
	if err := s.cfg.WithThreshold(threshold).Validate(); err != nil {
		s.logger.V(1).Info("rejected threshold", "threshold", threshold, "error", err.Error())
		return nil, errors.Errorf("invalid threshold %v: must be between 0 and 1", threshold)
	}
	return simplifier.WithThreshold(threshold), nil
}

// parseBBox reads "minX,minY,maxX,maxY".
func parseBBox(raw string) (orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.Errorf("bbox must be minX,minY,maxX,maxY, got %q", raw)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, errors.Wrapf(err, "bbox component %d", i)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, errors.Errorf("bbox min exceeds max: %q", raw)
	}

	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.V(1).Info("could not write response", "error", err.Error())
	}
}
