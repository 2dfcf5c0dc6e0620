package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/route"
)

// PointResponse is a sample with its NDWI band.
type PointResponse struct {
	ndwi.Sample
	Band string `json:"band"`
}

// NearestResponse is the sample closest to a query coordinate.
type NearestResponse struct {
	PointResponse
	Distance float64 `json:"distance"`
}

// EvaluateRequest is the body of POST /api/routes/evaluate.
type EvaluateRequest struct {
	Start *ndwi.Coordinate `json:"start"`
	End   *ndwi.Coordinate `json:"end"`
	Snap  bool             `json:"snap"`
}

// VariantResponse adds presentation fields to a scored path.
type VariantResponse struct {
	route.PathEvaluation
	Rating   string `json:"rating"`
	Polyline string `json:"polyline"`
}

// EvaluateResponse mirrors route.ComparisonResult.
type EvaluateResponse struct {
	Direct           VariantResponse `json:"direct"`
	QualityOptimized VariantResponse `json:"qualityOptimized"`
}

// NewEvaluateResponse adds ratings and encoded polylines to r.
func NewEvaluateResponse(r *route.ComparisonResult) EvaluateResponse {
	return EvaluateResponse{
		Direct:           newVariant(r.Direct),
		QualityOptimized: newVariant(r.QualityOptimized),
	}
}

func newVariant(pe route.PathEvaluation) VariantResponse {
	return VariantResponse{
		PathEvaluation: pe,
		Rating:         route.Rate(pe.Quality),
		Polyline:       route.EncodePolyline(pe.Path),
	}
}

// NewPointResponse tags s with its NDWI band.
func NewPointResponse(s ndwi.Sample) PointResponse {
	return PointResponse{Sample: s, Band: ndwi.Band(s.NDWI)}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ix := s.loader.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"points": ix.Len(),
		"loaded": s.loader.Loaded(),
	})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.loader.Load(r.Context()).Snapshot())
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	minQuality := 0
	if v := r.URL.Query().Get("min_quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_quality must be an integer")
			return
		}
		minQuality = n
	}

	samples := s.loader.Load(r.Context()).Filter(func(p ndwi.Sample) bool {
		return p.Quality >= minQuality
	})
	points := make([]PointResponse, len(samples))
	for i, p := range samples {
		points[i] = NewPointResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(points), "points": points})
}

// queryCoord reads and validates the lng and lat query parameters.
func queryCoord(r *http.Request) (ndwi.Coordinate, error) {
	q := r.URL.Query()
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	if errLng != nil || errLat != nil {
		return ndwi.Coordinate{}, eris.New("lng and lat are required numbers")
	}
	c := ndwi.Coordinate{Lng: lng, Lat: lat}
	return c, c.Validate()
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	at, err := queryCoord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	maxDistance := ndwi.DefaultMaxDistance
	if v := q.Get("max_distance"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "max_distance must be a non-negative number")
			return
		}
		maxDistance = d
	}

	sample, ok := s.loader.Load(r.Context()).FindNearest(at, maxDistance)
	if !ok {
		writeError(w, http.StatusNotFound, "no sample within max_distance")
		return
	}
	writeJSON(w, http.StatusOK, NearestResponse{
		PointResponse: NewPointResponse(sample),
		Distance:      at.DistanceTo(sample.Coordinate()),
	})
}

// handleValid reports whether a coordinate lies on sampled water, that is
// within ndwi.DefaultMaxDistance of a sample.
func (s *Server) handleValid(w http.ResponseWriter, r *http.Request) {
	at, err := queryCoord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.loader.Load(r.Context()).IsValid(at)})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.evaluate(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, NewEvaluateResponse(res))
}

func (s *Server) handleEvaluateGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.evaluate(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeBody(w, http.StatusOK, "application/geo+json", route.FeatureCollection(res))
}

// evaluate decodes an EvaluateRequest and runs it. On failure it returns the
// HTTP status to report.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (*route.ComparisonResult, int, error) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, http.StatusBadRequest, eris.Wrap(err, "invalid request body")
	}
	if req.Start == nil || req.End == nil {
		return nil, http.StatusBadRequest, eris.New("start and end are required")
	}
	if err := req.Start.Validate(); err != nil {
		return nil, http.StatusBadRequest, eris.Wrap(err, "start")
	}
	if err := req.End.Validate(); err != nil {
		return nil, http.StatusBadRequest, eris.Wrap(err, "end")
	}

	ev := route.NewEvaluator(s.loader.Load(r.Context()), s.opts)
	start, end := *req.Start, *req.End
	if req.Snap {
		var ok bool
		if start, ok = ev.Snap(start); !ok {
			return nil, http.StatusBadRequest, eris.New("no sample near start")
		}
		if end, ok = ev.Snap(end); !ok {
			return nil, http.StatusBadRequest, eris.New("no sample near end")
		}
	}

	return ev.Evaluate(&start, &end), http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeBody(w, status, "application/json", v)
}

// writeBody encodes v before committing the status so an encoding failure
// still reaches the client as a 500.
func writeBody(w http.ResponseWriter, status int, contentType string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
