package api

import (
	"fmt"
	"net/http"

	"bais/internal/errors"
	"bais/internal/stats"
)

type valuesRequest struct {
	Values []float64 `json:"values"`
}

type twoSampleRequest struct {
	A []float64 `json:"a"`
	B []float64 `json:"b"`
}

// maxBootstrapIterations bounds the resample buffer a single request can allocate
const maxBootstrapIterations = 100000

type bootstrapRequest struct {
	High       []float64 `json:"high"`
	Low        []float64 `json:"low"`
	Alpha      *float64  `json:"alpha,omitempty"`
	Iterations *int      `json:"iterations,omitempty"`
	Seed       *uint32   `json:"seed,omitempty"`
}

type pairedRequest struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

type proportionZTestRequest struct {
	SuccessesA int `json:"successesA"`
	NA         int `json:"nA"`
	SuccessesB int `json:"successesB"`
	NB         int `json:"nB"`
}

type proportionCIRequest struct {
	Successes int      `json:"successes"`
	N         int      `json:"n"`
	Alpha     *float64 `json:"alpha,omitempty"`
}

type chiSquareRequest struct {
	Observed [][]int `json:"observed"`
}

type adjustRequest struct {
	PValues []float64 `json:"pValues"`
	Method  string    `json:"method"`
}

type adjustResponse struct {
	Method   string    `json:"method"`
	Adjusted []float64 `json:"adjusted"`
}

type describeResponse struct {
	stats.DescriptiveStats
	MeanCI *stats.MeanCI `json:"meanCI,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if !decode(w, r, &req) {
		return
	}
	ds, err := stats.ComputeDescriptiveStats(req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := describeResponse{DescriptiveStats: ds}
	if ds.N >= 2 {
		ci, err := stats.MeanConfidenceInterval(req.Values, s.analysis.Alpha)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.MeanCI = &ci
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFiveNumber(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, func() (interface{}, error) { return stats.ComputeFiveNumberSummary(req.Values) })
}

func (s *Server) handleWelch(w http.ResponseWriter, r *http.Request) {
	var req twoSampleRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, func() (interface{}, error) { return stats.WelchTTestTwoSided(req.A, req.B) })
}

func (s *Server) handleEffectSize(w http.ResponseWriter, r *http.Request) {
	var req twoSampleRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, func() (interface{}, error) { return stats.EffectSizeTwoSample(req.A, req.B) })
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if !decode(w, r, &req) {
		return
	}
	cfg := stats.BootstrapConfig{
		Alpha:      s.analysis.Alpha,
		Iterations: s.analysis.BootstrapIterations,
		Seed:       s.analysis.Seed,
	}
	if req.Alpha != nil {
		cfg.Alpha = *req.Alpha
	}
	if req.Iterations != nil {
		if *req.Iterations > maxBootstrapIterations {
			writeError(w, errors.InvalidInput(fmt.Sprintf("iterations must be at most %d, got %d", maxBootstrapIterations, *req.Iterations)))
			return
		}
		cfg.Iterations = *req.Iterations
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	respond(w, func() (interface{}, error) { return stats.BootstrapMeanDifferenceCI(req.High, req.Low, cfg) })
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	var req pairedRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, func() (interface{}, error) { return stats.OLSRegression(req.X, req.Y) })
}

func (s *Server) handleProportionZTest(w http.ResponseWriter, r *http.Request) {
	var req proportionZTestRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, func() (interface{}, error) {
		return stats.ProportionZTest(req.SuccessesA, req.NA, req.SuccessesB, req.NB)
	})
}

func (s *Server) handleProportionCI(w http.ResponseWriter, r *http.Request) {
	var req proportionCIRequest
	if !decode(w, r, &req) {
		return
	}
	alpha := stats.DefaultProportionAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	respond(w, func() (interface{}, error) { return stats.ProportionCIWithAlpha(req.Successes, req.N, alpha) })
}

func (s *Server) handleChiSquare(w http.ResponseWriter, r *http.Request) {
	var req chiSquareRequest
	if !decode(w, r, &req) {
		return
	}
	respond(w, func() (interface{}, error) { return stats.ChiSquareTest(req.Observed) })
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		adjusted []float64
		err      error
	)
	switch req.Method {
	case "", "bonferroni":
		req.Method = "bonferroni"
		adjusted, err = stats.BonferroniAdjust(req.PValues)
	case "holm":
		adjusted, err = stats.HolmAdjust(req.PValues)
	default:
		err = errors.InvalidInput("unknown method " + req.Method + " (want bonferroni or holm)")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{Method: req.Method, Adjusted: adjusted})
}

func respond(w http.ResponseWriter, compute func() (interface{}, error)) {
	result, err := compute()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
