package main

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/table"
	"github.com/baditaflorin/go_txn_normalizer/internal/ports"
	"github.com/baditaflorin/go_txn_normalizer/pkg/normalizer"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

// DefaultRequestTimeout bounds batch requests
const DefaultRequestTimeout = 60 * time.Second

// maxCachedStageLists caps the per-request stage pipelines kept in memory
const maxCachedStageLists = 64

// NormalizeRequest is the body of POST /normalize
type NormalizeRequest struct {
	Text   *string  `json:"text"`
	Stages []string `json:"stages,omitempty"`
}

// NormalizeResponse is the reply of POST /normalize
type NormalizeResponse struct {
	Normalized *string              `json:"normalized"`
	Stages     []normalizer.StageID `json:"stages"`
}

// RecordInput is one record of a batch request
type RecordInput struct {
	ID     string           `json:"id,omitempty"`
	Text   *string          `json:"text"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Date   string           `json:"date,omitempty"`
	Label  string           `json:"label,omitempty"`
}

// BatchRequest is the body of POST /normalize/batch
type BatchRequest struct {
	Records  []RecordInput `json:"records"`
	Features bool          `json:"features,omitempty"`
}

// RecordOutput is one normalized record of a batch response
type RecordOutput struct {
	ID         string               `json:"id"`
	Text       *string              `json:"text"`
	Normalized *string              `json:"normalized"`
	Amount     *decimal.Decimal     `json:"amount,omitempty"`
	Date       string               `json:"date,omitempty"`
	Label      string               `json:"label,omitempty"`
	Features   *normalizer.Features `json:"features,omitempty"`
}

// BatchResponse is the reply of POST /normalize/batch
type BatchResponse struct {
	Records        []RecordOutput `json:"records"`
	Count          int            `json:"count"`
	ProcessingTime string         `json:"processing_time"`
}

// TextRequest is the body of POST /extract/card and POST /trace
type TextRequest struct {
	Text string `json:"text"`
}

// CardResponse is the reply of POST /extract/card
type CardResponse struct {
	Card  string `json:"card,omitempty"`
	Found bool   `json:"found"`
}

// TraceResponse is the reply of POST /trace
type TraceResponse struct {
	Input  string                   `json:"input"`
	Steps  []normalizer.StageResult `json:"steps"`
	Output string                   `json:"output"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server routes requests to the normalizers
type Server struct {
	normalizer     *normalizer.Normalizer
	table          normalizer.PatternTable
	logger         ports.Logger
	requestTimeout time.Duration

	mu       sync.Mutex
	byStages map[string]*normalizer.Normalizer
}

// NewServer creates the request router. table is used to build pipelines for
// requests that ask for a custom stage list.
func NewServer(n *normalizer.Normalizer, table normalizer.PatternTable, logger ports.Logger) *Server {
	return &Server{
		normalizer:     n,
		table:          table,
		logger:         logger,
		requestTimeout: DefaultRequestTimeout,
		byStages:       make(map[string]*normalizer.Normalizer),
	}
}

// HandleRequest is the main fasthttp request handler
func (s *Server) HandleRequest(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "TxnNormalizer")

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/normalize":
		s.handleNormalize(ctx)
	case "/normalize/batch":
		s.handleBatch(ctx)
	case "/extract/card":
		s.handleExtractCard(ctx)
	case "/trace":
		s.handleTrace(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		s.writeJSONError(ctx, "Not found")
	}

	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func (s *Server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"stages": s.normalizer.Stages(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleNormalize(ctx *fasthttp.RequestCtx) {
	var req NormalizeRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	n, err := s.normalizerFor(req.Stages)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, err.Error())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, NormalizeResponse{
		Normalized: n.NormalizeNullable(req.Text),
		Stages:     n.Stages(),
	})
}

func (s *Server) handleBatch(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	var req BatchRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	records := make([]normalizer.RawRecord, len(req.Records))
	for i, in := range req.Records {
		rec := normalizer.RawRecord{ID: in.ID, Text: in.Text, Label: in.Label}
		if in.Amount != nil {
			rec.Amount = decimal.NewNullDecimal(*in.Amount)
		}
		if in.Date != "" {
			date, err := time.Parse(table.DefaultDateLayout, in.Date)
			if err != nil {
				ctx.SetStatusCode(fasthttp.StatusBadRequest)
				s.writeJSONError(ctx, "Invalid date in record "+strconv.Itoa(i)+": expected YYYY-MM-DD")
				return
			}
			rec.Date = date
		}
		records[i] = rec
	}

	c, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()

	out, err := s.normalizer.NormalizeRecords(c, records)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		s.writeJSONError(ctx, "Batch not completed: "+err.Error())
		return
	}

	resp := BatchResponse{Records: make([]RecordOutput, len(out)), Count: len(out)}
	for i, rec := range out {
		ro := RecordOutput{
			ID:         rec.ID,
			Text:       rec.Text,
			Normalized: rec.Normalized,
			Label:      rec.Label,
		}
		if rec.Amount.Valid {
			amount := rec.Amount.Decimal
			ro.Amount = &amount
		}
		if rec.HasDate() {
			ro.Date = rec.Date.Format(table.DefaultDateLayout)
		}
		if req.Features {
			f := normalizer.DeriveFeatures(rec.RawRecord)
			ro.Features = &f
		}
		resp.Records[i] = ro
	}
	resp.ProcessingTime = time.Since(startTime).String()

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, resp)
}

func (s *Server) handleExtractCard(ctx *fasthttp.RequestCtx) {
	var req TextRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	card, found := s.normalizer.ExtractMaskedCard(req.Text)
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, CardResponse{Card: card, Found: found})
}

func (s *Server) handleTrace(ctx *fasthttp.RequestCtx) {
	var req TextRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	steps := s.normalizer.Trace(req.Text)
	output := req.Text
	if len(steps) > 0 {
		output = steps[len(steps)-1].Output
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, TraceResponse{Input: req.Text, Steps: steps, Output: output})
}

// normalizerFor returns the default normalizer or a cached one for a custom stage list
func (s *Server) normalizerFor(stages []string) (*normalizer.Normalizer, error) {
	if len(stages) == 0 {
		return s.normalizer, nil
	}

	key := strings.Join(stages, ",")
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.byStages[key]; ok {
		return n, nil
	}

	ids, err := normalizer.ParseStages(key)
	if err != nil {
		return nil, err
	}
	n, err := normalizer.New(
		normalizer.WithPatternTable(s.table),
		normalizer.WithStages(ids...),
		normalizer.WithSilentLogging(),
	)
	if err != nil {
		return nil, err
	}

	if len(s.byStages) >= maxCachedStageLists {
		s.byStages = make(map[string]*normalizer.Normalizer)
	}
	s.byStages[key] = n
	return n, nil
}

// decodePost checks the method and decodes the JSON body. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decodePost(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return false
	}
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// writeJSONResponse writes a JSON response to the context
func (s *Server) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON response", "error", err)
		s.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (s *Server) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		s.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
