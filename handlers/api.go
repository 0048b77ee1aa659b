// Package handlers serves the assistant's JSON API and statistics websocket.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gbme/platform-assistant/chat"
	"github.com/gbme/platform-assistant/inventory"
	"github.com/gbme/platform-assistant/rancher"
	"github.com/gbme/platform-assistant/resources"
	"github.com/gbme/platform-assistant/view"
)

// Assistant is implemented by *chat.Assistant.
type Assistant interface {
	Respond(ctx context.Context, message string) (chat.Reply, error)
	Statistics(ctx context.Context) (chat.Stats, error)
}

type API struct {
	assistant Assistant
}

func NewAPI(a Assistant) *API {
	return &API{assistant: a}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Message  string                   `json:"message"`
	HTML     template.HTML            `json:"html"`
	Count    int                      `json:"count"`
	Clusters []rancher.ClusterSummary `json:"clusters,omitempty"`
	Records  []inventory.Record       `json:"records,omitempty"`
}

// Chat answers POST /api/chat.
func (a *API) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := a.assistant.Respond(r.Context(), req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		jsonError(w, "Please enter a message", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("chat lookup failed")
		jsonError(w, sourceErrorMessage(err), http.StatusInternalServerError)
		return
	}

	html, err := view.Render(view.FromReply(reply))
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to render reply")
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, chatResponse{
		Message:  reply.Message,
		HTML:     html,
		Count:    reply.Count,
		Clusters: reply.Clusters,
		Records:  reply.Records,
	})
}

type statsResponse struct {
	chat.Stats
	Error string `json:"error,omitempty"`
}

// Stats answers GET /api/stats. Counters of an unavailable source are zero and the
// response carries an error note.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, a.statistics(r.Context()))
}

func (a *API) statistics(ctx context.Context) statsResponse {
	st, err := a.assistant.Statistics(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("statistics are incomplete")
		return statsResponse{Stats: st, Error: sourceErrorMessage(err)}
	}
	return statsResponse{Stats: st}
}

type utilizationRequest struct {
	Kind      resources.Kind `json:"kind"`
	Requested string         `json:"requested"`
	Capacity  string         `json:"capacity"`
}

type utilizationResponse struct {
	Available bool `json:"available"`
	*resources.Utilization
	Label string `json:"label,omitempty"`
	Color string `json:"color,omitempty"`
}

// Utilization answers POST /api/utilization with the bar for one requested/capacity pair.
func (a *API) Utilization(w http.ResponseWriter, r *http.Request) {
	var req utilizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Kind = resources.Kind(strings.ToLower(string(req.Kind)))
	if !req.Kind.Valid() {
		jsonError(w, fmt.Sprintf("kind must be %q or %q", resources.KindCPU, resources.KindMemory), http.StatusBadRequest)
		return
	}

	u, ok := resources.ComputeUtilization(req.Kind, req.Requested, req.Capacity)
	if !ok {
		jsonOK(w, utilizationResponse{})
		return
	}
	jsonOK(w, utilizationResponse{Available: true, Utilization: &u, Label: u.Label(), Color: u.Tier.Color()})
}

// sourceErrorMessage turns a lookup failure into a message fit for the chat window.
func sourceErrorMessage(err error) string {
	var apiErr *rancher.APIError
	switch {
	case errors.Is(err, rancher.ErrUnreachable):
		return "Cannot connect to Rancher. Check RANCHER_BASE_URL."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Rancher API error (HTTP %d).", apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out."
	default:
		return "An error occurred while looking that up."
	}
}
