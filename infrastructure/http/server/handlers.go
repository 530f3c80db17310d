package server

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
	"github.com/ga-dutra/batepapo-uol-api/services"
)

// userHeader carries the acting identity, as the legacy clients send it.
const userHeader = "User"

type Handler struct {
	log     *slog.Logger
	service services.ISessionService
}

type joinRequest struct {
	Name string `json:"name"`
}

type sendRequest struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type editRequest struct {
	Text string `json:"text"`
}

type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
	Text string `json:"text"`
	Time string `json:"time"`
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var body joinRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	_, err := h.service.Join(domain.JoinCommand{Name: body.Name})
	if err != nil {
		h.fail(w, err, http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.ListParticipants()
	if err != nil {
		h.fail(w, err, http.StatusUnprocessableEntity)
		return
	}
	h.respond(w, http.StatusOK, lo.Map(participants, func(p domain.Participant, _ int) participantResponse {
		return participantResponse{Name: p.Name, LastStatus: p.LastSeen.UnixMilli()}
	}))
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var body sendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	_, err := h.service.Send(domain.SendMessageCommand{
		From: r.Header.Get(userHeader),
		To:   body.To,
		Kind: domain.Kind(body.Type),
		Text: body.Text,
	})
	if err != nil {
		h.fail(w, err, http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusUnprocessableEntity)
			return
		}
		limit = &n
	}

	messages, err := h.service.ListMessages(domain.ListMessagesCommand{
		User:  r.Header.Get(userHeader),
		Limit: limit,
	})
	if err != nil {
		h.fail(w, err, http.StatusUnprocessableEntity)
		return
	}
	h.respond(w, http.StatusOK, lo.Map(messages, func(msg domain.Message, _ int) messageResponse {
		return toMessageResponse(msg)
	}))
}

func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	// The legacy API answers 404 both for a missing header and for an
	// evicted identity; either way the client must rejoin.
	if err := h.service.Heartbeat(r.Header.Get(userHeader)); err != nil {
		h.fail(w, err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "idMessage"))
	if err != nil {
		http.Error(w, "message id must be a valid uuid", http.StatusNotFound)
		return
	}

	var body editRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	err = h.service.EditMessage(domain.EditMessageCommand{
		User: r.Header.Get(userHeader),
		ID:   id,
		Text: body.Text,
	})
	if err != nil {
		h.fail(w, err, http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "idMessage"))
	if err != nil {
		http.Error(w, "message id must be a valid uuid", http.StatusNotFound)
		return
	}

	err = h.service.DeleteMessage(domain.DeleteMessageCommand{
		User: r.Header.Get(userHeader),
		ID:   id,
	})
	if err != nil {
		h.fail(w, err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// fail maps a service error onto the legacy status convention.
// fallback is the endpoint's own code for MissingIdentity, which the
// original API reported as 422 on sends and 404 on status/delete.
func (h *Handler) fail(w http.ResponseWriter, err error, fallback int) {
	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		details := lo.Map(validationErrs, func(fe validator.FieldError, _ int) string {
			return fe.Error()
		})
		h.respond(w, http.StatusUnprocessableEntity, details)
		return
	}

	switch {
	case stderrors.Is(err, errors.ErrNameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case stderrors.Is(err, errors.ErrUnknownUser):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case stderrors.Is(err, errors.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case stderrors.Is(err, errors.ErrForbidden):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case stderrors.Is(err, errors.ErrMissingIdentity):
		http.Error(w, err.Error(), fallback)
	case stderrors.Is(err, errors.ErrStoreUnavailable):
		h.log.Error("Store failure surfaced to client", "err", err)
		http.Error(w, "store unavailable", http.StatusInternalServerError)
	default:
		h.log.Error("Unmapped error", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Response encoding failed", "err", err)
	}
}

func toMessageResponse(msg domain.Message) messageResponse {
	return messageResponse{
		ID:   msg.ID.String(),
		From: msg.From,
		To:   msg.To,
		Type: string(msg.Kind),
		Text: msg.Text,
		Time: msg.At.Format("15:04:05"),
	}
}
