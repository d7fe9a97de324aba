package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"message-board/domain"
	apperrors "message-board/errors"
	"message-board/services"

	"github.com/samber/lo"
)

// corsHeaders go on every response of the message endpoint.
// DELETE is advertised but has no handler.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Allow-Methods": "GET,POST,DELETE,OPTIONS",
}

// Request is the part of an HTTP call the message endpoint looks at.
type Request struct {
	Method string
	Body   []byte
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

type MessageHandler struct {
	board        services.IBoardService
	log          *slog.Logger
	maxBodyBytes int64
}

func NewMessageHandler(board services.IBoardService, log *slog.Logger, maxBodyBytes int64) *MessageHandler {
	return &MessageHandler{board: board, log: log, maxBodyBytes: maxBodyBytes}
}

// Handle dispatches on the method only; the path is never looked at.
func (h *MessageHandler) Handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case http.MethodOptions:
		return Response{StatusCode: http.StatusOK, Headers: headers(false)}
	case http.MethodGet:
		return h.list(ctx)
	case http.MethodPost:
		return h.write(ctx, req.Body)
	default:
		return h.fail(apperrors.ErrInvalidMethod)
	}
}

func (h *MessageHandler) list(ctx context.Context) Response {
	messages, err := h.board.ListMessages(ctx)
	if err != nil {
		return h.fail(err)
	}
	if messages == nil {
		// An empty board is [] on the wire, not null.
		return h.respond(http.StatusOK, []any{})
	}
	return h.respond(http.StatusOK, messages)
}

func (h *MessageHandler) write(ctx context.Context, body []byte) Response {
	writeRequest, err := domain.DecodeWriteRequest(body)
	if err != nil {
		return h.fail(err)
	}

	switch req := writeRequest.(type) {
	case domain.ReactRequest:
		if err = h.board.React(ctx, req); err != nil {
			return h.fail(err)
		}
		return h.respond(http.StatusOK, map[string]bool{"success": true})
	case domain.CreateMessageRequest:
		message, err := h.board.CreateMessage(ctx, req)
		if err != nil {
			return h.fail(err)
		}
		return h.respond(http.StatusCreated, message)
	default:
		return h.fail(fmt.Errorf("%w: unsupported payload %T", apperrors.ErrInvalidBody, writeRequest))
	}
}

func (h *MessageHandler) respond(status int, data any) Response {
	body, err := json.Marshal(data)
	if err != nil {
		return h.fail(err)
	}
	return Response{StatusCode: status, Headers: headers(true), Body: body}
}

// fail turns any error into {"error": text}.
// Validation and routing errors are 400, everything else comes from the store and is 500, text included.
func (h *MessageHandler) fail(err error) Response {
	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, apperrors.ErrInvalidContent):
		status, message = http.StatusBadRequest, apperrors.ErrInvalidContent.Error()
	case errors.Is(err, apperrors.ErrInvalidMethod):
		status, message = http.StatusBadRequest, apperrors.ErrInvalidMethod.Error()
	case errors.Is(err, apperrors.ErrInvalidBody):
		status = http.StatusBadRequest
	default:
		h.log.Error("Request failed", "error", err)
	}

	body, _ := json.Marshal(map[string]string{"error": message})
	return Response{StatusCode: status, Headers: headers(true), Body: body}
}

func headers(withJSON bool) map[string]string {
	out := lo.Assign(corsHeaders)
	if withJSON {
		out["Content-Type"] = "application/json"
	}
	return out
}

func (h *MessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	var resp Response
	if err != nil {
		resp = h.fail(fmt.Errorf("%w: %v", apperrors.ErrInvalidBody, err))
	} else {
		resp = h.Handle(r.Context(), Request{Method: r.Method, Body: body})
	}

	send(w, resp)
}

// InvalidMethod answers requests whose method no route accepts, PURGE or PROPFIND for instance.
func (h *MessageHandler) InvalidMethod(w http.ResponseWriter, _ *http.Request) {
	send(w, h.fail(apperrors.ErrInvalidMethod))
}

func send(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
