// Package hotline is the webhook entry point: it resolves the caller, runs one
// call-flow state against their interview record and renders the reply.
package hotline

//go:generate go tool mockgen -destination=mocks_test.go -package=hotline github.com/roboyoz/hotline/internal/interview Store
//go:generate go tool mockgen -destination=notifier_mocks_test.go -package=hotline github.com/roboyoz/hotline/internal/alert Notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/roboyoz/hotline/internal/alert"
	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/interview"
	"github.com/roboyoz/hotline/internal/twilio"
)

// ErrUnknownCaller means neither the payload nor the call mapping named a caller.
var ErrUnknownCaller = errors.New("caller could not be identified")

// clientPrefix marks browser-client callers, whose From is an identity rather
// than a phone number.
const clientPrefix = "client:"

// Renderer is a Responder that can write itself to the wire.
type Renderer interface {
	flow.Responder
	Render(w http.ResponseWriter, status int) error
}

// Handler serves one transport. The state to run is the request's "state"
// path value.
type Handler struct {
	Machine  *flow.Machine
	Store    interview.Store
	Notifier alert.Notifier
	// Lookup resolves caller names. Nil skips the lookup.
	Lookup twilio.CallerNamer
	// NewResponder builds an empty reply for the transport.
	NewResponder func() Renderer
	// Transport names the handler in logs.
	Transport string
	Logger    *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger().With("transport", h.Transport, "request_id", uuid.NewString())

	resp := h.NewResponder()
	if err := h.handle(ctx, r, resp, logger); err != nil {
		logger.Error("call flow failed", "path", r.URL.Path, "error", err)
		h.notify(ctx, err, logger)
		resp = h.apology()
	}
	if err := resp.Render(w, http.StatusOK); err != nil {
		logger.Error("rendering response", "error", err)
	}
}

func (h *Handler) handle(ctx context.Context, r *http.Request, resp Renderer, logger *slog.Logger) error {
	state, err := flow.ParseState(r.PathValue("state"))
	if err != nil {
		return err
	}
	in, err := DecodeInput(r)
	if err != nil {
		return err
	}
	caller, err := h.resolveCaller(ctx, in)
	if err != nil {
		return err
	}
	logger.Info("handling request", "caller", caller, "state", state, "call_sid", in.CallSid)

	iv, err := h.Store.LoadInterview(ctx, caller)
	if err != nil {
		return fmt.Errorf("loading interview for %s: %w", caller, err)
	}
	if iv.AddCall(in.CallSid) {
		if err := h.Store.SaveCall(ctx, interview.Call{CallSid: in.CallSid, PhoneNumber: caller}); err != nil {
			return fmt.Errorf("linking call %s: %w", in.CallSid, err)
		}
	}
	if iv.CallerName == "" {
		h.resolveCallerName(ctx, iv, logger)
	}

	if err := h.Machine.Run(state, resp, &in, iv); err != nil {
		return err
	}
	if err := h.Store.SaveInterview(ctx, iv); err != nil {
		return fmt.Errorf("saving interview for %s: %w", caller, err)
	}
	return nil
}

func (h *Handler) resolveCaller(ctx context.Context, in flow.Input) (string, error) {
	if in.From != "" {
		return in.From, nil
	}
	if in.CallSid == "" {
		return "", ErrUnknownCaller
	}
	call, err := h.Store.LoadCall(ctx, in.CallSid)
	if err != nil {
		if errors.Is(err, interview.ErrCallNotFound) {
			return "", fmt.Errorf("%w: no caller for call %s", ErrUnknownCaller, in.CallSid)
		}
		return "", fmt.Errorf("loading call %s: %w", in.CallSid, err)
	}
	return call.PhoneNumber, nil
}

// resolveCallerName caches a display name on the record. Failures only log:
// a missing name never blocks the call.
func (h *Handler) resolveCallerName(ctx context.Context, iv *interview.Interview, logger *slog.Logger) {
	if name, ok := strings.CutPrefix(iv.PhoneNumber, clientPrefix); ok {
		iv.CallerName = name
		return
	}
	if h.Lookup == nil {
		return
	}
	name, err := h.Lookup.CallerName(ctx, iv.PhoneNumber)
	if err != nil {
		logger.Warn("caller name lookup failed", "caller", iv.PhoneNumber, "error", err)
		return
	}
	iv.CallerName = name
}

func (h *Handler) notify(ctx context.Context, err error, logger *slog.Logger) {
	if h.Notifier == nil {
		return
	}
	if nerr := h.Notifier.Notify(ctx, err); nerr != nil {
		logger.Warn("alert delivery failed", "error", nerr)
	}
}

// apology is a fresh reply carrying only the error message.
func (h *Handler) apology() Renderer {
	resp := h.NewResponder()
	if err := resp.Say("error", nil); err != nil {
		resp.SayLiteral("Sorry, something went wrong. Please try again later.")
	}
	resp.Pause(1)
	return resp
}
