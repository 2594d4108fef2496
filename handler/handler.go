// Package handler maps API Gateway proxy events onto the wizard's five
// screens: it resolves the session cookie, decodes form submissions, and
// turns the service's renderings into HTML responses.
package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"health-wizard/internal/domain"
	"health-wizard/internal/usecase"
)

const (
	sessionCookieName = "wizard_session"
	correlationHeader = "X-Correlation-Id"

	internalErrorMessage = "We could not process your answers right now. Please try again."
)

// WizardService is the step-transition surface consumed by the handler.
type WizardService interface {
	Show(ctx context.Context, sessionID string, step domain.Step) (usecase.Rendering, error)
	SubmitBody(ctx context.Context, sessionID string, form url.Values) (usecase.Rendering, error)
	SubmitFood(ctx context.Context, sessionID string, form url.Values) (usecase.Rendering, error)
	SubmitSleep(ctx context.Context, sessionID string, form url.Values) (usecase.Rendering, error)
	SubmitActive(ctx context.Context, sessionID string, form url.Values) (usecase.Rendering, error)
}

// Renderer turns a rendering into HTML.
type Renderer interface {
	Render(r usecase.Rendering) (string, error)
	RenderError(message string) (string, error)
}

type Handler struct {
	svc  WizardService
	view Renderer
}

func NewHandler(svc WizardService, view Renderer) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: wizard service must not be nil")
	}
	if view == nil {
		return nil, errors.New("handler: renderer must not be nil")
	}
	return &Handler{svc: svc, view: view}, nil
}

// Handle routes one request. Handler errors never surface as Lambda
// failures; every outcome is an HTML response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	sessionID, minted := h.sessionID(req)

	resp := h.route(ctx, req, sessionID)
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers["Content-Type"] = "text/html; charset=utf-8"
	resp.Headers[correlationHeader] = correlationID
	if minted {
		cookie := http.Cookie{Name: sessionCookieName, Value: sessionID, Path: "/", HttpOnly: true}
		resp.Headers["Set-Cookie"] = cookie.String()
	}

	slog.Info("handled request",
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", resp.StatusCode,
		"correlation_id", correlationID,
	)
	return resp, nil
}

func (h *Handler) route(ctx context.Context, req events.APIGatewayProxyRequest, sessionID string) events.APIGatewayProxyResponse {
	path := req.Path
	if path == "" {
		path = "/"
	}

	var step domain.Step
	var submit func(context.Context, string, url.Values) (usecase.Rendering, error)
	switch path {
	case "/":
		step = domain.StepBody
	case "/body":
		step, submit = domain.StepBody, h.svc.SubmitBody
	case "/food":
		step, submit = domain.StepFood, h.svc.SubmitFood
	case "/sleep":
		step, submit = domain.StepSleep, h.svc.SubmitSleep
	case "/active":
		step, submit = domain.StepActive, h.svc.SubmitActive
	default:
		return h.errorPage(http.StatusNotFound, "There is no such page.")
	}

	switch req.HTTPMethod {
	case http.MethodGet:
		rendering, err := h.svc.Show(ctx, sessionID, step)
		if err != nil {
			return h.internalError(err)
		}
		return h.htmlPage(rendering)
	case http.MethodPost:
		if submit == nil {
			return h.errorPage(http.StatusMethodNotAllowed, "This page only accepts GET requests.")
		}
		rendering, err := submit(ctx, sessionID, parseForm(req))
		if err != nil {
			return h.internalError(err)
		}
		return h.htmlPage(rendering)
	default:
		return h.errorPage(http.StatusMethodNotAllowed, "Unsupported method.")
	}
}

func (h *Handler) htmlPage(rendering usecase.Rendering) events.APIGatewayProxyResponse {
	body, err := h.view.Render(rendering)
	if err != nil {
		return h.internalError(err)
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: body}
}

func (h *Handler) internalError(err error) events.APIGatewayProxyResponse {
	slog.Error("request failed", "err", err)
	return h.errorPage(http.StatusInternalServerError, internalErrorMessage)
}

func (h *Handler) errorPage(status int, message string) events.APIGatewayProxyResponse {
	body, err := h.view.RenderError(message)
	if err != nil {
		// Last resort when even the error template fails.
		body = message
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Body: body}
}

// sessionID returns the session identifier from the request cookie, minting
// a fresh one when absent. minted is true when a Set-Cookie must be issued.
func (h *Handler) sessionID(req events.APIGatewayProxyRequest) (id string, minted bool) {
	raw := headerValue(req.Headers, "Cookie")
	if raw != "" {
		header := http.Header{}
		header.Add("Cookie", raw)
		r := http.Request{Header: header}
		if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
			return c.Value, false
		}
	}
	return uuid.NewString(), true
}

// parseForm decodes a urlencoded POST body. Malformed bodies degrade to an
// empty form so steps fall back to their field defaults.
func parseForm(req events.APIGatewayProxyRequest) url.Values {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return url.Values{}
		}
		body = string(decoded)
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		return url.Values{}
	}
	return values
}

// headerValue performs a case-insensitive header lookup; API Gateway does
// not canonicalize header casing.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
