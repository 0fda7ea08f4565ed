package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func decode(r *http.Request, into interface{}) error {
	rawJson, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(rawJson, into)
}

func respond(ctx context.Context, rw http.ResponseWriter, status int, body envelope) {
	_, span := otel.GetTracerProvider().Tracer("").Start(ctx, "handler.respond")
	span.SetAttributes(attribute.Int("http.status", status))
	defer span.End()

	rawJson, err := json.Marshal(body)
	if err != nil {
		panic("respond-json-marshal:" + err.Error())
	}

	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(rawJson)
}

func respondData(ctx context.Context, rw http.ResponseWriter, status int, data interface{}, message string) {
	respond(ctx, rw, status, envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondErr(ctx context.Context, rw http.ResponseWriter, status int, msg string, details interface{}) {
	respond(ctx, rw, status, envelope{
		Success: false,
		Error:   msg,
		Details: details,
	})
}
