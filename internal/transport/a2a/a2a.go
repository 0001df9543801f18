package a2a

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/agentpages/internal/domain/a2a"
	chatsvc "github.com/alanyang/agentpages/internal/service/chat"
)

var (
	errTrailingData = errors.New("trailing data after request")
	errNullRequest  = errors.New("request is null")
)

// Register mounts the JSON-RPC endpoint at rg's root.
func Register(rg *gin.RouterGroup, svc *chatsvc.Service) {
	rg.POST("", handleRPC(svc))
}

// RegisterCard serves the directory's own agent card on every well-known path.
func RegisterCard(r gin.IRoutes, baseURL, version string) {
	card := a2a.DirectoryCard(baseURL, version)
	serve := func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=3600")
		c.JSON(http.StatusOK, card)
	}
	for _, p := range a2a.WellKnownPaths {
		r.GET(p, serve)
	}
}

// handleRPC answers message/send. Every JSON-RPC error is sent with HTTP 400.
func handleRPC(svc *chatsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := decodeRequest(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, a2a.ErrorResponse(nil, a2a.CodeParseError, "Parse error"))
			return
		}

		if req.Method != a2a.MethodMessageSend {
			c.JSON(http.StatusBadRequest, a2a.ErrorResponse(req.ID, a2a.CodeMethodNotFound, "Method not found"))
			return
		}
		if req.Params == nil || req.Params.Message == nil || len(req.Params.Message.Parts) == 0 {
			c.JSON(http.StatusBadRequest, a2a.ErrorResponse(req.ID, a2a.CodeInvalidParams, "Invalid params"))
			return
		}

		reply, err := svc.Respond(c.Request.Context(), *req.Params.Message)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "a2a respond failed", "error", err)
			c.JSON(http.StatusInternalServerError, a2a.ErrorResponse(req.ID, a2a.CodeInternalError, "Internal error"))
			return
		}
		c.JSON(http.StatusOK, a2a.ResultResponse(req.ID, reply))
	}
}

// decodeRequest reads exactly one JSON object from body.
func decodeRequest(body io.Reader) (a2a.Request, error) {
	var (
		raw json.RawMessage
		req a2a.Request
	)
	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		return req, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return req, errTrailingData
	}
	if t := bytes.TrimSpace(raw); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return req, errNullRequest
	}
	err := json.Unmarshal(raw, &req)
	return req, err
}
