package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devs-assistent/server/internal/assistant"
	"github.com/devs-assistent/server/internal/assistant/export"
	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/orchestrator"
	errx "github.com/devs-assistent/server/internal/core/error"
)

type handlers struct {
	sess    *assistant.Session
	timeout time.Duration
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Query  string                  `json:"query"`
	Answer *model.StructuredAnswer `json:"answer"`
	Failed bool                    `json:"failed"`
	Error  string                  `json:"error,omitempty"`
	TookMS int64                   `json:"tookMs"`
}

type themeBody struct {
	Theme string `json:"theme"`
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessionId": h.sess.ID,
		"pending":   h.sess.Orchestrator.Pending(),
		"turns":     h.sess.Store.Len(),
		"dictation": h.sess.Capture.Supported(),
	})
}

func (h *handlers) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	h.submit(c, req.Query)
}

// resubmitHistory sends the history entry at :index (0-based, most recent
// first) again.
func (h *handlers) resubmitHistory(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abort(c, http.StatusNotFound, errors.New("history entry not found"))
		return
	}
	q, ok := h.sess.Store.HistoryAt(idx)
	if !ok {
		abort(c, http.StatusNotFound, errors.New("history entry not found"))
		return
	}
	h.submit(c, q)
}

func (h *handlers) examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": model.ExampleQueries})
}

func (h *handlers) submitExample(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abort(c, http.StatusNotFound, errors.New("example not found"))
		return
	}
	q, ok := model.ExampleQuery(idx)
	if !ok {
		abort(c, http.StatusNotFound, errors.New("example not found"))
		return
	}
	h.submit(c, q)
}

func (h *handlers) submit(c *gin.Context, query string) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.sess.Orchestrator.Submit(ctx, query)
	switch {
	case errors.Is(err, orchestrator.ErrBusy):
		abort(c, http.StatusConflict, err)
		return
	case err != nil:
		abort(c, errx.StatusOf(err), err)
		return
	}

	resp := chatResponse{Query: res.Query, Answer: res.Answer, Failed: res.Failed(), TookMS: res.Duration.Milliseconds()}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) turns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"turns": h.sess.Store.Turns()})
}

func (h *handlers) exportTurn(c *gin.Context) {
	turns := h.sess.Store.Turns()
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(turns) {
		abort(c, http.StatusNotFound, errors.New("turn not found"))
		return
	}
	turn := turns[idx]
	if turn.Role != model.RoleAssistant || turn.Answer == nil {
		abort(c, http.StatusUnprocessableEntity, export.ErrNoAnswer)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.Markdown(turn.Answer)))
}

func (h *handlers) history(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.sess.Store.History()})
}

func (h *handlers) clearHistory(c *gin.Context) {
	if err := h.sess.Store.ClearHistory(c.Request.Context()); err != nil {
		abort(c, errx.StatusOf(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) theme(c *gin.Context) {
	theme, err := h.sess.Store.Theme(c.Request.Context())
	if err != nil {
		abort(c, errx.StatusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, themeBody{Theme: string(theme)})
}

func (h *handlers) setTheme(c *gin.Context) {
	var body themeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	theme, ok := model.ParseTheme(body.Theme)
	if !ok {
		abort(c, http.StatusBadRequest, errors.New("theme must be light or dark"))
		return
	}
	if err := h.sess.Store.SetTheme(c.Request.Context(), theme); err != nil {
		abort(c, errx.StatusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, themeBody{Theme: string(theme)})
}
