/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"bufio"
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	dashboard "github.com/suparena/dashboard"
	"github.com/suparena/dashboard/internal/logger"
	"github.com/suparena/dashboard/render"
)

type handlers struct {
	dash *dashboard.Dashboard
	log  logger.Logger
}

// PageSummary is one entry of the page list.
type PageSummary struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Datasource   string   `json:"datasource"`
	Capabilities string   `json:"capabilities"`
	DisplayModes []string `json:"display_modes"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "dashboard",
		"version": dashboard.GetVersionInfo(),
	})
}

func (h *handlers) listPages(c *gin.Context) {
	pages := h.dash.Pages.List()
	out := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		summary := PageSummary{
			Name:         p.Name,
			Title:        p.Title,
			Datasource:   p.Datasource,
			DisplayModes: p.DisplayModes,
		}
		if ds, err := h.dash.Sources.Source(p.Datasource); err == nil {
			summary.Capabilities = ds.Capabilities().String()
		}
		out = append(out, summary)
	}
	Success(c, out)
}

func (h *handlers) renderPage(c *gin.Context) {
	req, err := render.ParseRequest(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.dash.Render(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) exportPage(c *gin.Context) {
	name := c.Param("name")
	req, err := render.ParseRequest(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if _, err := h.dash.Pages.Get(name); err != nil {
		_ = c.Error(err)
		return
	}

	// Buffer the head of the export so errors raised before the first rows can
	// still be reported with a proper status.
	var head bytes.Buffer
	w := &deferredWriter{head: &head, limit: 64 << 10, c: c, filename: name + ".csv"}
	n, err := h.dash.Export(c.Request.Context(), w, name, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := w.flush(); err != nil {
		_ = c.Error(err)
		return
	}
	h.log.Infof(c.Request.Context(), "exported %d rows", n)
}

// deferredWriter holds output until limit bytes are buffered, then commits the
// response headers and streams.
type deferredWriter struct {
	head     *bytes.Buffer
	limit    int
	c        *gin.Context
	filename string
	out      *bufio.Writer
}

func (w *deferredWriter) Write(p []byte) (int, error) {
	if w.out != nil {
		return w.out.Write(p)
	}
	w.head.Write(p)
	if w.head.Len() < w.limit {
		return len(p), nil
	}
	if err := w.commit(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *deferredWriter) commit() error {
	w.c.Header("Content-Type", "text/csv; charset=utf-8")
	w.c.Header("Content-Disposition", `attachment; filename="`+w.filename+`"`)
	w.c.Status(http.StatusOK)
	w.out = bufio.NewWriter(w.c.Writer)
	_, err := w.out.Write(w.head.Bytes())
	w.head.Reset()
	return err
}

func (w *deferredWriter) flush() error {
	if w.out == nil {
		if err := w.commit(); err != nil {
			return err
		}
	}
	return w.out.Flush()
}
