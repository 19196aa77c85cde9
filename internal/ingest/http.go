// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicvault/internal/platform/constants"
	requestutil "github.com/taibuivan/comicvault/internal/platform/request"
	"github.com/taibuivan/comicvault/internal/platform/respond"
)

// Handler exposes batch imports to administrators.
type Handler struct {
	importer *Importer
}

// NewHandler constructs a new import [Handler].
func NewHandler(importer *Importer) *Handler {
	return &Handler{importer: importer}
}

// Register adds the import route to a router already scoped to /admin and
// guarded by admin authentication.
func (handler *Handler) Register(router chi.Router) {
	router.Post("/imports", handler.importBatch)
}

/*
POST /api/v1/admin/imports?genre={genre}.

Description: Imports a posted JSON array of scraped comics under one genre,
in a single transaction.

Response:
  - 200: {"data": Report}
  - 400: unknown genre or malformed body
  - 401/403: missing or insufficient admin token
*/
func (handler *Handler) importBatch(writer http.ResponseWriter, request *http.Request) {
	var items []Item
	if err := requestutil.DecodeJSONLimit(request, &items, constants.MaxImportBodyBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.importer.ImportBatch(request.Context(), request.URL.Query().Get(fieldGenre), items)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}
