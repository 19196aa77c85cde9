// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicvault/internal/platform/request"
	"github.com/taibuivan/comicvault/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes status writes over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reading [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the status routes to a router already scoped to /comics.
func (handler *Handler) Register(router chi.Router) {
	router.Post("/{id}/status", handler.setStatus)
}

// statusRequest is the wire shape of a status update.
type statusRequest struct {
	Status            string  `json:"status"`
	LastReadChapter   *int    `json:"lastReadChapter"`
	CurrentChapterURL *string `json:"currentChapterUrl"`
	Link              *string `json:"link"`
}

/*
POST /api/v1/comics/{id}/status.

Description: Sets the reading status of one comic, creating the status row
on first use.

Request:
  - status: string (unread, completed, ongoing, abandoned)
  - lastReadChapter: int (optional, >= 0)
  - currentChapterUrl: string (optional, absolute http(s) URL)
  - link: string (optional, must equal the comic's link)

Response:
  - 200: {"success": true}
  - 400: invalid id, body or status
  - 404: unknown comic
*/
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body statusRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update := Update{
		ComicID: comicID,
		Status:  Status(body.Status),
		Progress: Progress{
			LastReadChapter:   body.LastReadChapter,
			CurrentChapterURL: body.CurrentChapterURL,
		},
	}
	if body.Link != nil {
		update.Link = *body.Link
	}

	if err := handler.service.SetStatus(request.Context(), update); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer)
}
