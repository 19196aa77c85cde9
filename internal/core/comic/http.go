// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicvault/internal/platform/request"
	"github.com/taibuivan/comicvault/internal/platform/respond"
	"github.com/taibuivan/comicvault/pkg/pagination"
	"github.com/taibuivan/comicvault/pkg/slice"
)

// # Handler Implementation

// Handler exposes catalogue reads over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comic [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the catalogue routes to a router already scoped to /comics.
func (handler *Handler) Register(router chi.Router) {
	router.Get("/", handler.listComics)
	router.Get("/{id}", handler.getComic)
}

// listingResponse is the wire shape of one comic.
type listingResponse struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Link              string     `json:"link"`
	ImageURL          *string    `json:"imageUrl"`
	ChapterCount      int        `json:"chapterCount"`
	Rating            *float64   `json:"rating"`
	Genre             string     `json:"genre"`
	Genres            []string   `json:"genres"`
	CreatedAt         time.Time  `json:"createdAt"`
	Status            *string    `json:"status"`
	LastReadChapter   *int       `json:"lastReadChapter"`
	CurrentChapterURL *string    `json:"currentChapterUrl"`
	StatusUpdatedAt   *time.Time `json:"statusUpdatedAt"`
}

func toResponse(listing Listing) listingResponse {
	response := listingResponse{
		ID:                listing.ID,
		Title:             listing.Title,
		Link:              listing.Link,
		ImageURL:          listing.ImageURL,
		ChapterCount:      listing.ChapterCount,
		Rating:            listing.Rating,
		Genre:             listing.Genres.String(),
		Genres:            []string(listing.Genres),
		CreatedAt:         listing.CreatedAt,
		LastReadChapter:   listing.LastReadChapter,
		CurrentChapterURL: listing.CurrentChapterURL,
		StatusUpdatedAt:   listing.StatusUpdatedAt,
	}
	if response.Genres == nil {
		response.Genres = []string{}
	}
	if listing.Status != nil {
		status := string(*listing.Status)
		response.Status = &status
	}
	return response
}

/*
GET /api/v1/comics.

Description: Lists the catalogue, filtered, sorted and paginated.

Query:
  - status: unread, completed, ongoing, abandoned (optional)
  - genre: action, adventure, fantasy, isekai, magic, reincarnation (optional)
  - search: title substring, case-insensitive (optional)
  - sort: chapterCount (default), rating, title
  - page: >= 1 (default 1)
  - limit: 1..100 (default 12)

Response:
  - 200: {"comics": [...], "total", "page", "limit", "totalPages"}
  - 400: invalid parameter
*/
func (handler *Handler) listComics(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	filter := Filter{
		Status: values.Get(FieldStatus),
		Genre:  values.Get(FieldGenre),
		Search: values.Get(FieldSearch),
	}

	page, err := handler.service.Query(request.Context(), filter, Sort(values.Get(FieldSort)), pagination.FromQuery(values))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, "comics", slice.Map(page.Items, toResponse), pagination.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

/*
GET /api/v1/comics/{id}.

Response:
  - 200: {"data": comic}
  - 400: id is not a positive integer
  - 404: unknown comic
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toResponse(*listing))
}
