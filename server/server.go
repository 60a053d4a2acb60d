// Package server exposes client jobs over HTTP as JSON:API queue-jobs
// resources nested under the resource type they work for:
//
//	GET {prefix}/{resourceType}/queue-jobs
//	GET {prefix}/{resourceType}/queue-jobs/{id}
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rudderlabs/rudder-go-kit/jsonrs"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"
	"github.com/samber/lo"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/queue"
)

// Handler serves job reads from a queue.Store.
type Handler struct {
	jobs queue.Store
	urls jsonapi.URLs
	log  logger.Logger
}

func NewHandler(jobs queue.Store, urls jsonapi.URLs, log logger.Logger) *Handler {
	return &Handler{jobs: jobs, urls: urls, log: log}
}

// Routes registers the job routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/{resourceType}/"+queue.ResourceType, func(r chi.Router) {
		r.Get("/", h.listJobs)
		r.Get("/{id}", h.readJob)
	})
}

// New returns the router serving h under prefix, such as "/api/v1".
func New(h *Handler, prefix string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLog(h.log))
	r.Use(chimw.Recoverer)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	if prefix == "" || prefix == "/" {
		h.Routes(r)
	} else {
		r.Route(prefix, h.Routes)
	}
	return r
}

// readJob returns a pending job as is. A completed job redirects to the
// resource it produced, or is returned as is when there is none.
func (h *Handler) readJob(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found", "")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	if job.ResourceType != resourceType {
		writeError(w, http.StatusNotFound, "Not Found", "")
		return
	}

	if !job.IsPending() {
		if location, ok := job.ResourceLocation(h.urls); ok {
			w.Header().Set("Location", location)
			w.WriteHeader(http.StatusSeeOther)
			return
		}
	}
	h.write(w, http.StatusOK, jsonapi.Document{Data: queue.Resource(job, h.urls)})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Query Parameter", err.Error())
		return
	}

	jobs, err := h.jobs.List(r.Context(), resourceType, page)
	if err != nil {
		h.storeError(w, err)
		return
	}
	total, err := h.jobs.Count(r.Context(), resourceType)
	if err != nil {
		h.storeError(w, err)
		return
	}
	data := lo.Map(jobs, func(j *queue.ClientJob, _ int) jsonapi.ResourceObject {
		return queue.Resource(j, h.urls)
	})
	h.write(w, http.StatusOK, jsonapi.Document{
		Data:  data,
		Links: map[string]string{"self": h.urls.Collection(resourceType + "/" + queue.ResourceType)},
		Meta:  map[string]any{"total": total},
	})
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, queue.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not Found", "")
		return
	}
	h.log.Errorn("reading jobs", obskit.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func (h *Handler) write(w http.ResponseWriter, status int, doc any) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	if err := jsonrs.NewEncoder(w).Encode(doc); err != nil {
		h.log.Warnn("writing response", obskit.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = jsonrs.NewEncoder(w).Encode(jsonapi.ErrorDocument{Errors: []jsonapi.ErrorObject{{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}}})
}

// parsePage reads page[number] and page[size].
func parsePage(r *http.Request) (queue.Page, error) {
	var p queue.Page
	q := r.URL.Query()
	for key, dst := range map[string]*int{"page[number]": &p.Number, "page[size]": &p.Size} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, errors.New(key + " must be a non-negative integer")
		}
		*dst = n
	}
	return p, nil
}

func requestLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debugn("request",
				logger.NewStringField("requestId", chimw.GetReqID(r.Context())),
				logger.NewStringField("method", r.Method),
				logger.NewStringField("path", r.URL.Path),
				logger.NewIntField("status", int64(ww.Status())),
				logger.NewDurationField("duration", time.Since(start)),
			)
		})
	}
}
