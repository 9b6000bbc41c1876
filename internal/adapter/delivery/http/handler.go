package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL, clientIP string) (*entity.URL, bool, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	url, created, err := h.useCase.ShortenURL(r.Context(), req.URL, clientIP(r))
	if err != nil {
		var spamErr *entity.SpamError

		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidURLResponse)
		case errors.As(err, &spamErr):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, spamResponse(spamErr.Reason))
		case errors.Is(err, entity.ErrRateLimited):
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, rateLimitedResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	if created {
		render.Status(r, http.StatusCreated)
	} else {
		render.Status(r, http.StatusOK)
	}
	render.JSON(w, r, toURLResponse(url, h.baseURL))
}

func (h *urlHandler) resolveShortCode(w http.ResponseWriter, r *http.Request) {
	url, ok := h.resolve(w, r)
	if !ok {
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url, h.baseURL))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	url, ok := h.resolve(w, r)
	if !ok {
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusMovedPermanently)
}

// resolve looks up the shortCode path parameter and writes the error response on failure.
func (h *urlHandler) resolve(w http.ResponseWriter, r *http.Request) (*entity.URL, bool) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return nil, false
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return nil, false
	}

	return url, true
}
