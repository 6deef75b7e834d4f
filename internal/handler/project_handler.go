package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
	"overlaytv/internal/render"
	"overlaytv/internal/service"
	"overlaytv/internal/share"
	"overlaytv/internal/storage"
	"overlaytv/internal/validation"
)

const (
	maxBodyBytes = 8 << 20

	defaultQRSize        = 256
	defaultPreviewWidth  = 800
	defaultPreviewHeight = 450
)

type ProjectHandler struct {
	Service *service.ProjectService
	Storage storage.Storage

	// Renderer draws previews. Calls are serialized; nil disables the
	// preview endpoint.
	Renderer *render.Renderer

	// ShareBase is the viewer page QR codes link to.
	ShareBase string
	Log       *slog.Logger

	renderMu sync.Mutex
}

func (h *ProjectHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.New(slog.DiscardHandler)
}

// Register mounts the project routes on r.
func (h *ProjectHandler) Register(r *mux.Router) {
	r.HandleFunc("/projects", h.CreateProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.GetProject).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}", h.UpdateProject).Methods(http.MethodPut)
	r.HandleFunc("/projects/{id}", h.DeleteProject).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/qr", h.ProjectQR).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/preview", h.ProjectPreview).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// serviceError maps store errors to HTTP statuses.
func (h *ProjectHandler) serviceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger().Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return uuid.Nil, false
	}
	return id, true
}

func decodeProject(w http.ResponseWriter, r *http.Request) (models.Project, bool) {
	var p models.Project
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return p, false
	}
	if err := validation.ValidateProject(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	return p, true
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeProject(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.CreateProject(r.Context(), p)
	if err != nil {
		h.serviceError(w, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": rec.ID.String()})
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.GetProject(r.Context(), id)
	if err != nil {
		h.serviceError(w, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, ok := decodeProject(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.UpdateProject(r.Context(), id, p)
	if err != nil {
		h.serviceError(w, "update project", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteProject(r.Context(), id); err != nil {
		h.serviceError(w, "delete project", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ProjectQR returns a PNG QR code of the project's share link.
func (h *ProjectHandler) ProjectQR(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	size, err := intParam(r, "size", defaultQRSize)
	if err == nil {
		err = validation.ValidateQRSize(size)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.Service.GetProject(r.Context(), id); err != nil {
		h.serviceError(w, "qr project", err)
		return
	}

	link, err := share.Link(h.ShareBase, id.String())
	if err != nil {
		h.logger().Error("build share link", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	png, err := share.QRCode(link, size)
	if err != nil {
		h.logger().Error("encode qr", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// ProjectPreview renders the overlay layer at ?t= seconds as a transparent
// PNG of ?w= by ?h= pixels.
func (h *ProjectHandler) ProjectPreview(w http.ResponseWriter, r *http.Request) {
	if h.Renderer == nil {
		writeError(w, http.StatusNotImplemented, "previews disabled")
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	width, err := intParam(r, "w", defaultPreviewWidth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := intParam(r, "h", defaultPreviewHeight)
	if err == nil {
		err = validation.ValidatePreviewSize(width, height)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	at, err := floatParam(r, "t")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.Service.GetProject(r.Context(), id)
	if err != nil {
		h.serviceError(w, "preview project", err)
		return
	}

	var visible []models.Annotation
	for _, a := range rec.Project.Annotations {
		if a.VisibleAt(at) {
			visible = append(visible, a)
		}
	}

	var buf bytes.Buffer
	h.renderMu.Lock()
	err = h.Renderer.WritePNG(&buf, render.Scene{
		Viewport:    geometry.NewViewport(float64(width), float64(height)),
		Annotations: visible,
	})
	h.renderMu.Unlock()
	if err != nil {
		h.logger().Error("render preview", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	if h.Storage != nil {
		// One file per distinct render; repeated requests overwrite it.
		name := fmt.Sprintf("%s-v%d-t%s-%dx%d.png", id, rec.Version, strconv.FormatFloat(at, 'f', -1, 64), width, height)
		url, err := h.Storage.SaveAs(name, bytes.NewReader(buf.Bytes()))
		if err != nil {
			h.logger().Warn("store preview", "id", id, "error", err)
		} else {
			w.Header().Set("X-Preview-URL", url)
		}
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(name + " must be a non-negative number")
	}
	return f, nil
}
