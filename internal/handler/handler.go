package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strings"

	"gasmap/internal/codec"
	"gasmap/internal/domain"
	"gasmap/internal/editor"
	"gasmap/internal/geometry"
	"gasmap/internal/repository"
	"gasmap/internal/service"
)

// NetworkHandler handles network API requests
type NetworkHandler struct {
	svc     *service.NetworkService
	library repository.Repository
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(svc *service.NetworkService) *NetworkHandler {
	return &NetworkHandler{svc: svc}
}

// SetLibrary attaches the saved-network library
func (h *NetworkHandler) SetLibrary(lib repository.Repository) {
	h.library = lib
}

// Register adds the API routes to mux
func (h *NetworkHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/network", h.GetNetwork)
	mux.HandleFunc("GET /api/document", h.GetDocument)

	mux.HandleFunc("GET /api/commands", h.ListCommands)
	mux.HandleFunc("POST /api/commands/{name}", h.RunCommand)
	mux.HandleFunc("POST /api/pointer/{phase}", h.Pointer)
	mux.HandleFunc("POST /api/cancel", h.Cancel)

	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)
	mux.HandleFunc("PATCH /api/nodes/{id}", h.UpdateNode)
	mux.HandleFunc("PUT /api/nodes/{id}/position", h.MoveNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", h.DeleteNode)

	mux.HandleFunc("GET /api/pipes/{id}", h.GetPipe)
	mux.HandleFunc("PATCH /api/pipes/{id}", h.UpdatePipe)
	mux.HandleFunc("PUT /api/pipes/{id}/shape", h.SetPipeShape)
	mux.HandleFunc("DELETE /api/pipes/{id}", h.DeletePipe)

	mux.HandleFunc("GET /api/networks", h.ListNetworks)
	mux.HandleFunc("DELETE /api/networks/{name}", h.DeleteNetwork)
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CommandRequest carries the storage location of load and export
type CommandRequest struct {
	Location string `json:"location,omitempty"`
}

// CommandResponse reports a finished command
type CommandResponse struct {
	Command editor.Command      `json:"command"`
	Job     *service.JobPayload `json:"job,omitempty"`
}

// PointRequest is a canvas position
type PointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p PointRequest) point() (geometry.Point, error) {
	if p.X == nil || p.Y == nil {
		return geometry.Point{}, fmt.Errorf("x and y are required")
	}
	return geometry.Pt(*p.X, *p.Y), nil
}

// ShapeRequest selects a pipe path shape
type ShapeRequest struct {
	Shape string `json:"shape"`
}

// GetNetwork returns the network view
func (h *NetworkHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.View(r.Context())
	if err != nil {
		h.fail(w, "Failed to get network", err)
		return
	}
	h.writeJSON(w, view, http.StatusOK)
}

// GetDocument downloads the network as a document
func (h *NetworkHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "mj5"
	}
	c, err := codec.ForFormat(format)
	if err != nil {
		h.fail(w, "Unsupported format", err)
		return
	}

	doc, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.fail(w, "Failed to export network", err)
		return
	}

	contentType := "application/json"
	if c.Format() == "yaml" {
		contentType = "application/x-yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=network."+c.Format())

	if err := c.Export(doc, w); err != nil {
		log.Printf("Failed to export %s: %v", format, err)
		// Can't write error response as we already set headers
		return
	}
}

// ListCommands returns the accepted command names
func (h *NetworkHandler) ListCommands(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, editor.Commands, http.StatusOK)
}

// RunCommand issues a toolbar command
func (h *NetworkHandler) RunCommand(w http.ResponseWriter, r *http.Request) {
	name := editor.Command(r.PathValue("name"))

	var req CommandRequest
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Command(r.Context(), name, req.Location)
	if err != nil {
		h.fail(w, fmt.Sprintf("Command %s failed", name), err)
		return
	}

	resp := CommandResponse{Command: name}
	if res != nil {
		job := service.JobPayload{
			Kind:     res.Kind,
			Location: res.Location,
			Nodes:    res.Nodes,
			Pipes:    res.Pipes,
		}
		resp.Job = &job
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// Pointer forwards a pointer event. phase is down, move or up.
func (h *NetworkHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	pt, err := req.point()
	if err != nil {
		h.writeError(w, "Invalid position", err.Error(), http.StatusBadRequest)
		return
	}

	switch r.PathValue("phase") {
	case "down":
		err = h.svc.PointerDown(r.Context(), pt)
	case "move":
		err = h.svc.PointerMove(r.Context(), pt)
	case "up":
		err = h.svc.PointerUp(r.Context(), pt)
	default:
		h.writeError(w, "Not found", "pointer phase must be down, move or up", http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, "Pointer event failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cancel forwards the cancel key
func (h *NetworkHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context()); err != nil {
		h.fail(w, "Cancel failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNode returns a node's attributes
func (h *NetworkHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	attr, err := h.svc.GetNode(r.Context(), domain.NodeID(r.PathValue("id")))
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}
	h.writeJSON(w, attr, http.StatusOK)
}

// UpdateNode edits a node's attributes
func (h *NetworkHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var u domain.NodeUpdate
	if !h.decodeJSON(w, r, &u) {
		return
	}

	attr, err := h.svc.UpdateNode(r.Context(), domain.NodeID(r.PathValue("id")), u)
	if err != nil {
		h.fail(w, "Failed to update node", err)
		return
	}
	h.writeJSON(w, attr, http.StatusOK)
}

// MoveNode moves a node to a new position
func (h *NetworkHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var req PointRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	pt, err := req.point()
	if err != nil {
		h.writeError(w, "Invalid position", err.Error(), http.StatusBadRequest)
		return
	}

	id := domain.NodeID(r.PathValue("id"))
	if err := h.svc.MoveNode(r.Context(), id, pt); err != nil {
		h.fail(w, "Failed to move node", err)
		return
	}

	attr, err := h.svc.GetNode(r.Context(), id)
	if err != nil {
		log.Printf("Failed to fetch moved node: %v", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, attr, http.StatusOK)
}

// DeleteNode removes a node and its pipes
func (h *NetworkHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), domain.NodeID(r.PathValue("id"))); err != nil {
		h.fail(w, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPipe returns a pipe's attributes
func (h *NetworkHandler) GetPipe(w http.ResponseWriter, r *http.Request) {
	attr, err := h.svc.GetPipe(r.Context(), domain.PipeID(r.PathValue("id")))
	if err != nil {
		h.fail(w, "Failed to get pipe", err)
		return
	}
	h.writeJSON(w, attr, http.StatusOK)
}

// UpdatePipe edits a pipe's attributes
func (h *NetworkHandler) UpdatePipe(w http.ResponseWriter, r *http.Request) {
	var u domain.PipeUpdate
	if !h.decodeJSON(w, r, &u) {
		return
	}

	attr, err := h.svc.UpdatePipe(r.Context(), domain.PipeID(r.PathValue("id")), u)
	if err != nil {
		h.fail(w, "Failed to update pipe", err)
		return
	}
	h.writeJSON(w, attr, http.StatusOK)
}

// SetPipeShape switches a pipe between curve and straight
func (h *NetworkHandler) SetPipeShape(w http.ResponseWriter, r *http.Request) {
	var req ShapeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	shape, err := geometry.ParseShape(req.Shape)
	if err != nil {
		h.writeError(w, "Invalid shape", err.Error(), http.StatusBadRequest)
		return
	}

	id := domain.PipeID(r.PathValue("id"))
	if err := h.svc.SetPipeShape(r.Context(), id, shape); err != nil {
		h.fail(w, "Failed to set pipe shape", err)
		return
	}

	attr, err := h.svc.GetPipe(r.Context(), id)
	if err != nil {
		log.Printf("Failed to fetch reshaped pipe: %v", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, attr, http.StatusOK)
}

// DeletePipe removes a pipe
func (h *NetworkHandler) DeletePipe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePipe(r.Context(), domain.PipeID(r.PathValue("id"))); err != nil {
		h.fail(w, "Failed to delete pipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNetworks lists the saved networks
func (h *NetworkHandler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		h.writeError(w, "Library not configured", "storage backend is not sqlite", http.StatusServiceUnavailable)
		return
	}
	infos, err := h.library.ListNetworks(r.Context())
	if err != nil {
		h.fail(w, "Failed to list networks", err)
		return
	}
	if infos == nil {
		infos = []repository.NetworkInfo{}
	}
	h.writeJSON(w, infos, http.StatusOK)
}

// DeleteNetwork removes a saved network
func (h *NetworkHandler) DeleteNetwork(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		h.writeError(w, "Library not configured", "storage backend is not sqlite", http.StatusServiceUnavailable)
		return
	}
	if err := h.library.DeleteNetwork(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, "Failed to delete network", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

// fail writes err with the status it maps to. Server errors are logged.
func (h *NetworkHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", msg, err)
	}
	if status == http.StatusNotFound {
		msg = "Not found"
	}
	h.writeError(w, msg, err.Error(), status)
}

// decodeJSON reads a JSON request body into v. Bodies not labelled
// application/json are refused so that plain form posts cannot reach the API.
func (h *NetworkHandler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		h.writeError(w, "Unsupported media type", "request body must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *NetworkHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *NetworkHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: strings.TrimSpace(details),
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
