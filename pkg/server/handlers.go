package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
	"github.com/matzehuels/cvtopo/pkg/store"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// maxBodySize leaves room for the request envelope around the inventory.
const maxBodySize = pipeline.MaxInventorySize + 64<<10

// extractRequest is the body of POST /v1/topology and POST /v1/containers.
// Inventory is either a JSON object or a string holding YAML or JSON text.
type extractRequest struct {
	Inventory    json.RawMessage `json:"inventory"`
	Root         string          `json:"root"`
	ReservedRoot string          `json:"reserved_root,omitempty"`
	Strict       bool            `json:"strict,omitempty"`
	Refresh      bool            `json:"refresh,omitempty"`
	Save         bool            `json:"save,omitempty"`
}

type topologyResponse struct {
	ID           string             `json:"id,omitempty"`
	Root         string             `json:"root"`
	ReservedRoot string             `json:"reserved_root"`
	Topology     *topology.Topology `json:"topology"`
	Warnings     []string           `json:"warnings"`
	CacheHit     bool               `json:"cache_hit"`
}

type containersResponse struct {
	ReservedRoot string   `json:"reserved_root"`
	Containers   []string `json:"containers"`
}

type errorResponse struct {
	Code    cverrors.Code `json:"code"`
	Message string        `json:"message"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if req.Save && h.store == nil {
		h.writeError(w, cverrors.New(cverrors.ErrCodeUnsupported, "snapshot storage is not configured"))
		return
	}

	opts := req.options()
	result, err := h.runner.Execute(r.Context(), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := topologyResponse{
		Root:         req.Root,
		ReservedRoot: result.Topology.ReservedRoot(),
		Topology:     result.Topology,
		Warnings:     nonNil(result.Warnings),
		CacheHit:     result.CacheHit,
	}
	status := http.StatusOK
	if req.Save {
		snap := store.New(req.Root, result.InventoryHash, result.Topology, result.Warnings)
		if err := h.store.Save(r.Context(), snap); err != nil {
			h.writeError(w, cverrors.Wrap(cverrors.ErrCodeInternal, err, "save snapshot"))
			return
		}
		resp.ID = snap.ID
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (h *Handler) containers(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tree, err := h.runner.Tree(r.Context(), req.options())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, containersResponse{
		ReservedRoot: tree.RootName(),
		Containers:   nonNil(tree.Containers()),
	})
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, cverrors.New(cverrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	snaps, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, cverrors.Wrap(cverrors.ErrCodeInternal, err, "list snapshots"))
		return
	}
	if snaps == nil {
		snaps = []*store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.lookupSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := cverrors.ValidateSnapshotID(id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, cverrors.Wrap(cverrors.ErrCodeInternal, err, "delete snapshot"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) diagram(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.lookupSnapshot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := pipeline.RenderOptions{
		Format:  q.Get("format"),
		Devices: q.Get("devices") == "true",
	}
	data, _, err := h.runner.Render(r.Context(), snap.Topology, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	contentType := "image/svg+xml"
	if opts.Format == pipeline.FormatDOT {
		contentType = "text/vnd.graphviz"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		h.writeError(w, cverrors.New(cverrors.ErrCodeUnsupported, "snapshot storage is not configured"))
		return false
	}
	return true
}

func (h *Handler) lookupSnapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	if !h.requireStore(w) {
		return nil, false
	}
	id := chi.URLParam(r, "id")
	if err := cverrors.ValidateSnapshotID(id); err != nil {
		h.writeError(w, err)
		return nil, false
	}
	snap, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, cverrors.New(cverrors.ErrCodeSnapshotNotFound, "snapshot %s not found", id))
		return nil, false
	}
	if err != nil {
		h.writeError(w, cverrors.Wrap(cverrors.ErrCodeInternal, err, "get snapshot"))
		return nil, false
	}
	return snap, true
}

// decodeRequest reads either a JSON request envelope or, for YAML content
// types, a bare inventory with its options in the query string. Other
// content types are rejected before the body is read.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*extractRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	yamlBody := mediaType == "application/yaml" || mediaType == "text/yaml"
	if !yamlBody && mediaType != "application/json" {
		return nil, cverrors.New(cverrors.ErrCodeUnsupportedMediaType,
			"unsupported content type %q, want application/json or application/yaml", r.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "read request body")
	}

	if yamlBody {
		q := r.URL.Query()
		return &extractRequest{
			Inventory:    body,
			Root:         q.Get("root"),
			ReservedRoot: q.Get("reserved_root"),
			Strict:       q.Get("strict") == "true",
			Refresh:      q.Get("refresh") == "true",
			Save:         q.Get("save") == "true",
		}, nil
	}

	var req extractRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	inv, err := inventoryBytes(req.Inventory)
	if err != nil {
		return nil, err
	}
	req.Inventory = inv
	return &req, nil
}

// inventoryBytes unwraps a JSON string; any other JSON value is already a
// valid inventory document.
func inventoryBytes(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "invalid inventory")
	}
	return []byte(s), nil
}

func (req *extractRequest) options() pipeline.Options {
	return pipeline.Options{
		Inventory:    req.Inventory,
		Root:         req.Root,
		ReservedRoot: req.ReservedRoot,
		Strict:       req.Strict,
		Refresh:      req.Refresh,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := cverrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	} else {
		h.logger.Debug("request rejected", "err", err)
	}
	code := cverrors.GetCode(err)
	if code == "" {
		code = cverrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: cverrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
