package http

import (
	"net/http"
	"strings"

	"github.com/researchdex/dataset-marketplace/internal/application"
	"github.com/researchdex/dataset-marketplace/internal/contracts"
	"github.com/researchdex/dataset-marketplace/internal/domain"
)

func (h *Handler) createDataset(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateDatasetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	out, err := h.service.CreateListing(r.Context(), application.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		CID:           req.CID,
		ImageCID:      req.ImageCID,
		MetadataCID:   req.MetadataCID,
		AuthorAddress: req.AuthorAddress,
		DecryptionKey: req.DecryptionKey,
		TokenID:       req.TokenID.Int64(),
		TxHash:        req.TxHash,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "create_dataset", err)
		return
	}
	writeSuccess(w, http.StatusCreated, out)
}

func (h *Handler) listDatasets(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListListings(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_datasets", err)
		return
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *Handler) recordAccess(w http.ResponseWriter, r *http.Request) {
	var req contracts.RecordAccessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	// The id may arrive as a plain string or a serialized wrapper object;
	// it is normalized here and never re-sniffed downstream.
	ref := domain.ParseDatasetRef(req.ID)
	listing, err := h.service.RecordAccess(r.Context(), ref, req.Purchaser)
	if err != nil {
		writeMappedError(r.Context(), w, "record_access", err)
		return
	}
	writeSuccess(w, http.StatusOK, listing)
}

func (h *Handler) datasetInfo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	info, err := h.service.GetListingInfo(r.Context(), domain.ParseDatasetRef(id))
	if err != nil {
		writeMappedError(r.Context(), w, "dataset_info", err)
		return
	}
	writeSuccess(w, http.StatusOK, info)
}
