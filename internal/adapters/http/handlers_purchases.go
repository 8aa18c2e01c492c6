package http

import (
	"net/http"
	"strings"

	"github.com/researchdex/dataset-marketplace/internal/application"
	"github.com/researchdex/dataset-marketplace/internal/contracts"
	"github.com/researchdex/dataset-marketplace/internal/domain"
)

func (h *Handler) recordPurchase(w http.ResponseWriter, r *http.Request) {
	var req contracts.RecordPurchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	ref := domain.ParseDatasetRef(req.DatasetID)
	out, err := h.service.RecordPurchase(r.Context(), ref, application.RecordPurchaseInput{
		PurchaserAddress: req.PurchaserAddress,
		PurchaserTokenID: req.PurchaserTokenID.Int64(),
		TxHash:           req.TxHash,
		DecryptionKey:    req.DecryptionKey,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "record_purchase", err)
		return
	}
	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, out)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	views, err := h.service.ListPurchases(r.Context(), application.ListPurchasesInput{
		Address: address,
		TokenID: parseTokenFilter(r.URL.Query().Get("token_id")),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_purchases", err)
		return
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) myPurchases(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	items, err := h.service.MyPurchases(r.Context(), address)
	if err != nil {
		writeMappedError(r.Context(), w, "my_purchases", err)
		return
	}
	writeSuccess(w, http.StatusOK, items)
}
