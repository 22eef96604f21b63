package handler

import (
	"net/http"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
	"github.com/yhk1105/114-1-DBFinal/pkg/service"
)

type ItemReq struct {
	ItemID     int64 `json:"item_id"`
	CategoryID int64 `json:"category_id,omitempty"`
}

// itemAction decodes ItemReq for an authenticated caller and runs do with it.
func itemAction(staff bool, do func(r *http.Request, id model.Identity, req ItemReq) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		id, err := identity(r, staff)
		if err != nil {
			writeError(w, err)
			return
		}

		var req ItemReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		if req.ItemID <= 0 {
			writeError(w, model.Validation("item_id is required"))
			return
		}

		if err := do(r, id, req); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, OKResp{OK: true})
	}
}

func ItemChangeCategory(svc service.Item) http.HandlerFunc {
	return itemAction(false, func(r *http.Request, id model.Identity, req ItemReq) error {
		if req.CategoryID <= 0 {
			return model.Validation("category_id is required")
		}
		return svc.ChangeCategory(r.Context(), id.MemberID, req.ItemID, req.CategoryID)
	})
}

func ItemDelist(svc service.Item) http.HandlerFunc {
	return itemAction(false, func(r *http.Request, id model.Identity, req ItemReq) error {
		return svc.Delist(r.Context(), id.MemberID, req.ItemID)
	})
}

func ItemVerify(svc service.Item) http.HandlerFunc {
	return itemAction(true, func(r *http.Request, _ model.Identity, req ItemReq) error {
		return svc.Verify(r.Context(), req.ItemID)
	})
}
