package handler

import (
	"net/http"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
	"github.com/yhk1105/114-1-DBFinal/pkg/service"
)

type CreateReservationReq struct {
	Lines []model.ReservationLine `json:"lines"`
}

type CreateReservationResp struct {
	ReservationID int64 `json:"reservation_id"`
}

type CancelReservationReq struct {
	ReservationID int64 `json:"reservation_id"`
}

func ReservationCreate(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		id, err := identity(r, false)
		if err != nil {
			writeError(w, err)
			return
		}

		var req CreateReservationReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		rid, err := svc.Create(r.Context(), id.MemberID, req.Lines)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateReservationResp{ReservationID: rid})
	}
}

func ReservationCancel(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		id, err := identity(r, false)
		if err != nil {
			writeError(w, err)
			return
		}

		var req CancelReservationReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		if req.ReservationID <= 0 {
			writeError(w, model.Validation("reservation_id is required"))
			return
		}

		if err := svc.Cancel(r.Context(), id.MemberID, req.ReservationID); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, OKResp{OK: true})
	}
}

func PickupPlaces(svc service.Reservation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		itemID, err := parseID(r.URL.Query().Get("item_id"), "item_id")
		if err != nil {
			writeError(w, err)
			return
		}

		places, err := svc.AvailablePickupPlaces(r.Context(), itemID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, places)
	}
}
