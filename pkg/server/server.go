package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yhk1105/114-1-DBFinal/pkg/server/handler"
	"github.com/yhk1105/114-1-DBFinal/pkg/server/middleware"
	"github.com/yhk1105/114-1-DBFinal/pkg/service"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
)

func New(
	addr string,
	resolver middleware.IdentityResolver,
	reservationSvc service.Reservation,
	itemSvc service.Item,
	gatherer prometheus.Gatherer,
) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      Handler(resolver, reservationSvc, itemSvc, gatherer),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

func Handler(
	resolver middleware.IdentityResolver,
	reservationSvc service.Reservation,
	itemSvc service.Item,
	gatherer prometheus.Gatherer,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/reservations", handler.ReservationCreate(reservationSvc))
	mux.Handle("/reservations/cancel", handler.ReservationCancel(reservationSvc))
	mux.Handle("/pickup-places", handler.PickupPlaces(reservationSvc))
	mux.Handle("/items/category", handler.ItemChangeCategory(itemSvc))
	mux.Handle("/items/delist", handler.ItemDelist(itemSvc))
	mux.Handle("/items/verify", handler.ItemVerify(itemSvc))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	chain := middleware.Chain{
		middleware.Log,
		middleware.Recovery,
		middleware.Auth(resolver),
	}

	return chain.Then(mux)
}
