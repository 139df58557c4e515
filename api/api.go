package api

import (
	"context"
	"net/http"

	"github.com/connect360/tagdrop/api/rest"
	"github.com/connect360/tagdrop/config"
	"github.com/connect360/tagdrop/mq"
	"github.com/connect360/tagdrop/ratelimit"
	"github.com/connect360/tagdrop/service"
	"github.com/connect360/tagdrop/store"
	"github.com/connect360/tagdrop/worker"
)

type TagdropAPI struct {
	restHandler *rest.Handler
	shutdownCtx context.Context
}

func NewTagdropAPI(
	tagdropStore store.TagdropStore,
	limiter ratelimit.Limiter,
	scanEventQueue mq.MessageQueue,
	cfg *config.Config,
	shutdownCtx context.Context,
) *TagdropAPI {
	expirySweeper := worker.NewExpirySweeper(tagdropStore, cfg.ExpiryInterval, cfg.ExpiryBatchSize)
	go expirySweeper.Run(shutdownCtx)

	tokens := service.NewDropTokenCodec(
		[]byte(cfg.DropTokenHashSecret),
		[]byte(cfg.DropTokenDeriveSecret),
	)

	svc := service.NewService(
		tagdropStore,
		limiter,
		scanEventQueue,
		tokens,
		cfg.JitterMin,
		cfg.JitterMax,
	)

	return &TagdropAPI{
		restHandler: rest.NewHandler(svc),
		shutdownCtx: shutdownCtx,
	}
}

func (tagdropAPI *TagdropAPI) RegisterRoutes(mux *http.ServeMux) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/drop-token", tagdropAPI.restHandler.HandleDropToken)
	mux.HandleFunc("/drop/{token}", tagdropAPI.restHandler.HandleDrop)
	mux.HandleFunc("/scan/{tagCode}", tagdropAPI.restHandler.HandleScan)
}
