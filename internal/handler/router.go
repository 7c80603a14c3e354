package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/finpsyche/advisor/backend/internal/handler/chat"
	"github.com/finpsyche/advisor/backend/internal/handler/profile"
	"github.com/finpsyche/advisor/backend/internal/handler/speech"
	"github.com/finpsyche/advisor/backend/internal/handler/stream"
	middlewarePkg "github.com/finpsyche/advisor/backend/internal/middleware"
	profileModel "github.com/finpsyche/advisor/backend/internal/model/profile"
	advisorService "github.com/finpsyche/advisor/backend/internal/service/advisor"
	chatService "github.com/finpsyche/advisor/backend/internal/service/chat"
	speechService "github.com/finpsyche/advisor/backend/internal/service/speech"
	"github.com/finpsyche/advisor/backend/pkg/utils"
)

// Services groups the collaborators the router exposes. History and Speech
// may be nil.
type Services struct {
	Advisor  *advisorService.Service
	History  chatService.Store
	Profiles profileModel.Store
	Speech   *speechService.Service
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	var speechSvc speech.SpeechService
	if svc.Speech != nil {
		speechSvc = svc.Speech
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, svc.Advisor.Status())
		})

		profile.New(svc.Profiles).RegisterRoutes(api)
		chat.New(svc.Advisor, svc.History).RegisterRoutes(api)
		stream.New(svc.Advisor).RegisterRoutes(api)
		speech.New(speechSvc, svc.Profiles).RegisterRoutes(api)
	})

	return r
}
