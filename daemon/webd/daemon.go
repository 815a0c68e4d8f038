// Package webd is the HTTP face of motiond. Movers post fixes at
// /populate, watchers poll /last or ride the /socat websocket.
package webd

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/motionlog/motiond/events"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
	"github.com/olahol/melody"
)

type WebDaemon struct {
	Config         *params.WebDaemonConfig
	logger         *slog.Logger
	melodyInstance *melody.Melody

	// feedPopulated carries raw HTTP pushes, not the stored data.
	feedPopulated *event.FeedOf[[]*fix.Fix]
}

func NewWebDaemon(config *params.WebDaemonConfig) *WebDaemon {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	return &WebDaemon{
		Config: config,

		logger:        slog.With("d", "web"),
		feedPopulated: &events.HTTPPopulateFeed,
	}
}

// Run starts the HTTP server and blocks on it,
// returning any server error.
func (s *WebDaemon) Run() error {
	router := s.NewRouter()
	http.Handle("/", router)
	s.logger.Info("Starting web daemon",
		"network", s.Config.Network, "address", s.Config.Address)
	listener, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	return http.Serve(listener, nil)
}

func (s *WebDaemon) NewRouter() *mux.Router {

	// Handle websocket.
	s.initMelody()
	http.HandleFunc("/socat", func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	// StrictSlash(false) because the populate route registers both
	// spellings below; a 301 would turn legacy POSTs into GETs.
	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	jsonMiddleware := contentTypeMiddlewareFunc("application/json")
	apiJSONRoutes.Use(jsonMiddleware)

	apiJSONRoutes.Path("/last").HandlerFunc(s.handleLastKnown).Methods(http.MethodGet)

	authenticatedAPIRoutes := apiJSONRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(s.tokenAuthenticationMiddleware)

	populateRoutes := authenticatedAPIRoutes.NewRoute().Subrouter()

	populateRoutes.Path("/populate/").HandlerFunc(s.handlePopulate).Methods(http.MethodPost)
	populateRoutes.Path("/populate").HandlerFunc(s.handlePopulate).Methods(http.MethodPost)

	return router
}
