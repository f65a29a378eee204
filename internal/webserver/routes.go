package webserver

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/roboyoz/hotline/internal/assets"
	"github.com/roboyoz/hotline/internal/hotline"
	"github.com/roboyoz/hotline/internal/response"
	"github.com/roboyoz/hotline/internal/twilio"
	"github.com/roboyoz/hotline/internal/webapi"
)

// routes builds the full handler tree, gzip-wrapped.
func routes(cfg Config) (http.Handler, error) {
	mux := http.NewServeMux()

	webapi.RegisterRoutes(mux, cfg.Store, cfg.Tokens, cfg.AllowedOrigins...)

	catalog := cfg.Machine.Catalog()
	if catalog == nil {
		return nil, fmt.Errorf("webserver: machine has no message catalog")
	}

	var voice http.Handler = &hotline.Handler{
		Machine:  cfg.Machine,
		Store:    cfg.Store,
		Notifier: cfg.Notifier,
		Lookup:   cfg.Lookup,
		NewResponder: func() hotline.Renderer {
			return response.NewVoice(catalog, cfg.Voice)
		},
		Transport: "voice",
		Logger:    cfg.Logger,
	}
	if cfg.SignatureToken != "" {
		voice = twilio.RequireSignature(cfg.SignatureToken, cfg.PublicURL, cfg.Logger)(voice)
	}
	mux.Handle("POST /voice", voice)
	mux.Handle("POST /voice/{state...}", voice)

	web := webapi.CORSMiddleware(&hotline.Handler{
		Machine:  cfg.Machine,
		Store:    cfg.Store,
		Notifier: cfg.Notifier,
		Lookup:   cfg.Lookup,
		NewResponder: func() hotline.Renderer {
			return response.NewWeb(catalog)
		},
		Transport: "web",
		Logger:    cfg.Logger,
	}, cfg.AllowedOrigins...)
	for _, pattern := range []string{"/web", "/web/{state...}"} {
		mux.Handle("POST "+pattern, web)
		mux.Handle("OPTIONS "+pattern, web)
	}

	if cfg.Assets != nil {
		mux.Handle("GET /asset/{object...}", &assets.Handler{Store: cfg.Assets})
	}

	return gzhttp.GzipHandler(mux), nil
}
