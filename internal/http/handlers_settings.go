package http

import (
	"net/http"

	"costmanager/internal/core"
	"costmanager/internal/log"
)

const msgSettingsFailed = "Failed to save settings. Please try again."

type exchangeURLView struct {
	ExchangeURL string `json:"exchangeUrl"`
	Default     string `json:"defaultExchangeUrl"`
}

func (s *Server) handleGetExchangeURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	url, err := s.settings.ExchangeURL(ctx)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Failed to read exchange URL", err, log.OpFetch, nil)
		InternalServerError("Failed to load settings. Please try again.").Write(w)
		return
	}
	NewJSONResponse().Body(exchangeURLView{ExchangeURL: url, Default: s.settings.DefaultURL()}).Write(w)
}

func (s *Server) handleSetExchangeURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	url := p.Get("exchangeUrl")
	if err := core.ValidateExchangeURL(url); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if err := s.settings.SetExchangeURL(ctx, url); err != nil {
		log.FromContext(ctx).LogError(ctx, "Failed to save exchange URL", err, log.OpUpdate, nil)
		InternalServerError(msgSettingsFailed).Write(w)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Exchange URL updated", log.FieldURL, url)
	NewJSONResponse().Body(exchangeURLView{ExchangeURL: url, Default: s.settings.DefaultURL()}).Write(w)
}

// handleResetExchangeURL stores the default endpoint again.
func (s *Server) handleResetExchangeURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	url, err := s.settings.ResetExchangeURL(ctx)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Failed to reset exchange URL", err, log.OpUpdate, nil)
		InternalServerError(msgSettingsFailed).Write(w)
		return
	}
	NewJSONResponse().Body(exchangeURLView{ExchangeURL: url, Default: url}).Write(w)
}
