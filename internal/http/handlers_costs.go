package http

import (
	"errors"
	"net/http"

	"costmanager/internal/core"
	"costmanager/internal/log"
)

const (
	msgAddFailed  = "Failed to add cost item. Please try again."
	msgListFailed = "Failed to load cost items. Please try again."
)

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidCurrency,
	core.ErrEmptyCategory,
	core.ErrEmptyDescription,
	core.ErrFieldTooLong,
}

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqLog := log.FromContext(ctx)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	n, err := ParseNewCost(p)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	c, err := s.costs.AddCost(ctx, n)
	if err != nil {
		if isValidation(err) {
			reqLog.WarnContext(ctx, "Rejected cost", log.FieldError, err.Error())
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		reqLog.LogError(ctx, "Failed to add cost", err, log.OpCreate, nil)
		InternalServerError(msgAddFailed).Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Body(c).Write(w)
}

func (s *Server) handleListCosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	costs, err := s.costs.ListCosts(ctx)
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Failed to list costs", err, log.OpList, nil)
		InternalServerError(msgListFailed).Write(w)
		return
	}
	if costs == nil {
		costs = []core.Cost{}
	}
	NewJSONResponse().Body(costs).Write(w)
}

// isValidation reports whether err is an input problem rather than a
// storage failure.
func isValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
