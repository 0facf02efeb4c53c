package attestation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tradeflow/internal/commons"
	apperrors "tradeflow/internal/errors"
)

type SealCodec interface {
	Generate(payload map[string]any) (map[string]any, error)
	Verify(payload map[string]any) (Verification, error)
}

type VerifyRequest struct {
	VPLData map[string]any `json:"vplData"`
}

type VerifyResponse struct {
	Success bool `json:"success"`
	Verification
}

type Controller struct {
	codec  SealCodec
	logger *zap.Logger
}

func NewController(codec SealCodec, logger *zap.Logger) *Controller {
	return &Controller{
		codec:  codec,
		logger: logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/attestations/packing-list", c.Generate)
	r.Post("/attestations/packing-list/verify", c.Verify)
}

func (c *Controller) Generate(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	var payload map[string]any
	if err := decodeJSON(r, &payload); err != nil || payload == nil {
		logger.Warn("packing list is not a JSON object", zap.Error(err))
		commons.WriteError(w, traceID, notAnObject("body"), logger)
		return
	}

	sealed, err := c.codec.Generate(payload)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	sealed[WireSealField] = sealed[SealField]

	logger.Info("packing list sealed", zap.Any("refNumber", payload["refNumber"]))
	commons.WriteJSON(w, http.StatusOK, sealed, logger)
}

func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	var req VerifyRequest
	if err := decodeJSON(r, &req); err != nil || req.VPLData == nil {
		logger.Warn("vplData is not a JSON object", zap.Error(err))
		commons.WriteError(w, traceID, notAnObject("vplData"), logger)
		return
	}

	v, err := c.codec.Verify(req.VPLData)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	if v.IsValid {
		logger.Info("packing list seal verified", zap.Any("refNumber", req.VPLData["refNumber"]))
	} else {
		logger.Warn("packing list seal mismatch",
			zap.Any("refNumber", req.VPLData["refNumber"]),
			zap.String("providedSeal", v.ProvidedSeal),
		)
	}

	commons.WriteJSON(w, http.StatusOK, VerifyResponse{Success: true, Verification: v}, logger)
}

// decodeJSON keeps numbers as json.Number so that large integers reach the
// codec without float rounding.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

func notAnObject(field string) error {
	return apperrors.NewValidationError(field+" must be a JSON object", apperrors.ValidationDetail{
		Field:   field,
		Message: field + " must be a JSON object",
	})
}
