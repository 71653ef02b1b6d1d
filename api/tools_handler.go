package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/services"
)

const maxBase64Input = 1 << 20

type toolsHandler struct {
	responder Responder
	logger    zerolog.Logger
}

func newToolsHandler(base handlerBase) toolsHandler {
	responder, logger := base.build("toolsHandler")
	return toolsHandler{
		responder: responder,
		logger:    logger,
	}
}

// base64 encodes or decodes text. Decoding accepts padded and unpadded input.
func (h toolsHandler) base64() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Base64Request
		if err := decodeJSON(r, &req, "base64"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		mode := strings.ToLower(strings.TrimSpace(req.Mode))
		if mode == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("mode"))
			return
		}
		if !oneOf(mode, "encode", "decode") {
			h.responder.WriteError(w, errs.NewOneOfError("mode", "encode", "decode"))
			return
		}
		if len(req.Input) > maxBase64Input {
			h.responder.WriteError(w, errs.NewInvalidFieldError("input", "must be at most 1 MiB"))
			return
		}

		if mode == "encode" {
			h.responder.WriteJSON(w, Base64Response{Mode: mode, Output: services.EncodeBase64(req.Input, req.URLSafe)})
			return
		}

		output, err := services.DecodeBase64(req.Input, req.URLSafe)
		if err != nil {
			reason := "is not valid base64"
			if errors.Is(err, services.ErrNotText) {
				reason = "does not decode to UTF-8 text"
			}
			h.responder.WriteError(w, errs.NewInvalidFieldError("input", reason))
			return
		}
		h.responder.WriteJSON(w, Base64Response{Mode: mode, Output: output})
	}
}
