package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/invitelinks/internal/invites/service"
	"github.com/aussiebroadwan/invitelinks/pkg/httpx"
	"github.com/aussiebroadwan/invitelinks/pkg/linksdk"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"
)

type WelcomeHandler struct {
	WelcomeService *service.WelcomeService
}

// HandleResolve godoc
//
//	@Summary		Resolve Invitation Code
//	@Description	Returns who sent the invitation and who it is for. Public endpoint used by the welcome page
//	@Tags			Welcome
//	@Produce		json
//	@Param			code	query		string					true	"Code from the shareable URL"
//	@Success		200		{object}	linksdk.WelcomeResponse	"inviter_name, invitee_name, expires_at"
//	@Failure		400		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Router			/v1/welcome [get].
func (h *WelcomeHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	welcome, err := h.WelcomeService.Resolve(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeWelcomeError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, linksdk.WelcomeResponse{
		InviterName: welcome.InviterName,
		InviteeName: welcome.InviteeName,
		ExpiresAt:   welcome.ExpiresAt,
	})
}

// HandleRedeem godoc
//
//	@Summary		Redeem Invitation Code
//	@Description	Marks the link behind a code as used by a newly registered member
//	@Tags			Welcome
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		linksdk.RedeemRequest	true	"code, user_id"
//	@Success		200		{object}	linksdk.RedeemResponse	"link_id, inviter_id, inviter_name, invitee_name"
//	@Failure		400		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	linksdk.ErrorResponse	"error, error_description"
//	@Router			/v1/welcome/redeem [post].
func (h *WelcomeHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req linksdk.RedeemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		slogx.FromContext(ctx).Debug("invalid redeem body", "error", err)
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Invalid request body")
		return
	}

	welcome, err := h.WelcomeService.Redeem(ctx, req.Code, req.UserID)
	if err != nil {
		writeWelcomeError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, linksdk.RedeemResponse{
		LinkID:      welcome.LinkID,
		InviterID:   welcome.InviterID,
		InviterName: welcome.InviterName,
		InviteeName: welcome.InviteeName,
	})
}

func writeWelcomeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrInvalidRedeemRequest):
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrLinkNotFound):
		httpx.WriteError(w, http.StatusNotFound, linksdk.ErrorCodeNotFound, "Invitation link not found")
	case errors.Is(err, service.ErrLinkExpired):
		httpx.WriteError(w, http.StatusGone, linksdk.ErrorCodeLinkExpired, "Invitation link has expired")
	case errors.Is(err, service.ErrLinkAlreadyUsed):
		httpx.WriteError(w, http.StatusConflict, linksdk.ErrorCodeLinkAlreadyUsed, "Invitation link has already been used")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to process invitation code")
	}
}
