package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/invitelinks/internal/invites/domain"
	"github.com/aussiebroadwan/invitelinks/internal/invites/service"
	"github.com/aussiebroadwan/invitelinks/pkg/httpx"
	"github.com/aussiebroadwan/invitelinks/pkg/linksdk"
	"github.com/aussiebroadwan/invitelinks/pkg/policy"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"
)

type LinksHandler struct {
	LinkService *service.LinkService
}

// HandleList godoc
//
//	@Summary		List Invitation Links
//	@Description	Returns the caller's invitation links, newest first, with the remaining quota
//	@Tags			Invitation Links
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	linksdk.ListLinksResponse	"links, remaining, max_links"
//	@Failure		401	{object}	linksdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	linksdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	linksdk.ErrorResponse		"error, error_description"
//	@Router			/v1/invitation-links [get].
func (h *LinksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	links, err := h.LinkService.ListLinks(ctx, userID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to list invitation links")
		return
	}

	resp := linksdk.ListLinksResponse{
		Links:     make([]linksdk.Link, 0, len(links)),
		Remaining: policy.Remaining(len(links)),
		MaxLinks:  policy.MaxLinks,
	}
	for _, l := range links {
		resp.Links = append(resp.Links, toLinkResponse(l))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate godoc
//
//	@Summary		Create Invitation Link
//	@Description	Creates a link for the named invitee. Fails with quota_exceeded when the caller already holds the maximum number of links
//	@Tags			Invitation Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		linksdk.CreateLinkRequest	true	"Invitee name"
//	@Success		201		{object}	linksdk.Link				"created link"
//	@Failure		400		{object}	linksdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	linksdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	linksdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	linksdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	linksdk.ErrorResponse		"error, error_description"
//	@Router			/v1/invitation-links [post].
func (h *LinksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req linksdk.CreateLinkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid create link body", "error", err)
		httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Invalid request body")
		return
	}

	claims, _ := httpx.ClaimsFromContext(ctx)
	inviter := service.Inviter{ID: claims.Subject, Name: claims.DisplayName()}

	link, err := h.LinkService.CreateLink(ctx, inviter, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteeName):
			httpx.WriteError(w, http.StatusBadRequest, linksdk.ErrorCodeInvalidRequest, "Name must be 1 to 255 characters")
		case errors.Is(err, service.ErrQuotaExceeded):
			httpx.WriteError(w, http.StatusConflict, linksdk.ErrorCodeQuotaExceeded, "You already have the maximum number of invitation links")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to create invitation link")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toLinkResponse(link))
}

// HandleDelete godoc
//
//	@Summary		Revoke Invitation Link
//	@Description	Deletes one of the caller's invitation links
//	@Tags			Invitation Links
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Link ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	linksdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	linksdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invitation-links/{id} [delete].
func (h *LinksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	err := h.LinkService.DeleteLink(ctx, userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			httpx.WriteError(w, http.StatusNotFound, linksdk.ErrorCodeNotFound, "Invitation link not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, linksdk.ErrorCodeServerError, "Failed to revoke invitation link")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toLinkResponse(l domain.Link) linksdk.Link {
	return linksdk.Link{
		ID:          l.ID,
		InviteeName: l.InviteeName,
		InviterName: l.InviterName,
		URL:         l.URL,
		CreatedAt:   l.CreatedAt,
		RedeemedAt:  l.RedeemedAt,
	}
}
