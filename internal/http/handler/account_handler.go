package handler

import (
	"errors"
	"net/http"

	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

type AccountHandler struct {
	accountSvc service.AccountServiceInterface
}

func NewAccountHandler(accountSvc service.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

type deleteUserRequest struct {
	UserID        string `json:"userId"`
	AdminPassword string `json:"adminPassword"`
}

// DeleteUser runs behind auth and the admin role check. Every outcome is
// audited, including rejections.
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "No authorization header")
		return
	}
	var body deleteUserRequest
	decodeLenient(r, &body)

	err := h.accountSvc.DeleteUser(r.Context(), actor, service.DeleteUserInput{
		TargetID:      body.UserID,
		AdminPassword: body.AdminPassword,
	})
	audit := observability.AuditInput{
		EventName:   "admin.user.deleted",
		ActorUserID: actor.ID,
		ActorEmail:  actor.Email,
		TargetType:  "user",
		TargetID:    body.UserID,
		Action:      "delete",
		Outcome:     "success",
	}
	if err != nil {
		audit.Outcome = "rejected"
		audit.Reason = err.Error()
		observability.EmitAudit(r, audit)
		h.writeDeleteError(w, r, err)
		return
	}
	observability.EmitAudit(r, audit)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *AccountHandler) writeDeleteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrRateLimited):
		writeRateLimited(w, r, err, "Too many attempts. Please try again later.")
	case errors.Is(err, service.ErrDeletionFieldsRequired):
		response.Error(w, r, http.StatusBadRequest, "User ID and admin password are required")
	case errors.Is(err, service.ErrInvalidAdminPassword):
		response.Error(w, r, http.StatusUnauthorized, "Invalid admin password")
	case errors.Is(err, service.ErrSelfDeletion):
		response.Error(w, r, http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, service.ErrAdminTarget):
		response.Error(w, r, http.StatusForbidden, "Cannot delete an administrator account")
	case errors.Is(err, service.ErrDeleteFailed):
		response.Error(w, r, http.StatusInternalServerError, "Failed to delete user")
	default:
		response.Error(w, r, http.StatusInternalServerError, genericErrorMessage)
	}
}
