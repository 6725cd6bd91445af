package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/roomiesapp/roomies/internal/auth"
	"github.com/roomiesapp/roomies/internal/email"
	"github.com/roomiesapp/roomies/internal/middleware"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

const maxCodeAttempts = 5

type AuthHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	magicLinks *store.MagicLinkStore
	gamify     *store.GamifyStore
	email      *email.Client
	logger     *slog.Logger
}

func NewAuthHandler(us *store.UserStore, hs *store.HouseholdStore, ss *store.SessionStore, ms *store.MagicLinkStore, gs *store.GamifyStore, ec *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      us,
		households: hs,
		sessions:   ss,
		magicLinks: ms,
		gamify:     gs,
		email:      ec,
		logger:     logger.With("component", "auth"),
	}
}

type registerRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	HouseholdName string `json:"household_name"`
}

// Register handles POST /api/auth/register: creates a household plus its
// first admin and emails a verification code. Responses are identical
// whether or not the email is already registered.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.HouseholdName = strings.TrimSpace(req.HouseholdName)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Name == "" || req.HouseholdName == "" {
		writeError(w, http.StatusBadRequest, "name and household_name are required")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		// Don't reveal the account exists
		writeJSON(w, http.StatusOK, map[string]string{"status": "code_sent"})
		return
	}

	household, err := h.households.Create(req.HouseholdName)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	user, err := h.users.Create(req.Email, req.Name)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if _, err := h.households.AddMember(household.ID, user.ID, model.RoleAdmin); err != nil {
		h.logger.Error("add member", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	ml, err := h.magicLinks.Create(req.Email, "register", &household.ID)
	if err != nil {
		h.logger.Error("create code", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if err := h.email.SendLoginCode(req.Email, ml.Code, "register", req.HouseholdName); err != nil {
		h.logger.Error("send code", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "code_sent"})
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login handles POST /api/auth/login: emails a sign-in code. The response is
// the same whether or not the account exists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user != nil {
		ml, err := h.magicLinks.Create(req.Email, "login", nil)
		if err != nil {
			h.logger.Error("create code", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}
		if err := h.email.SendLoginCode(req.Email, ml.Code, "login", ""); err != nil {
			h.logger.Error("send code", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "code_sent"})
}

// validateCode checks the code for the given email, tracking failed attempts.
// Returns the magic link on success, or a client-facing message on failure.
func (h *AuthHandler) validateCode(emailAddr, code string) (*model.MagicLink, string) {
	if emailAddr == "" || code == "" {
		return nil, "email and code are required"
	}

	latest, err := h.magicLinks.GetLatestByEmail(emailAddr)
	if err != nil {
		h.logger.Error("validate code lookup", "error", err)
		return nil, "verification failed"
	}
	if latest == nil {
		return nil, "code has expired or already been used"
	}

	if latest.Attempts >= maxCodeAttempts {
		h.magicLinks.MarkUsed(latest.ID)
		return nil, "too many incorrect attempts, request a new code"
	}

	if latest.Code != code {
		newAttempts, err := h.magicLinks.IncrementAttempts(latest.ID)
		if err != nil {
			h.logger.Error("increment attempts", "error", err)
		}
		if newAttempts >= maxCodeAttempts {
			h.magicLinks.MarkUsed(latest.ID)
			return nil, "too many incorrect attempts, request a new code"
		}
		return nil, "incorrect code"
	}

	if err := h.magicLinks.MarkUsed(latest.ID); err != nil {
		h.logger.Error("mark used", "error", err)
		return nil, "verification failed"
	}

	return latest, ""
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	User      *model.User      `json:"user"`
	Household *model.Household `json:"household"`
}

// Verify handles POST /api/auth/verify: exchanges a valid code for a session
// cookie. Invite codes also add the user to the inviting household.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)

	ml, errMsg := h.validateCode(req.Email, req.Code)
	if errMsg != "" {
		writeError(w, http.StatusUnauthorized, errMsg)
		return
	}

	user, err := h.users.GetByEmail(ml.Email)
	if err != nil {
		h.logger.Error("verify user lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}
	if user == nil && ml.Purpose == "invite" {
		// Invited address with no account yet: the invite email is the
		// identity proof, so create the account now.
		user, err = h.users.Create(ml.Email, "")
		if err != nil {
			h.logger.Error("create invited user", "error", err)
			writeError(w, http.StatusInternalServerError, "verification failed")
			return
		}
	}
	if user == nil {
		writeError(w, http.StatusBadRequest, "account not found")
		return
	}

	if ml.Purpose == "invite" && ml.HouseholdID != nil {
		if err := h.joinHousehold(*ml.HouseholdID, user.ID); err != nil {
			h.logger.Error("join household", "error", err)
			writeError(w, http.StatusInternalServerError, "verification failed")
			return
		}
	}

	households, err := h.households.ListForUser(user.ID)
	if err != nil || len(households) == 0 {
		h.logger.Error("verify households", "error", err)
		writeError(w, http.StatusBadRequest, "no household found")
		return
	}

	householdID := households[0].ID
	if ml.HouseholdID != nil {
		householdID = *ml.HouseholdID
	}

	sess, err := h.sessions.Create(user.ID, householdID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	h.setSessionCookie(w, r, sess.Token)

	household, err := h.households.GetByID(householdID)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{User: user, Household: household})
}

// joinHousehold adds the user as a member and records the join activity.
func (h *AuthHandler) joinHousehold(householdID, userID int64) error {
	member, err := h.households.GetMember(householdID, userID)
	if err != nil {
		return err
	}
	if member != nil {
		return nil
	}
	if _, err := h.households.AddMember(householdID, userID, model.RoleMember); err != nil {
		return err
	}
	return h.gamify.RecordMemberJoined(householdID, userID)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ListHouseholds handles GET /api/auth/households.
func (h *AuthHandler) ListHouseholds(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	households, err := h.households.ListForUser(userID)
	if err != nil {
		h.logger.Error("list households", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list households")
		return
	}
	if households == nil {
		households = []model.Household{}
	}
	writeJSON(w, http.StatusOK, households)
}

type switchRequest struct {
	HouseholdID int64 `json:"household_id"`
}

// SwitchHousehold handles POST /api/auth/switch: repoints the session at
// another household the user belongs to.
func (h *AuthHandler) SwitchHousehold(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	member, err := h.households.GetMember(req.HouseholdID, ac.UserID)
	if err != nil {
		h.logger.Error("check membership", "error", err)
		writeError(w, http.StatusInternalServerError, "switch failed")
		return
	}
	if member == nil {
		writeError(w, http.StatusForbidden, "not a member of that household")
		return
	}

	if err := h.sessions.SwitchHousehold(ac.SessionID, req.HouseholdID); err != nil {
		h.logger.Error("switch session", "error", err)
		writeError(w, http.StatusInternalServerError, "switch failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Invite handles POST /api/households/invite (admin): emails a join code for
// the current household.
func (h *AuthHandler) Invite(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	household, err := h.households.GetByID(householdID)
	if err != nil || household == nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "invite failed")
		return
	}

	ml, err := h.magicLinks.Create(req.Email, "invite", &householdID)
	if err != nil {
		h.logger.Error("create invite code", "error", err)
		writeError(w, http.StatusInternalServerError, "invite failed")
		return
	}
	if err := h.email.SendLoginCode(req.Email, ml.Code, "invite", household.Name); err != nil {
		h.logger.Error("send invite", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "invite_sent"})
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

// Join handles POST /api/households/join: an authenticated user joins
// another household by its shareable invite code.
func (h *AuthHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.InviteCode = strings.TrimSpace(req.InviteCode)
	if req.InviteCode == "" {
		writeError(w, http.StatusBadRequest, "invite_code is required")
		return
	}

	household, err := h.households.GetByInviteCode(req.InviteCode)
	if err != nil {
		h.logger.Error("lookup invite code", "error", err)
		writeError(w, http.StatusInternalServerError, "join failed")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "invalid invite code")
		return
	}

	if err := h.joinHousehold(household.ID, userID); err != nil {
		h.logger.Error("join household", "error", err)
		writeError(w, http.StatusInternalServerError, "join failed")
		return
	}

	writeJSON(w, http.StatusOK, household)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
