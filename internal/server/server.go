package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/roomiesapp/roomies/internal/backup"
	"github.com/roomiesapp/roomies/internal/email"
	"github.com/roomiesapp/roomies/internal/handler"
	"github.com/roomiesapp/roomies/internal/middleware"
	"github.com/roomiesapp/roomies/internal/push"
	"github.com/roomiesapp/roomies/internal/store"
	ws "github.com/roomiesapp/roomies/internal/websocket"
)

// Config carries the externally supplied pieces the server wires together.
type Config struct {
	EmailClient     *email.Client
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Backup          backup.Config
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	memberH        *handler.MemberHandler
	householdH     *handler.HouseholdHandler
	taskH          *handler.TaskHandler
	rewardH        *handler.RewardHandler
	badgeH         *handler.BadgeHandler
	challengeH     *handler.ChallengeHandler
	activityH      *handler.ActivityHandler
	pushH          *handler.PushHandler
	backupH        *handler.BackupHandler
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	backupManager  *backup.Manager
	pushScheduler  *push.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	badgeStore := store.NewBadgeStore(db)
	challengeStore := store.NewChallengeStore(db)
	activityStore := store.NewActivityStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)
	gamifyStore := store.NewGamifyStore(db)

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"), nil)

	// Push delivery is optional; without VAPID keys the handlers stay up but
	// nothing is sent.
	var pushSvc *push.Service
	var notifier *push.Notifier
	var pushSched *push.Scheduler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		notifier = push.NewNotifier(pushSvc, pushStore, logger)
		pushSched = push.NewScheduler(pushSvc, pushStore, taskStore, logger.With("component", "push"))
	}

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, householdStore, sessionStore, magicLinkStore, gamifyStore, cfg.EmailClient, logger),
		memberH:        handler.NewMemberHandler(userStore, householdStore, gamifyStore, hub, logger),
		householdH:     handler.NewHouseholdHandler(householdStore, settingsStore, hub, logger),
		taskH:          handler.NewTaskHandler(taskStore, userStore, gamifyStore, hub, notifier, logger),
		rewardH:        handler.NewRewardHandler(rewardStore, userStore, gamifyStore, hub, notifier, logger),
		badgeH:         handler.NewBadgeHandler(badgeStore, gamifyStore, hub, logger),
		challengeH:     handler.NewChallengeHandler(challengeStore, gamifyStore, hub, logger),
		activityH:      handler.NewActivityHandler(activityStore, logger),
		pushH:          handler.NewPushHandler(pushStore, cfg.VAPIDPublicKey, logger),
		backupH:        handler.NewBackupHandler(backupMgr, backupStore, logger),
		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(),
		backupManager:  backupMgr,
		pushScheduler:  pushSched,
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the daily reminder scheduler; nil when push is not
// configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/verify", s.rateLimitedHandler(s.authH.Verify))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.householdStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	admin := middleware.RequireAdmin

	// Session routes
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/households", s.authH.ListHouseholds)
	mux.HandleFunc("POST /api/auth/switch", s.authH.SwitchHousehold)

	// Current household
	mux.HandleFunc("GET /api/household", s.householdH.Get)
	mux.Handle("PUT /api/household", admin(http.HandlerFunc(s.householdH.Update)))
	mux.Handle("POST /api/household/invite-code", admin(http.HandlerFunc(s.householdH.RotateInviteCode)))
	mux.Handle("POST /api/households/invite", admin(http.HandlerFunc(s.authH.Invite)))
	mux.HandleFunc("POST /api/households/join", s.authH.Join)

	// Household settings
	mux.HandleFunc("GET /api/household/settings", s.householdH.Settings)
	mux.Handle("PUT /api/household/settings", admin(http.HandlerFunc(s.householdH.SetSetting)))
	mux.Handle("DELETE /api/household/settings/{key}", admin(http.HandlerFunc(s.householdH.DeleteSetting)))

	// Members and profile
	mux.HandleFunc("GET /api/me", s.memberH.Me)
	mux.HandleFunc("PUT /api/profile", s.memberH.UpdateProfile)
	mux.HandleFunc("POST /api/profile/pin", s.memberH.SetPIN)
	mux.HandleFunc("POST /api/profile/pin/verify", s.memberH.VerifyPIN)
	mux.HandleFunc("DELETE /api/profile/pin", s.memberH.ClearPIN)
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("GET /api/leaderboard", s.memberH.Leaderboard)
	mux.Handle("POST /api/members/{id}/points", admin(http.HandlerFunc(s.memberH.AdjustPoints)))
	mux.Handle("DELETE /api/members/{id}", admin(http.HandlerFunc(s.memberH.Remove)))

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.Handle("POST /api/tasks", admin(http.HandlerFunc(s.taskH.Create)))
	mux.Handle("PUT /api/tasks/{id}", admin(http.HandlerFunc(s.taskH.Update)))
	mux.Handle("DELETE /api/tasks/{id}", admin(http.HandlerFunc(s.taskH.Delete)))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("GET /api/tasks/{id}/completions", s.taskH.Completions)
	mux.HandleFunc("DELETE /api/completions/{id}", s.taskH.Uncomplete)

	// Rewards
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("GET /api/rewards/{id}", s.rewardH.Get)
	mux.Handle("POST /api/rewards", admin(http.HandlerFunc(s.rewardH.Create)))
	mux.Handle("PUT /api/rewards/{id}", admin(http.HandlerFunc(s.rewardH.Update)))
	mux.Handle("PUT /api/rewards/{id}/quantity", admin(http.HandlerFunc(s.rewardH.UpdateQuantity)))
	mux.Handle("PUT /api/rewards/{id}/expiration", admin(http.HandlerFunc(s.rewardH.UpdateExpiration)))
	mux.Handle("PUT /api/rewards/{id}/available", admin(http.HandlerFunc(s.rewardH.SetAvailable)))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("GET /api/redemptions", s.rewardH.MyRedemptions)
	mux.Handle("GET /api/rewards/{id}/redemptions", admin(http.HandlerFunc(s.rewardH.Redemptions)))

	// Badges
	mux.HandleFunc("GET /api/badges", s.badgeH.List)
	mux.HandleFunc("GET /api/badges/earned", s.badgeH.Earned)
	mux.Handle("GET /api/badges/all", admin(http.HandlerFunc(s.badgeH.ListAll)))
	mux.Handle("POST /api/badges", admin(http.HandlerFunc(s.badgeH.Create)))
	mux.Handle("PUT /api/badges/{id}", admin(http.HandlerFunc(s.badgeH.Update)))
	mux.Handle("PUT /api/badges/{id}/active", admin(http.HandlerFunc(s.badgeH.SetActive)))

	// Challenges
	mux.HandleFunc("GET /api/challenges", s.challengeH.List)
	mux.HandleFunc("GET /api/challenges/{id}", s.challengeH.Get)
	mux.Handle("POST /api/challenges", admin(http.HandlerFunc(s.challengeH.Create)))
	mux.Handle("PUT /api/challenges/{id}", admin(http.HandlerFunc(s.challengeH.Update)))
	mux.Handle("DELETE /api/challenges/{id}", admin(http.HandlerFunc(s.challengeH.Delete)))
	mux.HandleFunc("POST /api/challenges/{id}/join", s.challengeH.Join)
	mux.HandleFunc("POST /api/challenges/{id}/leave", s.challengeH.Leave)
	mux.HandleFunc("GET /api/challenges/{id}/participants", s.challengeH.Participants)

	// Activity feed
	mux.HandleFunc("GET /api/activities", s.activityH.List)
	mux.HandleFunc("GET /api/activities/mine", s.activityH.Mine)

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscriptions", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.Subscriptions)
	mux.HandleFunc("GET /api/push/preferences", s.pushH.Preferences)
	mux.HandleFunc("PUT /api/push/preferences", s.pushH.SetPreference)

	// Backups (server-wide, admin only)
	mux.Handle("GET /api/backups", admin(http.HandlerFunc(s.backupH.List)))
	mux.Handle("GET /api/backups/status", admin(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backups", admin(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("GET /api/backups/{id}/download", admin(http.HandlerFunc(s.backupH.Download)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
