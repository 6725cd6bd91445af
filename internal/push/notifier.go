package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

// Notifier fans gamification events out to a household's push subscriptions,
// honoring each member's per-type preferences. Sends run in the calling
// goroutine; callers that must not block should invoke it with `go`.
type Notifier struct {
	service *Service
	push    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, pushStore *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service: service,
		push:    pushStore,
		logger:  logger.With("component", "push"),
	}
}

// BadgeEarned notifies the earner's own devices about a new badge.
func (n *Notifier) BadgeEarned(ctx context.Context, householdID, userID int64, badge model.Badge) {
	payload := Payload{
		Title: "Badge earned!",
		Body:  fmt.Sprintf("You earned %s: %s", badge.Name, badge.Description),
		URL:   "/badges",
		Tag:   fmt.Sprintf("badge-%d", badge.ID),
	}
	n.sendToUser(ctx, householdID, userID, model.NotifTypeBadgeEarned, payload)
}

// ChallengeCompleted notifies the whole household that a member finished a
// challenge, skipping the member's own devices.
func (n *Notifier) ChallengeCompleted(ctx context.Context, householdID, actorID int64, actorName string, challenge model.Challenge) {
	payload := Payload{
		Title: "Challenge completed",
		Body:  fmt.Sprintf("%s completed %s", actorName, challenge.Title),
		URL:   "/challenges",
		Tag:   fmt.Sprintf("challenge-%d", challenge.ID),
	}
	n.sendToHousehold(ctx, householdID, actorID, model.NotifTypeChallengeCompleted, payload)
}

// RewardRedeemed tells the rest of the household a reward was claimed.
func (n *Notifier) RewardRedeemed(ctx context.Context, householdID, actorID int64, actorName string, reward model.Reward) {
	payload := Payload{
		Title: "Reward redeemed",
		Body:  fmt.Sprintf("%s redeemed %s for %d points", actorName, reward.Title, reward.Cost),
		URL:   "/rewards",
		Tag:   fmt.Sprintf("reward-%d", reward.ID),
	}
	n.sendToHousehold(ctx, householdID, actorID, model.NotifTypeRewardRedeemed, payload)
}

// TaskAssigned notifies the assignee's devices about a new assignment.
func (n *Notifier) TaskAssigned(ctx context.Context, householdID, assigneeID int64, task model.Task) {
	payload := Payload{
		Title: "Task assigned",
		Body:  fmt.Sprintf("%s is now yours (%d points)", task.Title, task.Points),
		URL:   "/tasks",
		Tag:   fmt.Sprintf("task-%d", task.ID),
	}
	n.sendToUser(ctx, householdID, assigneeID, model.NotifTypeTaskAssigned, payload)
}

func (n *Notifier) sendToUser(ctx context.Context, householdID, userID int64, notifType string, payload Payload) {
	subs, err := n.push.ListForUser(userID, householdID)
	if err != nil {
		n.logger.Error("list user subscriptions", "error", err)
		return
	}
	n.deliver(ctx, subs, householdID, notifType, payload, 0)
}

func (n *Notifier) sendToHousehold(ctx context.Context, householdID, excludeUserID int64, notifType string, payload Payload) {
	subs, err := n.push.ListForHousehold(householdID)
	if err != nil {
		n.logger.Error("list household subscriptions", "error", err)
		return
	}
	n.deliver(ctx, subs, householdID, notifType, payload, excludeUserID)
}

func (n *Notifier) deliver(ctx context.Context, subs []model.PushSubscription, householdID int64, notifType string, payload Payload, excludeUserID int64) {
	for i := range subs {
		sub := &subs[i]
		if excludeUserID != 0 && sub.UserID == excludeUserID {
			continue
		}
		enabled, err := n.push.GetPreference(sub.UserID, householdID, notifType)
		if err != nil || !enabled {
			continue
		}

		if err := n.service.Send(ctx, sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				n.push.DeleteByEndpoint(sub.Endpoint)
				continue
			}
			n.logger.Warn("send notification", "type", notifType, "error", err)
		}
	}
}
