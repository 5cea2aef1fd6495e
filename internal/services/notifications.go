package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
)

const notificationListLimit = 50

// Notifier records that actor did something the recipient should hear about.
// Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, actor *models.User, n models.Notification)
}

// NotificationService persists notifications and pushes them through the Hub.
type NotificationService struct {
	store NotificationStore
	users UserStore
	hub   *Hub
	log   *zap.Logger
}

func NewNotificationService(store NotificationStore, users UserStore, hub *Hub, log *zap.Logger) *NotificationService {
	return &NotificationService{store: store, users: users, hub: hub, log: log}
}

// NotificationList is the response of List.
type NotificationList struct {
	Notifications []models.NotificationView `json:"notifications"`
	Unread        int64                     `json:"unread"`
}

func (s *NotificationService) Notify(ctx context.Context, actor *models.User, n models.Notification) {
	if actor == nil || n.RecipientID == actor.ID {
		return
	}
	n.ID = primitive.NewObjectID()
	n.ActorID = actor.ID
	n.Read = false
	n.CreatedAt = time.Now().UTC()

	if err := s.store.Insert(ctx, &n); err != nil {
		s.log.Error("failed to record notification",
			zap.String("type", string(n.Type)),
			zap.String("recipient", n.RecipientID.Hex()),
			zap.Error(err))
		return
	}

	event := models.NotificationEvent{
		Type:         "notification",
		RecipientID:  n.RecipientID.Hex(),
		Notification: notificationView(n, actor.Summary()),
	}
	if err := s.hub.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish notification", zap.String("recipient", event.RecipientID), zap.Error(err))
	}
}

// List returns the newest notifications of recipient with actors resolved.
func (s *NotificationService) List(ctx context.Context, recipient primitive.ObjectID) (*NotificationList, error) {
	items, err := s.store.ListForRecipient(ctx, recipient, notificationListLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, recipient)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]primitive.ObjectID, 0, len(items))
	for _, n := range items {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := summariesByID(ctx, s.users, actorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, notificationView(n, actors.get(n.ActorID)))
	}
	return &NotificationList{Notifications: views, Unread: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, recipient primitive.ObjectID, idHex string) error {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return err
	}
	return s.store.MarkRead(ctx, id, recipient)
}

// Subscribe exposes the hub to the websocket handler.
func (s *NotificationService) Subscribe(userID primitive.ObjectID) (<-chan models.NotificationEvent, func()) {
	return s.hub.Subscribe(userID.Hex())
}

func notificationView(n models.Notification, actor models.UserSummary) models.NotificationView {
	return models.NotificationView{
		ID:          n.ID,
		Type:        n.Type,
		Actor:       actor,
		JournalID:   n.JournalID,
		CommentText: n.CommentText,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
}

// userSummaries resolves user ids to summaries; unknown ids map to a bare summary.
type userSummaries map[primitive.ObjectID]models.UserSummary

func (m userSummaries) get(id primitive.ObjectID) models.UserSummary {
	if s, ok := m[id]; ok {
		return s
	}
	return models.UserSummary{ID: id}
}

func summariesByID(ctx context.Context, users UserStore, ids []primitive.ObjectID) (userSummaries, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	out := make(userSummaries, len(found))
	for i := range found {
		out[found[i].ID] = found[i].Summary()
	}
	return out, nil
}
