// Package testutil provides in-memory implementations of the service stores
// for unit and handler tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/services"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

var (
	_ services.UserStore         = (*UserStore)(nil)
	_ services.JournalStore      = (*JournalStore)(nil)
	_ services.NotificationStore = (*NotificationStore)(nil)
	_ services.MediaStore        = (*MediaStore)(nil)
)

// UserStore is an in-memory services.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return &utils.ConflictError{Message: "User already exists"}
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "user"}
	}
	return cloneUser(u), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = utils.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, &utils.NotFoundError{Resource: "user"}
}

func (s *UserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, upd services.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "user"}
	}
	if upd.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *upd.Email {
				return nil, &utils.ConflictError{Message: "Email already in use"}
			}
		}
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Location != nil {
		u.Location = *upd.Location
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (s *UserStore) SetProfilePhoto(_ context.Context, id primitive.ObjectID, url, key string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "user"}
	}
	u.ProfilePhoto = url
	u.ProfileImage = url
	u.ProfilePhotoPath = key
	return cloneUser(u), nil
}

func (s *UserStore) Follow(_ context.Context, follower, target primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.users[follower]
	if !ok {
		return &utils.NotFoundError{Resource: "user"}
	}
	t, ok := s.users[target]
	if !ok {
		return &utils.NotFoundError{Resource: "user"}
	}
	if containsID(f.Following, target) {
		return &utils.ConflictError{Message: "Already following this user"}
	}
	f.Following = append(f.Following, target)
	if !containsID(t.Followers, follower) {
		t.Followers = append(t.Followers, follower)
	}
	return nil
}

func (s *UserStore) Unfollow(_ context.Context, follower, target primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.users[follower]; ok {
		f.Following = removeID(f.Following, target)
	}
	if t, ok := s.users[target]; ok {
		t.Followers = removeID(t.Followers, follower)
	}
	return nil
}

// JournalStore is an in-memory services.JournalStore.
type JournalStore struct {
	mu       sync.Mutex
	journals map[primitive.ObjectID]*models.Journal
}

func NewJournalStore() *JournalStore {
	return &JournalStore{journals: make(map[primitive.ObjectID]*models.Journal)}
}

func (s *JournalStore) Insert(_ context.Context, j *models.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	s.journals[j.ID] = cloneJournal(j)
	return nil
}

func (s *JournalStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	return cloneJournal(j), nil
}

func (s *JournalStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	return s.list(func(j *models.Journal) bool { return j.UserID == userID }, 0), nil
}

func (s *JournalStore) ListPublic(_ context.Context, limit int64) ([]models.Journal, error) {
	return s.list(func(j *models.Journal) bool { return j.IsPublic }, limit), nil
}

func (s *JournalStore) list(match func(*models.Journal) bool, limit int64) []models.Journal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Journal{}
	for _, j := range s.journals {
		if match(j) {
			out = append(out, *cloneJournal(j))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (s *JournalStore) UpdateOwned(_ context.Context, id, owner primitive.ObjectID, upd services.JournalUpdate) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok || j.UserID != owner {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	if upd.Title != nil {
		j.Title = *upd.Title
	}
	if upd.Location != nil {
		j.Location = *upd.Location
	}
	if upd.Entry != nil {
		j.Entry = *upd.Entry
	}
	if upd.Tags != nil {
		j.Tags = append([]string{}, (*upd.Tags)...)
	}
	if upd.FriendsMentioned != nil {
		j.FriendsMentioned = append([]string{}, (*upd.FriendsMentioned)...)
	}
	if upd.Rating != nil {
		r := *upd.Rating
		j.Rating = &r
	}
	if upd.IsPublic != nil {
		j.IsPublic = *upd.IsPublic
	}
	j.UpdatedAt = time.Now().UTC()
	return cloneJournal(j), nil
}

func (s *JournalStore) DeleteOwned(_ context.Context, id, owner primitive.ObjectID) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok || j.UserID != owner {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	delete(s.journals, id)
	return j, nil
}

func (s *JournalStore) ToggleLike(_ context.Context, id, viewer primitive.ObjectID) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok || (!j.IsPublic && j.UserID != viewer) {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	if containsID(j.Likes, viewer) {
		j.Likes = removeID(j.Likes, viewer)
	} else {
		j.Likes = append(j.Likes, viewer)
	}
	return cloneJournal(j), nil
}

func (s *JournalStore) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[id]
	if !ok || (!j.IsPublic && j.UserID != c.UserID) {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	j.Comments = append([]models.Comment{c}, j.Comments...)
	return cloneJournal(j), nil
}

func (s *JournalStore) CountByUsers(_ context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[primitive.ObjectID]int64)
	for _, j := range s.journals {
		if containsID(userIDs, j.UserID) {
			counts[j.UserID]++
		}
	}
	return counts, nil
}

// Len returns the number of stored journals.
func (s *JournalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.journals)
}

// NotificationStore is an in-memory services.NotificationStore.
type NotificationStore struct {
	mu    sync.Mutex
	items []models.Notification
}

func NewNotificationStore() *NotificationStore { return &NotificationStore{} }

func (s *NotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.items = append(s.items, *n)
	return nil
}

func (s *NotificationStore) ListForRecipient(_ context.Context, recipient primitive.ObjectID, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].RecipientID == recipient {
			out = append(out, s.items[i])
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *NotificationStore) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, it := range s.items {
		if it.RecipientID == recipient && !it.Read {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id, recipient primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].RecipientID == recipient {
			s.items[i].Read = true
			return nil
		}
	}
	return &utils.NotFoundError{Resource: "notification"}
}

// All returns every stored notification in insertion order.
func (s *NotificationStore) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

// MediaStore keeps uploads in memory. Keys are "mem/<name>".
type MediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailSaveAfter makes Save fail once this many objects were saved; 0 disables.
	FailSaveAfter int
	saves         int
}

func NewMediaStore() *MediaStore {
	return &MediaStore{objects: make(map[string][]byte)}
}

func (s *MediaStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaveAfter > 0 && s.saves >= s.FailSaveAfter {
		return "", io.ErrShortWrite
	}
	s.saves++
	key := "mem/" + name
	s.objects[key] = data
	return key, nil
}

func (s *MediaStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MediaStore) URL(key string) string {
	return "http://media.test/" + key
}

// Get returns the stored bytes for key.
func (s *MediaStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return bytes.Clone(b), ok
}

// Len returns the number of stored objects.
func (s *MediaStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Following = append([]primitive.ObjectID{}, u.Following...)
	c.Followers = append([]primitive.ObjectID{}, u.Followers...)
	return &c
}

func cloneJournal(j *models.Journal) *models.Journal {
	c := *j
	c.Images = append([]string{}, j.Images...)
	c.Tags = append([]string{}, j.Tags...)
	c.FriendsMentioned = append([]string{}, j.FriendsMentioned...)
	c.Likes = append([]primitive.ObjectID{}, j.Likes...)
	c.Comments = append([]models.Comment{}, j.Comments...)
	if j.Rating != nil {
		r := *j.Rating
		c.Rating = &r
	}
	return &c
}
