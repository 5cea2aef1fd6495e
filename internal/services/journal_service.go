package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/validation"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// PublicFeedLimit caps the public feed.
const PublicFeedLimit = 50

// JournalService implements journal creation, reads and social actions.
type JournalService struct {
	journals     JournalStore
	users        UserStore
	media        MediaStore
	cache        FeedCache
	notifier     Notifier
	shareBaseURL string
	log          *zap.Logger
}

type JournalServiceDeps struct {
	Journals     JournalStore
	Users        UserStore
	Media        MediaStore
	Cache        FeedCache
	Notifier     Notifier
	ShareBaseURL string
	Log          *zap.Logger
}

func NewJournalService(d JournalServiceDeps) *JournalService {
	cache := d.Cache
	if cache == nil {
		cache = noopFeedCache{}
	}
	return &JournalService{
		journals:     d.Journals,
		users:        d.Users,
		media:        d.Media,
		cache:        cache,
		notifier:     d.Notifier,
		shareBaseURL: strings.TrimRight(d.ShareBaseURL, "/"),
		log:          d.Log,
	}
}

// CreateJournalInput is a new journal; Images are keys already stored by MediaIntake.
type CreateJournalInput struct {
	Title            string   `json:"title" validate:"max=200"`
	Location         string   `json:"location" validate:"required"`
	Entry            string   `json:"entry" validate:"required"`
	Tags             []string `json:"tags"`
	FriendsMentioned []string `json:"friendsMentioned"`
	Rating           *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	IsPublic         *bool    `json:"isPublic"`
	Images           []string `json:"images"`
}

type CommentInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (s *JournalService) Create(ctx context.Context, caller *models.User, in CreateJournalInput) (*models.JournalDetail, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Entry = strings.TrimSpace(in.Entry)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	j := &models.Journal{
		ID:               primitive.NewObjectID(),
		CreatedAt:        now,
		UpdatedAt:        now,
		UserID:           caller.ID,
		Title:            in.Title,
		Location:         in.Location,
		Entry:            in.Entry,
		Images:           images,
		Tags:             normalizeTags(in.Tags),
		FriendsMentioned: normalizeList(in.FriendsMentioned),
		Likes:            []primitive.ObjectID{},
		Comments:         []models.Comment{},
		Rating:           in.Rating,
		IsPublic:         isPublic,
	}
	if err := s.journals.Insert(ctx, j); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.log.Info("journal created", zap.String("journal_id", j.ID.Hex()), zap.String("user_id", caller.ID.Hex()), zap.Int("images", len(images)))

	return s.detail(j, userSummaries{caller.ID: caller.Summary()}, caller.ID), nil
}

// ListMine returns the caller's journals, newest first.
func (s *JournalService) ListMine(ctx context.Context, caller *models.User) ([]models.JournalSummary, error) {
	journals, err := s.journals.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.summaries(journals, userSummaries{caller.ID: caller.Summary()}), nil
}

// ListAll returns the most recent public journals across all users.
func (s *JournalService) ListAll(ctx context.Context) ([]models.JournalSummary, error) {
	var cached []models.JournalSummary
	hit, gen := s.cache.Get(ctx, &cached)
	if hit {
		return cached, nil
	}

	journals, err := s.journals.ListPublic(ctx, PublicFeedLimit)
	if err != nil {
		return nil, err
	}
	owners := make([]primitive.ObjectID, 0, len(journals))
	for i := range journals {
		owners = append(owners, journals[i].UserID)
	}
	authors, err := summariesByID(ctx, s.users, owners)
	if err != nil {
		return nil, err
	}

	out := s.summaries(journals, authors)
	s.cache.Set(ctx, gen, out)
	return out, nil
}

// Get returns one journal. Private journals are only visible to their owner.
func (s *JournalService) Get(ctx context.Context, caller *models.User, idHex string) (*models.JournalDetail, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	j, err := s.journals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !j.IsPublic && j.UserID != caller.ID {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	return s.resolveDetail(ctx, j, caller.ID)
}

// Update edits an owned journal.
func (s *JournalService) Update(ctx context.Context, caller *models.User, idHex string, upd JournalUpdate) (*models.JournalDetail, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	upd = trimJournalUpdate(upd)
	if err := validation.Struct(upd); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, &utils.ValidationError{Message: "no fields to update"}
	}
	if upd.Location != nil && *upd.Location == "" {
		return nil, &utils.ValidationError{Field: "location", Message: "location is required"}
	}
	if upd.Entry != nil && *upd.Entry == "" {
		return nil, &utils.ValidationError{Field: "entry", Message: "entry is required"}
	}

	j, err := s.journals.UpdateOwned(ctx, id, caller.ID, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.resolveDetail(ctx, j, caller.ID)
}

// Delete removes an owned journal and its images. A journal owned by
// someone else is reported exactly like a missing one.
func (s *JournalService) Delete(ctx context.Context, caller *models.User, idHex string) error {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return err
	}
	j, err := s.journals.DeleteOwned(ctx, id, caller.ID)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)

	for _, key := range j.Images {
		if err := s.media.Remove(ctx, key); err != nil {
			s.log.Warn("failed to remove journal image", zap.String("journal_id", j.ID.Hex()), zap.String("key", key), zap.Error(err))
		}
	}
	s.log.Info("journal deleted", zap.String("journal_id", j.ID.Hex()), zap.String("user_id", caller.ID.Hex()))
	return nil
}

// Share returns an owned journal with its share link.
func (s *JournalService) Share(ctx context.Context, caller *models.User, idHex string) (*models.JournalDetail, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	j, err := s.journals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != caller.ID {
		return nil, &utils.NotFoundError{Resource: "journal"}
	}
	d, err := s.resolveDetail(ctx, j, caller.ID)
	if err != nil {
		return nil, err
	}
	d.ShareLink = s.shareBaseURL + "/" + j.ID.Hex()
	return d, nil
}

// ToggleLike adds the caller's like, or removes it if already present.
func (s *JournalService) ToggleLike(ctx context.Context, caller *models.User, idHex string) (*models.LikeResult, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	j, err := s.journals.ToggleLike(ctx, id, caller.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	liked := j.LikedBy(caller.ID)
	if liked {
		s.notify(ctx, caller, models.Notification{
			RecipientID: j.UserID,
			Type:        models.NotificationLike,
			JournalID:   &j.ID,
		})
	}
	return &models.LikeResult{Likes: len(j.Likes), Liked: liked}, nil
}

// AddComment prepends a comment by the caller.
func (s *JournalService) AddComment(ctx context.Context, caller *models.User, idHex string, in CommentInput) (*models.CommentView, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    caller.ID,
		Text:      in.Text,
		CreatedAt: time.Now().UTC(),
	}
	j, err := s.journals.AddComment(ctx, id, c)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	s.notify(ctx, caller, models.Notification{
		RecipientID: j.UserID,
		Type:        models.NotificationComment,
		JournalID:   &j.ID,
		CommentText: c.Text,
	})
	return &models.CommentView{ID: c.ID, User: caller.Summary(), Text: c.Text, CreatedAt: c.CreatedAt}, nil
}

func (s *JournalService) notify(ctx context.Context, actor *models.User, n models.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, actor, n)
	}
}

func (s *JournalService) resolveDetail(ctx context.Context, j *models.Journal, viewer primitive.ObjectID) (*models.JournalDetail, error) {
	ids := make([]primitive.ObjectID, 0, len(j.Comments)+1)
	ids = append(ids, j.UserID)
	for _, c := range j.Comments {
		ids = append(ids, c.UserID)
	}
	users, err := summariesByID(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	return s.detail(j, users, viewer), nil
}

func (s *JournalService) detail(j *models.Journal, users userSummaries, viewer primitive.ObjectID) *models.JournalDetail {
	comments := make([]models.CommentView, 0, len(j.Comments))
	for _, c := range j.Comments {
		comments = append(comments, models.CommentView{
			ID:        c.ID,
			User:      users.get(c.UserID),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return &models.JournalDetail{
		ID:               j.ID,
		Title:            j.DisplayTitle(),
		Location:         j.Location,
		Images:           nonNil(j.Images),
		ImageURLs:        s.imageURLs(j.Images),
		Entry:            j.Entry,
		Tags:             nonNil(j.Tags),
		FriendsMentioned: nonNil(j.FriendsMentioned),
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		User:             users.get(j.UserID),
		Likes:            len(j.Likes),
		Liked:            j.LikedBy(viewer),
		Comments:         comments,
		CommentCount:     len(j.Comments),
		Rating:           j.DisplayRating(),
		IsPublic:         j.IsPublic,
	}
}

func (s *JournalService) summaries(journals []models.Journal, authors userSummaries) []models.JournalSummary {
	out := make([]models.JournalSummary, 0, len(journals))
	for i := range journals {
		j := &journals[i]
		out = append(out, models.JournalSummary{
			ID:               j.ID,
			Title:            j.DisplayTitle(),
			Location:         j.Location,
			Images:           nonNil(j.Images),
			ImageURLs:        s.imageURLs(j.Images),
			Entry:            j.Entry,
			Tags:             nonNil(j.Tags),
			FriendsMentioned: nonNil(j.FriendsMentioned),
			CreatedAt:        j.CreatedAt,
			UpdatedAt:        j.UpdatedAt,
			User:             authors.get(j.UserID),
			Likes:            len(j.Likes),
			Comments:         len(j.Comments),
			Rating:           j.DisplayRating(),
			IsPublic:         j.IsPublic,
		})
	}
	return out
}

func (s *JournalService) imageURLs(keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		urls = append(urls, s.media.URL(k))
	}
	return urls
}

func normalizeTags(tags []string) []string {
	return utils.UniqueStrings(normalizeList(tags))
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func trimJournalUpdate(upd JournalUpdate) JournalUpdate {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	upd.Title = trim(upd.Title)
	upd.Location = trim(upd.Location)
	upd.Entry = trim(upd.Entry)
	if upd.Tags != nil {
		tags := normalizeTags(*upd.Tags)
		upd.Tags = &tags
	}
	if upd.FriendsMentioned != nil {
		friends := normalizeList(*upd.FriendsMentioned)
		upd.FriendsMentioned = &friends
	}
	return upd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
