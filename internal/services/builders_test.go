package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLikeToggleUpdate(t *testing.T) {
	viewer := primitive.NewObjectID()
	pipeline := likeToggleUpdate(viewer)
	require.Len(t, pipeline, 1)

	stage := pipeline[0]
	require.Equal(t, "$set", stage[0].Key)
	set := stage[0].Value.(bson.D)
	require.Equal(t, "likes", set[0].Key)

	cond := set[0].Value.(bson.D)[0]
	require.Equal(t, "$cond", cond.Key)
	branches := cond.Value.(bson.D)
	assert.Equal(t, "if", branches[0].Key)
	assert.Equal(t, "$in", branches[0].Value.(bson.D)[0].Key)
	assert.Equal(t, "$setDifference", branches[1].Value.(bson.D)[0].Key)
	assert.Equal(t, "$concatArrays", branches[2].Value.(bson.D)[0].Key)

	// The pipeline must encode; the driver rejects unmarshalable updates late.
	_, err := bson.Marshal(bson.D{{Key: "u", Value: pipeline}})
	assert.NoError(t, err)
}

func TestVisibleTo(t *testing.T) {
	id, viewer := primitive.NewObjectID(), primitive.NewObjectID()
	f := visibleTo(id, viewer)
	assert.Equal(t, id, f["_id"])
	or := f["$or"].(bson.A)
	assert.Equal(t, bson.M{"is_public": true}, or[0])
	assert.Equal(t, bson.M{"user_id": viewer}, or[1])
}

func TestJournalUpdateDoc(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	title := "T"
	public := false
	tags := []string{"x"}
	doc := journalUpdateDoc(JournalUpdate{Title: &title, IsPublic: &public, Tags: &tags}, now)

	assert.Equal(t, bson.M{"$set": bson.M{
		"updated_at": now,
		"title":      "T",
		"is_public":  false,
		"tags":       []string{"x"},
	}}, doc)
}

func TestProfileUpdateDoc(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	email := " Me@Example.com"
	bio := "hi"
	doc := profileUpdateDoc(ProfileUpdate{Email: &email, Bio: &bio}, now)

	assert.Equal(t, bson.M{"$set": bson.M{
		"updated_at": now,
		"email":      "me@example.com",
		"bio":        "hi",
	}}, doc)
}

func TestJournalCountPipeline(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	p := journalCountPipeline(ids)
	require.Len(t, p, 2)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, "$group", p[1][0].Key)
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := parseObjectID("id", " "+id.Hex()+" ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = parseObjectID("id", "123")
	assert.EqualError(t, err, "id: invalid id")
}

func TestCloudinaryKeys(t *testing.T) {
	tests := []struct {
		contentType string
		wantType    string
		publicID    string
		wantKey     string
	}{
		{"image/png", "image", "travel-journal/1-ab-trip", "travel-journal/1-ab-trip"},
		{"video/mp4", "video", "travel-journal/2-cd-clip", "video:travel-journal/2-cd-clip"},
		{"application/pdf", "raw", "travel-journal/3-ef-ticket.pdf", "raw:travel-journal/3-ef-ticket.pdf"},
		{"text/plain; charset=utf-8", "raw", "travel-journal/4-gh-notes.txt", "raw:travel-journal/4-gh-notes.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			rt := cloudinaryResourceType(tt.contentType)
			assert.Equal(t, tt.wantType, rt)

			key := cloudinaryKey(rt, tt.publicID)
			assert.Equal(t, tt.wantKey, key)

			gotType, gotID := splitCloudinaryKey(key)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.publicID, gotID)
		})
	}

	assert.Equal(t, "auto", cloudinaryResourceType(""))
	rt, id := splitCloudinaryKey("folder/odd:name")
	assert.Equal(t, "image", rt, "only known type prefixes are split off")
	assert.Equal(t, "folder/odd:name", id)
}
