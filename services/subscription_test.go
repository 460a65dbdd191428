package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-hand/models"
)

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *ResearcherService) {
	t.Helper()
	db := testDB(t)
	return NewSubscriptionService(db, testLogger()), NewResearcherService(db, testLogger())
}

func follow(t *testing.T, svc *SubscriptionService, from, to uuid.UUID) *models.Subscription {
	t.Helper()
	subscription := &models.Subscription{ResearcherID: from, FollowedResearcherID: to}
	require.NoError(t, svc.Create(t.Context(), subscription))
	return subscription
}

func TestGetSubscriptorsEmptyIsNotAnError(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	lonely := createResearcher(t, researchers, "Ada", "ada@example.org")

	got, err := subs.GetSubscriptors(t.Context(), lonely.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadsFailWithNotFoundForUnknownResearcher(t *testing.T) {
	subs, _ := newSubscriptionFixture(t)
	unknown := uuid.New()

	_, err := subs.GetSubscriptors(t.Context(), unknown)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = subs.GetSubscriptions(t.Context(), unknown)
	require.ErrorAs(t, err, &notFound)

	_, err = subs.GetFeed(t.Context(), unknown)
	require.ErrorAs(t, err, &notFound)
}

func TestGetSubscriptorsResolvesFollowers(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	a := createResearcher(t, researchers, "Ada", "ada@example.org")
	b := createResearcher(t, researchers, "Bob", "bob@example.org")
	c := createResearcher(t, researchers, "Cleo", "cleo@example.org")

	follow(t, subs, a.ID, b.ID)
	follow(t, subs, c.ID, b.ID)

	got, err := subs.GetSubscriptors(t.Context(), b.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []uuid.UUID{got[0].ID, got[1].ID}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, c.ID)
}

func TestGetSubscriptorsListsEachFollowerOnce(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	a := createResearcher(t, researchers, "Ada", "ada@example.org")
	b := createResearcher(t, researchers, "Bob", "bob@example.org")

	// Duplikat-Kanten sind erlaubt, dürfen den Follower aber nicht doppelt liefern.
	follow(t, subs, a.ID, b.ID)
	follow(t, subs, a.ID, b.ID)

	got, err := subs.GetSubscriptors(t.Context(), b.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestGetSubscriptionsReturnsRawEdges(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	a := createResearcher(t, researchers, "Ada", "ada@example.org")
	b := createResearcher(t, researchers, "Bob", "bob@example.org")

	edge := follow(t, subs, a.ID, b.ID)

	got, err := subs.GetSubscriptions(t.Context(), a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, edge.ID, got[0].ID)
	assert.Equal(t, a.ID, got[0].ResearcherID)
	assert.Equal(t, b.ID, got[0].FollowedResearcherID)

	// Die Gegenrichtung bleibt leer.
	got, err = subs.GetSubscriptions(t.Context(), b.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelfAndDuplicateEdgesAreAllowed(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	a := createResearcher(t, researchers, "Ada", "ada@example.org")

	first := follow(t, subs, a.ID, a.ID)
	second := follow(t, subs, a.ID, a.ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := subs.GetSubscriptions(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetFeedOrdersAscendingByPublishedDate(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	db := subs.DB
	a := createResearcher(t, researchers, "Ada", "ada@example.org")
	b := createResearcher(t, researchers, "Bob", "bob@example.org")
	follow(t, subs, a.ID, b.ID)

	j2 := insertJournal(t, db, b.ID, "j2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	j1 := insertJournal(t, db, b.ID, "j1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	feed, err := subs.GetFeed(t.Context(), a.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, j1.ID, feed[0].ID)
	assert.Equal(t, j2.ID, feed[1].ID)
}

func TestGetFeedTruncatesToTwentyEarliest(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	db := subs.DB
	a := createResearcher(t, researchers, "Ada", "ada@example.org")
	b := createResearcher(t, researchers, "Bob", "bob@example.org")
	follow(t, subs, a.ID, b.ID)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		insertJournal(t, db, b.ID, "journal", base.AddDate(0, 0, i))
	}

	feed, err := subs.GetFeed(t.Context(), a.ID)
	require.NoError(t, err)
	require.Len(t, feed, FeedLimit)
	for i, journal := range feed {
		assert.Equal(t, base.AddDate(0, 0, i), journal.PublishedDate.UTC())
	}
}

func TestGetFeedContainsOnlyFollowedAuthors(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	db := subs.DB
	a := createResearcher(t, researchers, "Ada", "ada@example.org")
	b := createResearcher(t, researchers, "Bob", "bob@example.org")
	c := createResearcher(t, researchers, "Cleo", "cleo@example.org")
	follow(t, subs, a.ID, b.ID)

	followed := insertJournal(t, db, b.ID, "followed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	insertJournal(t, db, c.ID, "unfollowed", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	feed, err := subs.GetFeed(t.Context(), a.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, followed.ID, feed[0].ID)
	assert.Equal(t, b.ID, feed[0].ResearcherID)
}

func TestCreateThenDeleteRemovesEdge(t *testing.T) {
	subs, researchers := newSubscriptionFixture(t)
	x := createResearcher(t, researchers, "Xena", "xena@example.org")
	y := createResearcher(t, researchers, "Yuri", "yuri@example.org")

	edge := follow(t, subs, x.ID, y.ID)

	deleted, err := subs.Delete(t.Context(), edge.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := subs.GetSubscriptions(t.Context(), x.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteOfUnknownSubscriptionReturnsFalse(t *testing.T) {
	subs, _ := newSubscriptionFixture(t)

	deleted, err := subs.Delete(t.Context(), uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}
