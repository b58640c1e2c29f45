package voting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperrors"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

func TestDeleteQuestion_OwnershipRequired(t *testing.T) {
	engine := NewEngine(testDB)

	author := createTestUser(t, testDB)
	stranger := createTestUser(t, testDB)
	question := createTestQuestion(t, testDB, author.ID)

	err := engine.DeleteQuestion(context.Background(), stranger.ID, question.ID)
	assert.True(t, apperrors.IsType(err, apperrors.TypeAuthorization))

	err = engine.DeleteQuestion(context.Background(), author.ID, 999999)
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))
}

func TestDeleteQuestion_RefreshesAnswerAuthors(t *testing.T) {
	engine := NewEngine(testDB)
	ctx := context.Background()

	asker := createTestUser(t, testDB)
	answerer := createTestUser(t, testDB)
	voter := createTestUser(t, testDB)

	question := createTestQuestion(t, testDB, asker.ID)
	answer := createTestAnswer(t, testDB, answerer.ID, question.ID)
	require.NoError(t, engine.Trigger().ItemsMutated(ctx, answerer.ID))

	_, err := engine.CastAnswerVote(ctx, voter.ID, answer.ID, 1)
	require.NoError(t, err)
	_, err = engine.CastQuestionVote(ctx, voter.ID, question.ID, 1)
	require.NoError(t, err)

	profile := profileOf(t, testDB, answerer.ID)
	require.Equal(t, 1, profile.Reputation)
	require.Equal(t, 1, profile.AnswerCount)

	require.NoError(t, engine.DeleteQuestion(ctx, asker.ID, question.ID))

	// Cascades removed the answer and all votes; both profiles reflect it.
	profile = profileOf(t, testDB, answerer.ID)
	assert.Equal(t, 0, profile.Reputation)
	assert.Equal(t, 0, profile.AnswerCount)
	assert.Equal(t, 0, profileOf(t, testDB, asker.ID).Reputation)

	var answerCount int64
	require.NoError(t, testDB.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount).Error)
	assert.Equal(t, int64(0), answerCount)
}

func TestDeleteUser_ReaggregatesAffectedAuthors(t *testing.T) {
	engine := NewEngine(testDB)
	ctx := context.Background()

	leaving := createTestUser(t, testDB)
	author := createTestUser(t, testDB)
	third := createTestUser(t, testDB)

	question := createTestQuestion(t, testDB, author.ID)
	answer := createTestAnswer(t, testDB, author.ID, question.ID)
	require.NoError(t, engine.Trigger().ItemsMutated(ctx, author.ID))

	// The leaving user's votes prop up the author's reputation.
	_, err := engine.CastQuestionVote(ctx, leaving.ID, question.ID, 1)
	require.NoError(t, err)
	_, err = engine.CastAnswerVote(ctx, leaving.ID, answer.ID, 1)
	require.NoError(t, err)
	_, err = engine.CastQuestionVote(ctx, third.ID, question.ID, 1)
	require.NoError(t, err)

	require.Equal(t, 3, profileOf(t, testDB, author.ID).Reputation)

	require.NoError(t, engine.DeleteUser(ctx, leaving.ID))

	// Only the third user's question vote survives.
	assert.Equal(t, 1, questionRating(t, testDB, question.ID))
	assert.Equal(t, 0, answerRating(t, testDB, answer.ID))
	assert.Equal(t, 1, profileOf(t, testDB, author.ID).Reputation)

	var userCount int64
	require.NoError(t, testDB.Model(&models.User{}).Where("id = ?", leaving.ID).Count(&userCount).Error)
	assert.Equal(t, int64(0), userCount)
}

func TestDeleteUser_CascadesOwnContent(t *testing.T) {
	engine := NewEngine(testDB)
	ctx := context.Background()

	leaving := createTestUser(t, testDB)
	answerer := createTestUser(t, testDB)

	// The answerer's answer lives under the leaving user's question, so it
	// dies with the question and the answerer's counters must follow.
	question := createTestQuestion(t, testDB, leaving.ID)
	answer := createTestAnswer(t, testDB, answerer.ID, question.ID)
	require.NoError(t, engine.Trigger().ItemsMutated(ctx, answerer.ID))

	voter := createTestUser(t, testDB)
	_, err := engine.CastAnswerVote(ctx, voter.ID, answer.ID, 1)
	require.NoError(t, err)

	profile := profileOf(t, testDB, answerer.ID)
	require.Equal(t, 1, profile.Reputation)
	require.Equal(t, 1, profile.AnswerCount)

	require.NoError(t, engine.DeleteUser(ctx, leaving.ID))

	profile = profileOf(t, testDB, answerer.ID)
	assert.Equal(t, 0, profile.Reputation)
	assert.Equal(t, 0, profile.AnswerCount)
}
