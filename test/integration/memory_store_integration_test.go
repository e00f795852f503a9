package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/repository/specification"
	"ai-parenting-be/internal/repository/unitofwork"
	"ai-parenting-be/pkg/database"
)

const embeddingDim = 1536

func openTestDB(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	return unitofwork.NewRepositoryFactory(gormDB)
}

// unitVector builds an embedding pointing along one axis, so cosine
// distances between test rows are predictable.
func unitVector(axis int) []float32 {
	v := make([]float32, embeddingDim)
	v[axis] = 1
	return v
}

// blendVector leans mostly toward axis a with a small component on axis b.
func blendVector(a, b int, lean float32) []float32 {
	v := make([]float32, embeddingDim)
	v[a] = lean
	v[b] = 1 - lean
	return v
}

func seedInteraction(t *testing.T, uowFactory unitofwork.RepositoryFactory, userId uuid.UUID, childId *uuid.UUID, axis int, query string) *entity.Interaction {
	t.Helper()
	uow := uowFactory.NewUnitOfWork(context.Background())
	interaction := &entity.Interaction{
		Id:        uuid.New(),
		UserId:    userId,
		ChildId:   childId,
		Query:     query,
		Response:  "reply to " + query,
		AgentType: "parenting-style",
		Embedding: unitVector(axis),
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.InteractionRepository().Create(context.Background(), interaction))
	return interaction
}

func TestMemoryStoreScopeIsolation(t *testing.T) {
	uowFactory := openTestDB(t)
	ctx := context.Background()

	userA := uuid.New()
	userB := uuid.New()
	childId := uuid.New()

	// same axis for every row: only the scope filters can tell them apart
	seedInteraction(t, uowFactory, userA, nil, 0, "general question from A")
	seedInteraction(t, uowFactory, userA, &childId, 0, "child question from A")
	seedInteraction(t, uowFactory, userB, nil, 0, "general question from B")

	uow := uowFactory.NewUnitOfWork(ctx)

	t.Run("general scope excludes child rows and other users", func(t *testing.T) {
		results, err := uow.InteractionRepository().SearchSimilar(ctx, unitVector(0), 10, userA, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "general question from A", results[0].Query)
	})

	t.Run("child scope excludes general rows", func(t *testing.T) {
		results, err := uow.InteractionRepository().SearchSimilar(ctx, unitVector(0), 10, userA, &childId)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "child question from A", results[0].Query)
	})

	t.Run("empty scope returns no neighbors", func(t *testing.T) {
		otherChild := uuid.New()
		results, err := uow.InteractionRepository().SearchSimilar(ctx, unitVector(0), 10, userA, &otherChild)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMemoryStoreNearestNeighborOrder(t *testing.T) {
	uowFactory := openTestDB(t)
	ctx := context.Background()

	userId := uuid.New()
	uow := uowFactory.NewUnitOfWork(ctx)

	// rows at decreasing similarity to axis 0
	for i, lean := range []float32{0.95, 0.75, 0.55} {
		interaction := &entity.Interaction{
			Id:        uuid.New(),
			UserId:    userId,
			Query:     fmt.Sprintf("query rank %d", i),
			Response:  "reply",
			AgentType: "parenting-style",
			Embedding: blendVector(0, 1, lean),
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.InteractionRepository().Create(ctx, interaction))
	}

	results, err := uow.InteractionRepository().SearchSimilar(ctx, unitVector(0), 2, userId, nil)
	require.NoError(t, err)
	require.Len(t, results, 2, "limit must cap the result set")
	assert.Equal(t, "query rank 0", results[0].Query)
	assert.Equal(t, "query rank 1", results[1].Query)
}

func TestConversationAggregateRoundtrip(t *testing.T) {
	uowFactory := openTestDB(t)
	ctx := context.Background()

	userId := uuid.New()
	uow := uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	conv := entity.NewConversation(uuid.New(), userId, nil, "integration roundtrip", nil, time.Now())
	require.NoError(t, uow.ConversationRepository().Create(ctx, conv))

	require.NoError(t, conv.RecordAgent("community-connector"))
	require.NoError(t, conv.RecordAgent("child-development"))
	require.NoError(t, conv.RecordAgent("child-development"))
	conv.SetSummary("caregiver asked about development", unitVector(2))
	require.NoError(t, uow.ConversationRepository().Update(ctx, conv))

	loaded, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conv.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "child-development", loaded.PrimaryAgent)
	assert.Equal(t, "general", loaded.ScopeMode)
	assert.Len(t, loaded.EnabledAgents, 4)
	assert.Len(t, loaded.ParticipatingAgents, 3)
	assert.Equal(t, "caregiver asked about development", loaded.Summary)
	assert.Len(t, loaded.SummaryEmbedding, embeddingDim)
}
