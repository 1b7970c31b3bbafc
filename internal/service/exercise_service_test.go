package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseCatalog(t *testing.T) {
	repo := newFakeExerciseRepo()
	svc := NewExerciseService(repo)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	created, err := svc.CreateExercise(ctx, owner, ExerciseInput{Name: " Romanian Deadlift ", MuscleGroup: "Legs", Difficulty: "Intermediate"})
	require.NoError(t, err)
	assert.Equal(t, "Romanian Deadlift", created.Name)
	assert.Equal(t, domain.LevelIntermediate, created.Difficulty)

	_, err = svc.CreateExercise(ctx, owner, ExerciseInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateExercise(ctx, owner, ExerciseInput{Name: "Jump", Difficulty: "extreme"})
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	_, err = svc.CreateExercise(ctx, other, ExerciseInput{Name: "Bench press", MuscleGroup: "Chest"})
	require.NoError(t, err)

	legs, err := svc.ListExercises(ctx, domain.ExerciseFilter{MuscleGroup: " legs "})
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, created.ID, legs[0].ID)

	mine, err := svc.ListExercises(ctx, domain.ExerciseFilter{TrainerID: &other})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Bench press", mine[0].Name)

	_, err = svc.UpdateExercise(ctx, other, created.ID, ExerciseInput{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)

	updated, err := svc.UpdateExercise(ctx, owner, created.ID, ExerciseInput{Name: "RDL", Equipment: "Barbell"})
	require.NoError(t, err)
	assert.Equal(t, "RDL", updated.Name)
	assert.Equal(t, "Barbell", updated.Equipment)

	assert.ErrorIs(t, svc.DeleteExercise(ctx, other, created.ID), ErrExerciseAccessDenied)
	require.NoError(t, svc.DeleteExercise(ctx, owner, created.ID))

	_, err = svc.GetExerciseByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}
