package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/desertthunder/sdx/internal/tasks"
)

func TestRunRepositoryErrors(t *testing.T) {
	t.Run("GetMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewCollectionRun(0, "short_term", 20)
		run.SetID("never-created")

		if err := repo.Update(run); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if err := repo.Delete("missing"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewCollectionRun(0, "short_term", 20)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("first delete failed: %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
		}
	})

	t.Run("CreateInvalidTimeRange", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewCollectionRun(0, "all_time", 20)

		if err := repo.Create(run); err == nil {
			t.Error("expected validation error for unknown time range")
		}
	})

	t.Run("CreateInvalidLimit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewCollectionRun(0, "short_term", 0)

		if err := repo.Create(run); err == nil {
			t.Error("expected validation error for zero top limit")
		}
	})
}

func TestCachedTrackRepositoryErrors(t *testing.T) {
	t.Run("GetMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCachedTrackRepository(db)
		if _, err := repo.Get("missing"); err == nil {
			t.Error("expected error for missing track")
		}
	})

	t.Run("CreateWithoutRunID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCachedTrackRepository(db)
		track := models.NewCachedTrack(0, "", testTrack(1, "spotify1"))

		if err := repo.Create(track); err == nil {
			t.Error("expected validation error for empty run id")
		}
	})

	t.Run("CreateWithoutName", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCachedTrackRepository(db)
		track := models.NewCachedTrack(0, "run1", models.TopTrack{Rank: 1, ID: "spotify1"})

		if err := repo.Create(track); err == nil {
			t.Error("expected validation error for empty track name")
		}
	})

	t.Run("GetAfterDelete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := models.NewCollectionRun(0, "medium_term", 50)
		if err := NewRunRepository(db).Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		repo := NewCachedTrackRepository(db)
		track := models.NewCachedTrack(0, run.ID(), testTrack(1, "spotify1"))
		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		if err := repo.Delete(track.ID()); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}
		if _, err := repo.Get(track.ID()); err == nil {
			t.Error("expected error getting soft-deleted track")
		}
	})
}

func TestCachedFeatureRepositoryErrors(t *testing.T) {
	t.Run("GetMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCachedFeatureRepository(db)
		if _, err := repo.Get("missing"); err == nil {
			t.Error("expected error for missing feature")
		}
	})

	t.Run("CreateWithoutTrackID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCachedFeatureRepository(db)
		feature := models.NewCachedFeature(0, "run1", models.AudioFeature{})

		if err := repo.Create(feature); err == nil {
			t.Error("expected validation error for empty feature track id")
		}
	})
}

func TestRunCacheAdapterErrors(t *testing.T) {
	t.Run("NilResult", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		adapter := NewRunCacheAdapter(db)
		if err := adapter.SaveRun(context.Background(), nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("InvalidRunRejected", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		adapter := NewRunCacheAdapter(db)
		result := &tasks.CollectionResult{
			RunID:     "run-bad",
			TimeRange: "all_time",
			Limit:     20,
			Status:    models.RunStatusCompleted,
		}

		if err := adapter.SaveRun(context.Background(), result); err == nil {
			t.Error("expected save of invalid run to fail")
		}
	})
}
