// Package store is the persistence gateway for sets and reviews. Every
// operation runs as a single transaction against the relational store.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/brickstat-api/apierr"
	"github.com/andrewpaige1/brickstat-api/models"
)

// MaxListed caps every review listing.
const MaxListed = 100

// Gateway reads and writes sets and reviews.
type Gateway struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Gateway {
	return &Gateway{db: db, log: log.Named("store")}
}

// SetReviews is a set with its newest reviews. Set is nil when the set has
// never been seen.
type SetReviews struct {
	SetNum      string
	Set         *models.Set
	ReviewCount int64
	Reviews     []models.Review
}

// UserReviews is the newest reviews written under one user id.
type UserReviews struct {
	UserID      int
	ReviewCount int64
	Reviews     []models.Review
}

// Health is the outcome of a connectivity probe.
type Health struct {
	OK     bool
	Detail string
}

// CreateReview validates in, creates the referenced set when it does not
// exist yet, and inserts the review. Both rows commit together or not at all.
func (g *Gateway) CreateReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	review := models.Review{
		SetNum:            in.SetNum,
		UserID:            in.UserID,
		BuildTimeMinutes:  in.BuildTimeMinutes,
		DistractionLevel:  in.DistractionLevel,
		OrganizationLevel: in.OrganizationLevel,
		BuildSpeed:        in.BuildSpeed,
		ReviewText:        in.ReviewText,
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOrCreateSet(tx, in); err != nil {
			return err
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			g.log.Warn("set creation raced with another writer", zap.String("set_num", in.SetNum), zap.Error(err))
			return nil, fmt.Errorf("set %s was created concurrently: %w", in.SetNum, apierr.ErrConflict)
		}
		return nil, apierr.Store("create review", err)
	}

	g.log.Info("review created", zap.Uint("review_id", review.ID), zap.String("set_num", review.SetNum))
	return &review, nil
}

// findOrCreateSet must run inside the caller's transaction. The insert uses
// ON CONFLICT DO NOTHING so a concurrent first review for the same set waits
// for the other writer instead of creating a second row.
func findOrCreateSet(tx *gorm.DB, in ReviewInput) error {
	var set models.Set
	err := tx.Where("set_num = ?", in.SetNum).Take(&set).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if in.SetName == nil {
		return apierr.Invalid("set_name", "is required to create set %s", in.SetNum)
	}

	set = models.Set{
		SetNum:      in.SetNum,
		Name:        *in.SetName,
		PieceCount:  in.PieceCount,
		ReleaseYear: in.ReleaseYear,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&set).Error
}

// ListReviews returns up to MaxListed reviews, newest first, optionally
// restricted to one set.
func (g *Gateway) ListReviews(ctx context.Context, setNum *string) ([]models.Review, error) {
	q := g.db.WithContext(ctx).Model(&models.Review{})
	if setNum != nil {
		q = q.Where("set_num = ?", *setNum)
	}

	reviews := []models.Review{}
	if err := newestFirst(q).Find(&reviews).Error; err != nil {
		return nil, apierr.Store("list reviews", err)
	}
	return reviews, nil
}

// ListReviewsForSet never fails on an unknown set; it returns an empty result.
func (g *Gateway) ListReviewsForSet(ctx context.Context, setNum string) (*SetReviews, error) {
	out := &SetReviews{SetNum: setNum, Reviews: []models.Review{}}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set models.Set
		err := tx.Where("set_num = ?", setNum).Take(&set).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out.Set = &set

		q := tx.Model(&models.Review{}).Where("set_num = ?", setNum)
		if err := q.Count(&out.ReviewCount).Error; err != nil {
			return err
		}
		return newestFirst(tx.Where("set_num = ?", setNum)).Find(&out.Reviews).Error
	})
	if err != nil {
		return nil, apierr.Store("list reviews for set", err)
	}
	return out, nil
}

// ListReviewsForUser returns an empty result for a user with no reviews.
func (g *Gateway) ListReviewsForUser(ctx context.Context, userID int) (*UserReviews, error) {
	out := &UserReviews{UserID: userID, Reviews: []models.Review{}}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Review{}).Where("user_id = ?", userID)
		if err := q.Count(&out.ReviewCount).Error; err != nil {
			return err
		}
		return newestFirst(tx.Where("user_id = ?", userID)).Find(&out.Reviews).Error
	})
	if err != nil {
		return nil, apierr.Store("list reviews for user", err)
	}
	return out, nil
}

// DeleteReview removes the first review (lowest id) matching the set and
// user. Other reviews for the same pair are left alone, as is the set.
func (g *Gateway) DeleteReview(ctx context.Context, setNum string, userID int) error {
	var deleted models.Review
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("set_num = ? AND user_id = ?", setNum, userID).First(&deleted).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("review for set %s and user %d: %w", setNum, userID, apierr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return tx.Delete(&deleted).Error
	})
	if err != nil {
		return apierr.Store("delete review", err)
	}

	g.log.Info("review deleted", zap.Uint("review_id", deleted.ID), zap.String("set_num", setNum), zap.Int("user_id", userID))
	return nil
}

// DeleteSet removes a set; the foreign key cascade removes its reviews.
// No HTTP route exposes it.
func (g *Gateway) DeleteSet(ctx context.Context, setNum string) error {
	res := g.db.WithContext(ctx).Where("set_num = ?", setNum).Delete(&models.Set{})
	if res.Error != nil {
		return apierr.Store("delete set", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set %s: %w", setNum, apierr.ErrNotFound)
	}

	g.log.Info("set deleted", zap.String("set_num", setNum))
	return nil
}

// HealthCheck runs a no-op query. It reports failures in the result instead
// of returning an error.
func (g *Gateway) HealthCheck(ctx context.Context) Health {
	if err := g.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		g.log.Error("database health check failed", zap.Error(err))
		return Health{OK: false, Detail: err.Error()}
	}
	return Health{OK: true}
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("created_at DESC").Order("id DESC").Limit(MaxListed)
}
