package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blooddonation/internal/middleware"
	"blooddonation/internal/models"
	"blooddonation/internal/store"
)

func AdminStats(users UserStore, requests RequestStore, records PaymentStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var totalUsers, totalDonors, totalRequests int64
		var totalFunding float64

		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() (err error) {
			totalUsers, err = users.CountByRole(ctx, "")
			return err
		})
		g.Go(func() (err error) {
			totalDonors, err = users.CountByRole(ctx, models.RoleDonor)
			return err
		})
		g.Go(func() (err error) {
			totalRequests, err = requests.CountByStatus(ctx, "")
			return err
		})
		g.Go(func() (err error) {
			totalFunding, err = records.TotalAmount(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Error("admin stats failed", zap.Error(err))
			respondWithError(c, log, http.StatusInternalServerError, "stats.admin", "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalUsers":    totalUsers,
			"totalDonors":   totalDonors,
			"totalRequests": totalRequests,
			"totalFunding":  totalFunding,
		})
	}
}

// VolunteerStats reports request counts plus the caller's own drafts.
func VolunteerStats(requests RequestStore, blogs BlogStore, records PaymentStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, log, http.StatusUnauthorized, "stats.volunteer", "unauthorized access")
			return
		}

		var total, pending, inProgress, done, drafts int64
		var funding float64

		g, ctx := errgroup.WithContext(c.Request.Context())
		count := func(dst *int64, status string) {
			g.Go(func() (err error) {
				*dst, err = requests.CountByStatus(ctx, status)
				return err
			})
		}
		count(&total, "")
		count(&pending, models.DonationPending)
		count(&inProgress, models.DonationInProgress)
		count(&done, models.DonationDone)
		g.Go(func() (err error) {
			drafts, err = blogs.Count(ctx, store.BlogQuery{Status: models.BlogDraft, AuthorEmail: user.Email})
			return err
		})
		g.Go(func() (err error) {
			funding, err = records.TotalAmount(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Error("volunteer stats failed", zap.Error(err))
			respondWithError(c, log, http.StatusInternalServerError, "stats.volunteer", "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalRequests":      total,
			"pendingRequests":    pending,
			"inprogressRequests": inProgress,
			"doneRequests":       done,
			"myDraftBlogs":       drafts,
			"totalFunding":       funding,
		})
	}
}
