package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/models"
)

const dashboardPendingPosts = 5

type dashboardHandler struct {
	responder Responder
	logger    zerolog.Logger
	database  database.Database
	now       func() time.Time
}

func newDashboardHandler(base handlerBase, database database.Database) dashboardHandler {
	responder, logger := base.build("dashboardHandler")
	return dashboardHandler{
		responder: responder,
		logger:    logger,
		database:  database,
		now:       time.Now,
	}
}

// getDashboard gathers the admin summary, running each query concurrently
func (h dashboardHandler) getDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp DashboardResponse
		g, ctx := errgroup.WithContext(r.Context())

		g.Go(func() error {
			counts, err := h.database.BlogPostRepo().CountByStatus(ctx)
			resp.Posts = counts
			return err
		})
		g.Go(func() (err error) {
			resp.Categories, err = h.database.CategoryRepo().Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			resp.Tags, err = h.database.TagRepo().Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			resp.Users, err = h.database.UserRepo().Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			resp.Characters, err = h.database.AICharacterRepo().Count(ctx)
			return err
		})
		g.Go(func() error {
			usage, err := h.database.ChatLogRepo().CountSince(ctx, h.now().Add(-24*time.Hour))
			resp.ToolUsage = usage
			return err
		})
		g.Go(func() error {
			posts, _, err := h.database.BlogPostRepo().List(ctx, database.PostFilter{
				Status: models.PostStatusPending,
				Page:   1,
				Limit:  dashboardPendingPosts,
			})
			resp.PendingPosts = posts
			return err
		})

		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "dashboard", err))
			return
		}

		for _, n := range resp.ToolUsage {
			resp.MessagesLast24h += n
		}
		if resp.PendingPosts == nil {
			resp.PendingPosts = []*models.BlogPost{}
		}
		h.responder.WriteJSON(w, resp)
	}
}
