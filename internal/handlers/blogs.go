package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/middleware"
	"blooddonation/internal/models"
	"blooddonation/internal/sanitize"
	"blooddonation/internal/store"
)

type createBlogRequest struct {
	Title     string            `json:"title" binding:"required,max=200"`
	Thumbnail string            `json:"thumbnail" binding:"omitempty,url"`
	Content   string            `json:"content" binding:"required"`
	Tags      models.StringList `json:"tags" binding:"omitempty,max=10,dive,max=40"`
}

// CreateBlog stores a draft authored by the caller. Content is sanitized
// before it is stored.
func CreateBlog(blogs BlogStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, log, http.StatusUnauthorized, "blogs.create", "unauthorized access")
			return
		}

		var req createBlogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		title := sanitize.Text(req.Title)
		content := sanitize.BlogContent(req.Content)
		if title == "" || content == "" {
			respondWithError(c, log, http.StatusBadRequest, "blogs.create", "title and content are required")
			return
		}

		blog := models.Blog{
			Title:       title,
			Thumbnail:   strings.TrimSpace(req.Thumbnail),
			Content:     content,
			Tags:        req.Tags,
			AuthorEmail: user.Email,
			AuthorName:  user.Name,
			Status:      models.BlogDraft,
			CreatedAt:   time.Now().UTC(),
		}

		res, err := blogs.Insert(c.Request.Context(), blog)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "blogs.create", "blog could not be created")
			return
		}
		c.JSON(http.StatusCreated, insertResult(res))
	}
}

func listBlogs(c *gin.Context, blogs BlogStore, log *zap.Logger, route, status string) {
	page, err := parsePage(c.Query("page"), c.Query("size"))
	if err != nil {
		respondWithError(c, log, http.StatusBadRequest, route, err.Error())
		return
	}

	list, total, err := blogs.List(c.Request.Context(), store.BlogQuery{Status: status, Page: page})
	if err != nil {
		respondWithError(c, log, http.StatusInternalServerError, route, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": list, "totalCount": total})
}

func PublishedBlogs(blogs BlogStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		listBlogs(c, blogs, log, "blogs.published", models.BlogPublished)
	}
}

func AllBlogs(blogs BlogStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := queryValue(c, "status")
		if status != "" && !models.ValidBlogStatus(status) {
			respondWithError(c, log, http.StatusBadRequest, "blogs.all", "invalid status")
			return
		}
		listBlogs(c, blogs, log, "blogs.all", status)
	}
}

// GetBlog serves published posts only; drafts read as not found.
func GetBlog(blogs BlogStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := store.ParseID(c.Param("id"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "blogs.get", "invalid id")
			return
		}

		blog, err := blogs.FindByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) || (err == nil && blog.Status != models.BlogPublished) {
			respondWithError(c, log, http.StatusNotFound, "blogs.get", "blog not found")
			return
		}
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "blogs.get", "db error")
			return
		}
		c.JSON(http.StatusOK, blog)
	}
}

func UpdateBlogStatus(blogs BlogStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := store.ParseID(c.Param("id"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "blogs.status", "invalid id")
			return
		}

		var body statusBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidationError(c, err)
			return
		}
		if !models.ValidBlogStatus(body.Status) {
			respondWithError(c, log, http.StatusBadRequest, "blogs.status", "invalid status")
			return
		}

		res, err := blogs.UpdateStatus(c.Request.Context(), id, body.Status)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "blogs.status", "blog could not be updated")
			return
		}
		c.JSON(http.StatusOK, updateResult(res))
	}
}

func DeleteBlog(blogs BlogStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := store.ParseID(c.Param("id"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "blogs.delete", "invalid id")
			return
		}

		res, err := blogs.Delete(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "blogs.delete", "blog could not be deleted")
			return
		}
		c.JSON(http.StatusOK, deleteResult(res))
	}
}
