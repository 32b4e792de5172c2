package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/identity"
	"blooddonation/internal/middleware"
	"blooddonation/internal/models"
	"blooddonation/internal/payments"
)

// Deps is everything the route table needs. Gateway may be nil, in which
// case the payment routes answer 503.
type Deps struct {
	Users    UserStore
	Requests RequestStore
	Payments PaymentStore
	Blogs    BlogStore
	DB       Pinger
	Verifier identity.Verifier
	Gateway  payments.Gateway
	Checkout CheckoutConfig
	Log      *zap.Logger
}

func Register(r *gin.Engine, d Deps) {
	ConfigureBinding()
	log := d.Log

	r.GET("/", Home())
	r.GET("/health", Health(d.DB, log))

	r.POST("/users", CreateUser(d.Users, log))
	r.GET("/search-donors", SearchDonors(d.Users, log))
	r.GET("/all-pending-requests", PendingRequests(d.Requests, log))
	r.GET("/blogs", PublishedBlogs(d.Blogs, log))
	r.GET("/blogs/:id", GetBlog(d.Blogs, log))

	authed := r.Group("/")
	authed.Use(middleware.VerifyToken(d.Verifier, log))
	{
		authed.GET("/user/:email", GetUser(d.Users, log))
		authed.GET("/users/role/:email", GetUserRole(d.Users, log))
		authed.PATCH("/user/update/:email", UpdateProfile(d.Users, log))

		authed.POST("/create-payment-checkout", CreateCheckout(d.Gateway, d.Checkout, log))
		authed.POST("/success-payment", ConfirmPayment(d.Gateway, d.Payments, log))
	}

	member := authed.Group("/")
	member.Use(middleware.LoadUser(d.Users, log))
	{
		member.GET("/request/:id", GetRequest(d.Requests, log))
		member.GET("/my-request", MyRequests(d.Requests, log))
		member.GET("/my-requests-recent", MyRecentRequests(d.Requests, log))
	}

	// Blocked users keep read access only.
	active := authed.Group("/")
	active.Use(middleware.RequireActive(d.Users, log))
	{
		active.POST("/requests", CreateRequest(d.Requests, log))
		active.PATCH("/requests/donate/:id", DonateToRequest(d.Requests, log))
		active.PATCH("/request/update/:id", UpdateRequest(d.Requests, log))
		active.PATCH("/request/status/:id", UpdateRequestStatus(d.Requests, log))
		active.DELETE("/request/delete/:id", DeleteRequest(d.Requests, log))
		active.DELETE("/requests/:id", DeleteRequest(d.Requests, log))
		active.POST("/blogs", CreateBlog(d.Blogs, log))
	}

	staff := authed.Group("/")
	staff.Use(middleware.RequireRole(d.Users, log, models.RoleAdmin, models.RoleVolunteer))
	{
		staff.GET("/all-requests", AllRequests(d.Requests, log))
		staff.GET("/volunteer-stats", VolunteerStats(d.Requests, d.Blogs, d.Payments, log))
		staff.GET("/all-blogs", AllBlogs(d.Blogs, log))
		staff.PATCH("/blogs/status/:id", UpdateBlogStatus(d.Blogs, log))
		staff.DELETE("/blogs/:id", DeleteBlog(d.Blogs, log))
	}

	admin := authed.Group("/")
	admin.Use(middleware.RequireRole(d.Users, log, models.RoleAdmin))
	{
		admin.GET("/users", ListUsers(d.Users, log))
		admin.PATCH("/update/user/status", UpdateUserStatus(d.Users, log))
		admin.PATCH("/update/user/role", UpdateUserRole(d.Users, log))
		admin.GET("/admin-stats", AdminStats(d.Users, d.Requests, d.Payments, log))
		admin.GET("/payments", ListPayments(d.Payments, log))
	}
}
