package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/application"
	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/infrastructure/memory"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
	"github.com/bloghive/bloghive-api/pkg/helpers"
	"github.com/bloghive/bloghive-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type testAPI struct {
	store  *memory.Store
	engine *gin.Engine
	jwt    *helpers.JWTManager
	auth   *application.AuthService
}

// newTestAPI wires the full route table against the in-memory store. Redis
// is nil, so Auth skips the session check and no rate limiting is applied.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	jwtMgr := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour)

	authSvc := &application.AuthService{
		Users:         store,
		Tokens:        store,
		JWT:           jwtMgr,
		ResetTokenTTL: time.Hour,
		ResetURL:      "http://localhost/reset-password",
	}
	userSvc := &application.UserService{Users: store}
	blogSvc := &application.BlogService{Blogs: store.Blogs()}
	adminSvc := &application.AdminService{Users: store, Blogs: store.Blogs()}

	authH := NewAuthHandler(authSvc, nil, "localhost", false)
	userH := NewUserHandler(userSvc, blogSvc, nil)
	blogH := NewBlogHandler(blogSvc, nil)
	adminH := NewAdminHandler(adminSvc, nil)

	r := gin.New()
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authH.Register)
	authGroup.POST("/login", authH.Login)
	authGroup.POST("/forgot-password", authH.ForgotPassword)
	authGroup.POST("/reset-password/:token", authH.ResetPassword)
	authGroup.POST("/logout", middleware.Auth(nil, jwtMgr), authH.Logout)

	api.GET("/blogs", blogH.List)
	api.GET("/blogs/:id", blogH.Get)
	blogsAuth := api.Group("/blogs")
	blogsAuth.Use(middleware.Auth(nil, jwtMgr), middleware.NotBlocked(store))
	blogsAuth.POST("", blogH.Create)
	blogsAuth.PUT("/:id", blogH.Update)
	blogsAuth.DELETE("/:id", blogH.Delete)
	blogsAuth.POST("/:id/comments", blogH.AddComment)
	blogsAuth.DELETE("/:id/comments/:commentId", blogH.DeleteComment)
	blogsAuth.PUT("/:id/like", blogH.ToggleLike)

	users := api.Group("/users")
	users.Use(middleware.Auth(nil, jwtMgr))
	users.GET("/me", userH.Me)
	users.GET("/search", userH.Search)
	users.GET("/:id", userH.PublicProfile)
	notBlocked := middleware.NotBlocked(store)
	users.PUT("/me", notBlocked, userH.UpdateMe)
	users.PUT("/:id/follow", notBlocked, userH.ToggleFollow)

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(nil, jwtMgr), middleware.RequireRole(entity.RoleAdmin))
	admin.GET("/users", adminH.ListUsers)
	admin.PUT("/users/:id/role", adminH.ChangeRole)
	admin.PUT("/users/:id/block", adminH.ToggleBlock)
	admin.DELETE("/users/:id", adminH.DeleteUser)
	admin.DELETE("/blogs/:id", adminH.DeleteBlog)

	return &testAPI{store: store, engine: r, jwt: jwtMgr, auth: authSvc}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// signup registers a user and returns the entity plus a valid access token.
func (a *testAPI) signup(t *testing.T, username string) (*entity.User, string) {
	t.Helper()
	u, err := a.auth.Register(context.Background(), application.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	tok, _, err := a.jwt.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return u, tok
}

func (a *testAPI) adminToken(t *testing.T) (*entity.User, string) {
	t.Helper()
	u, _ := a.signup(t, "root")
	u, err := a.store.SetRole(context.Background(), u.ID, entity.RoleAdmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	tok, _, err := a.jwt.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return u, tok
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return envelope.Data
}

func TestRegisterLoginFlow(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", w.Code, w.Body.String())
	}
	if dataField(t, w)["role"] != "user" {
		t.Errorf("expected role user, got %v", dataField(t, w)["role"])
	}

	w = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}
	if dataField(t, w)["token"] == "" {
		t.Error("expected token in login response")
	}

	w = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad login status = %d, want 400", w.Code)
	}
}

func TestRegisterAdminRoleRejected(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "eve", "email": "eve@example.com", "password": "password123", "role": "admin",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestBlogOwnership(t *testing.T) {
	api := newTestAPI(t)
	_, aliceTok := api.signup(t, "alice")
	_, bobTok := api.signup(t, "bob")

	w := api.do(t, http.MethodPost, "/api/blogs", aliceTok, gin.H{"title": "mine", "content": "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", w.Code, w.Body.String())
	}
	blogID, _ := dataField(t, w)["id"].(string)
	if blogID == "" {
		t.Fatal("no blog id in response")
	}

	// Anyone can read.
	if w := api.do(t, http.MethodGet, "/api/blogs/"+blogID, "", nil); w.Code != http.StatusOK {
		t.Errorf("public read status = %d", w.Code)
	}

	// Non-owner cannot edit or delete.
	if w := api.do(t, http.MethodPut, "/api/blogs/"+blogID, bobTok, gin.H{"title": "x", "content": "y"}); w.Code != http.StatusForbidden {
		t.Errorf("non-owner update status = %d, want 403", w.Code)
	}
	if w := api.do(t, http.MethodDelete, "/api/blogs/"+blogID, bobTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("non-owner delete status = %d, want 403", w.Code)
	}

	// No token at all.
	if w := api.do(t, http.MethodDelete, "/api/blogs/"+blogID, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous delete status = %d, want 401", w.Code)
	}

	if w := api.do(t, http.MethodDelete, "/api/blogs/"+blogID, aliceTok, nil); w.Code != http.StatusOK {
		t.Errorf("owner delete status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestBlockedUserMutationsRejected(t *testing.T) {
	api := newTestAPI(t)
	alice, aliceTok := api.signup(t, "alice")

	w := api.do(t, http.MethodPost, "/api/blogs", aliceTok, gin.H{"title": "t", "content": "c"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	blogID, _ := dataField(t, w)["id"].(string)

	if _, err := api.store.ToggleBlock(context.Background(), alice.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	// The token is still valid but the fresh block check rejects mutations.
	if w := api.do(t, http.MethodPost, "/api/blogs", aliceTok, gin.H{"title": "x", "content": "y"}); w.Code != http.StatusForbidden {
		t.Errorf("blocked create status = %d, want 403", w.Code)
	}
	// Reads stay open.
	if w := api.do(t, http.MethodGet, "/api/blogs/"+blogID, aliceTok, nil); w.Code != http.StatusOK {
		t.Errorf("blocked read status = %d, want 200", w.Code)
	}
}

func TestSelfFollowRejected(t *testing.T) {
	api := newTestAPI(t)
	alice, aliceTok := api.signup(t, "alice")
	bob, _ := api.signup(t, "bob")

	if w := api.do(t, http.MethodPut, "/api/users/"+alice.ID+"/follow", aliceTok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("self follow status = %d, want 400", w.Code)
	}

	w := api.do(t, http.MethodPut, "/api/users/"+bob.ID+"/follow", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("follow status = %d body=%s", w.Code, w.Body.String())
	}
	if followed, _ := dataField(t, w)["following"].(bool); !followed {
		t.Errorf("expected following true, got %v", dataField(t, w))
	}
}

func TestAdminConsoleAccess(t *testing.T) {
	api := newTestAPI(t)
	_, admin := api.adminToken(t)
	target, userTok := api.signup(t, "mallory")

	// Plain users are locked out.
	if w := api.do(t, http.MethodGet, "/api/admin/users", userTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("user console status = %d, want 403", w.Code)
	}

	if w := api.do(t, http.MethodGet, "/api/admin/users", admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin list status = %d", w.Code)
	}

	w := api.do(t, http.MethodPut, "/api/admin/users/"+target.ID+"/block", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("block status = %d body=%s", w.Code, w.Body.String())
	}
	if blocked, _ := dataField(t, w)["is_blocked"].(bool); !blocked {
		t.Errorf("expected is_blocked true, got %v", dataField(t, w))
	}

	if w := api.do(t, http.MethodDelete, "/api/admin/users/"+target.ID, admin, nil); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/api/users/"+target.ID, admin, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted profile status = %d, want 404", w.Code)
	}
}

func TestAdminUserListRoleFilter(t *testing.T) {
	api := newTestAPI(t)
	root, admin := api.adminToken(t)
	api.signup(t, "alice")
	api.signup(t, "bob")

	w := api.do(t, http.MethodGet, "/api/admin/users?role=admin", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("filtered list status = %d body=%s", w.Code, w.Body.String())
	}
	var envelope struct {
		Data struct {
			Items []struct {
				ID   string `json:"id"`
				Role string `json:"role"`
			} `json:"items"`
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	if envelope.Data.Total != 1 || len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one admin, got total=%d items=%d", envelope.Data.Total, len(envelope.Data.Items))
	}
	if got := envelope.Data.Items[0]; got.ID != root.ID || got.Role != "admin" {
		t.Errorf("unexpected item %+v", got)
	}

	w = api.do(t, http.MethodGet, "/api/admin/users?isBlocked=maybe", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad isBlocked status = %d, want 400", w.Code)
	}
}

func TestAdminSelfBlockRejected(t *testing.T) {
	api := newTestAPI(t)
	admin, adminTok := api.adminToken(t)

	if w := api.do(t, http.MethodPut, "/api/admin/users/"+admin.ID+"/block", adminTok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("self block status = %d, want 400", w.Code)
	}
	if w := api.do(t, http.MethodDelete, "/api/admin/users/"+admin.ID, adminTok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("self delete status = %d, want 400", w.Code)
	}
	if w := api.do(t, http.MethodPut, "/api/admin/users/"+admin.ID+"/role", adminTok, gin.H{"role": "user"}); w.Code != http.StatusBadRequest {
		t.Errorf("self demote status = %d, want 400", w.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice")

	// Unknown email still answers 200.
	w := api.do(t, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "ghost@example.com"})
	if w.Code != http.StatusOK {
		t.Errorf("unknown email status = %d, want 200", w.Code)
	}

	// Bad token is a 400.
	w = api.do(t, http.MethodPost, "/api/auth/reset-password/bogus", "", gin.H{"password": "newpassword1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad token status = %d, want 400", w.Code)
	}
}
