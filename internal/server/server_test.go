package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstreak/internal/apperr"
	"devstreak/internal/config"
	"devstreak/internal/content"
	"devstreak/internal/identity"
	"devstreak/internal/payments"
	"devstreak/internal/storage/sqlite"
)

const testToken = "valid-token"

type stubVerifier struct {
	identities map[string]identity.Identity
}

func (v *stubVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	ident, ok := v.identities[token]
	if !ok {
		return identity.Identity{}, apperr.New(apperr.Unauthorized, "invalid or expired token")
	}
	return ident, nil
}

type stubGenerator struct {
	lastInput  content.Input
	lastWrapup content.WrapupInput
	err        error
}

func (g *stubGenerator) GeneratePost(_ context.Context, input content.Input) (content.Variants, error) {
	g.lastInput = input
	if g.err != nil {
		return content.Variants{}, g.err
	}
	return content.Variants{XPost: "x post", LinkedInPost: "linkedin post", BlogPost: "blog post"}, nil
}

func (g *stubGenerator) GenerateWrapup(_ context.Context, input content.WrapupInput) (content.Variants, error) {
	g.lastWrapup = input
	if g.err != nil {
		return content.Variants{}, g.err
	}
	return content.Variants{XPost: "week x", LinkedInPost: "week linkedin", BlogPost: "week blog"}, nil
}

type stubProvider struct {
	sessions map[string]payments.CheckoutSession
	payments map[string]payments.ProviderPayment
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, params payments.CheckoutParams) (payments.CheckoutSession, error) {
	session := payments.CheckoutSession{
		SessionID:     "sess_new",
		CheckoutURL:   "https://checkout.example.com/sess_new",
		CustomerEmail: params.CustomerEmail,
	}
	p.sessions["sess_new"] = session
	return session, nil
}

func (p *stubProvider) GetCheckoutSession(_ context.Context, sessionID string) (payments.CheckoutSession, error) {
	session, ok := p.sessions[sessionID]
	if !ok {
		return payments.CheckoutSession{}, apperr.New(apperr.NotFound, "checkout session not found")
	}
	return session, nil
}

func (p *stubProvider) GetPayment(_ context.Context, paymentID string) (payments.ProviderPayment, error) {
	payment, ok := p.payments[paymentID]
	if !ok {
		return payments.ProviderPayment{}, apperr.New(apperr.NotFound, "payment not found")
	}
	return payment, nil
}

type testEnv struct {
	server    *Server
	store     *sqlite.Store
	generator *stubGenerator
	provider  *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	generator := &stubGenerator{}
	provider := &stubProvider{
		sessions: map[string]payments.CheckoutSession{},
		payments: map[string]payments.ProviderPayment{},
	}

	srv := New(Options{
		Store: store,
		Verifier: &stubVerifier{identities: map[string]identity.Identity{
			testToken: {UserID: "user-1", Email: "dev@example.com", Name: "Dev"},
		}},
		Generator:   generator,
		Payments:    provider,
		Catalog:     payments.NewCatalog(config.Config{}),
		Logger:      logger,
		SiteBaseURL: "https://devstreak.example.com",
	})

	return &testEnv{server: srv, store: store, generator: generator, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (e *testEnv) createGoal(t *testing.T, title, goalType string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/goals", testToken, gin.H{"title": title, "type": goalType})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["goal"].(map[string]any)["id"].(string)
}

func (e *testEnv) createTask(t *testing.T, goalID, description string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/tasks", testToken, gin.H{"goal_id": goalID, "description": description})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["task"].(map[string]any)["id"].(string)
}

func (e *testEnv) completeTask(t *testing.T, taskID string) map[string]any {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", testToken, gin.H{
		"code":           "func main() { fmt.Println(\"done\") }",
		"learning_notes": "Learned plenty about the completion cascade today.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec)["code"])

	rec = env.do(t, http.MethodGet, "/api/goals", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGoal_RejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/goals", testToken, gin.H{"title": "Week 1", "type": "sabbatical"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decode(t, rec)["code"])
}

func TestCreateGoal_BlockedWithProgressDetails(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	taskID := env.createTask(t, goalID, "Day 1 work")
	env.completeTask(t, taskID)

	rec := env.do(t, http.MethodPost, "/api/goals", testToken, gin.H{"title": "Week 2", "type": "product"})
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "precondition_failed", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, goalID, details["id"])
	assert.Equal(t, float64(1), details["completed_tasks"])
	assert.Equal(t, float64(7), details["total_tasks"])
}

func TestTaskCompletionFlow(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	day1 := env.createTask(t, goalID, "Day 1 work")
	day2 := env.createTask(t, goalID, "Day 2 work")

	// Day 2 is locked until day 1 completes.
	rec := env.do(t, http.MethodPost, "/api/tasks/"+day2+"/complete", testToken, gin.H{
		"code":           "fmt.Println(\"too early\")",
		"learning_notes": "trying to skip ahead in the week",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	body := env.completeTask(t, day1)
	result := body["result"].(map[string]any)
	assert.True(t, result["next_task_unlocked"].(bool))
	assert.False(t, result["week_completed"].(bool))

	// Re-completing returns the prior record instead of failing.
	again := env.completeTask(t, day1)
	assert.True(t, again["result"].(map[string]any)["already_completed"].(bool))
}

func TestCompleteTask_ValidationAggregatesReasons(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	taskID := env.createTask(t, goalID, "Day 1 work")

	rec := env.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", testToken, gin.H{
		"code":           "short",
		"learning_notes": "too short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	message := decode(t, rec)["error"].(string)
	assert.Contains(t, message, "code must be at least 10")
	assert.Contains(t, message, "learning notes must be at least 20")
}

func TestCompleteTask_SanitizesScriptTags(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	taskID := env.createTask(t, goalID, "Day 1 work")

	rec := env.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", testToken, gin.H{
		"code":           "const x = 42 <script>alert('xss')</script> // done",
		"learning_notes": "Notes long enough to pass validation checks.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	task := decode(t, rec)["task"].(map[string]any)
	code := task["completion"].(map[string]any)["code"].(string)
	assert.NotContains(t, code, "<script>")
	assert.Contains(t, code, "const x = 42")
}

func TestCompleteTask_RepoURL(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	taskID := env.createTask(t, goalID, "Day 1 work")

	rec := env.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", testToken, gin.H{
		"code":           "fmt.Println(\"published\")",
		"learning_notes": "Pushed the finished snippet up to a public repo.",
		"repo_url":       "https://gitlab.com/someone/project",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", testToken, gin.H{
		"code":           "fmt.Println(\"published\")",
		"learning_notes": "Pushed the finished snippet up to a public repo.",
		"repo_url":       "https://github.com/someone/project",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	task := decode(t, rec)["task"].(map[string]any)
	resources := task["resources"].([]any)
	require.Len(t, resources, 1)
	assert.Equal(t, "https://github.com/someone/project", resources[0].(map[string]any)["url"])
}

func TestGenerateContent(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	taskID := env.createTask(t, goalID, "Day 1 work")

	// Incomplete tasks have nothing to generate from.
	rec := env.do(t, http.MethodPost, "/api/content/generate", testToken, gin.H{"task_id": taskID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.completeTask(t, taskID)

	// Style references flow through to the generator.
	rec = env.do(t, http.MethodPost, "/api/examples", testToken, gin.H{
		"type": "learning", "platform": "x", "content": "my x voice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/content/generate", testToken, gin.H{"task_id": taskID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	generated := body["generated"].(map[string]any)
	assert.Equal(t, "x post", generated["x_post"])
	counts := body["character_counts"].(map[string]any)
	assert.Equal(t, float64(len("linkedin post")), counts["linkedin"])

	assert.Equal(t, "my x voice", env.generator.lastInput.Examples.X)
	assert.Contains(t, env.generator.lastInput.Code, "fmt.Println")
}

func TestGenerateContent_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Week 1", "learning")
	taskID := env.createTask(t, goalID, "Day 1 work")
	env.completeTask(t, taskID)

	env.generator.err = apperr.New(apperr.Upstream, "text generation failed")
	rec := env.do(t, http.MethodPost, "/api/content/generate", testToken, gin.H{"task_id": taskID})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_error", decode(t, rec)["code"])
}

func TestGoalWrapup(t *testing.T) {
	env := newTestEnv(t)
	goalID := env.createGoal(t, "Ship week", "product")

	var taskIDs []string
	for i := 0; i < 7; i++ {
		taskIDs = append(taskIDs, env.createTask(t, goalID, "daily work"))
	}

	// An unfinished week has no wrap-up.
	rec := env.do(t, http.MethodGet, "/api/goals/"+goalID+"/wrapup", testToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, id := range taskIDs {
		env.completeTask(t, id)
	}

	rec = env.do(t, http.MethodGet, "/api/goals/"+goalID+"/wrapup", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Ship week", body["title"])
	assert.Equal(t, "week blog", body["generated"].(map[string]any)["blog_post"])
	assert.Len(t, env.generator.lastWrapup.Days, 7)
	assert.Equal(t, "Ship week", env.generator.lastWrapup.WeekTitle)
}

func TestExamplePosts_CapSurfacesAsConflict(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/examples", testToken, gin.H{
			"type": "learning", "platform": "linkedin", "content": "voice sample",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/examples", testToken, gin.H{
		"type": "learning", "platform": "linkedin", "content": "a third one",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec)["error"].(string), "maximum 2 example posts")
}

func TestCheckoutAndVerify(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/checkout", testToken, gin.H{"product_key": "premium_monthly"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	sessionID := body["session_id"].(string)
	assert.True(t, strings.HasPrefix(body["checkout_url"].(string), "https://checkout.example.com/"))

	// Verification before the provider settles the payment is rejected.
	rec = env.do(t, http.MethodPost, "/api/payments/verify", testToken, gin.H{
		"session_id": sessionID, "product_key": "premium_monthly",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	session := env.provider.sessions[sessionID]
	session.PaymentStatus = "succeeded"
	session.PaymentID = "pay_1"
	env.provider.sessions[sessionID] = session
	env.provider.payments["pay_1"] = payments.ProviderPayment{
		PaymentID: "pay_1", TotalAmount: 1000, Currency: "USD", CustomerEmail: "dev@example.com",
	}

	rec = env.do(t, http.MethodPost, "/api/payments/verify", testToken, gin.H{
		"session_id": sessionID, "product_key": "premium_monthly",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	verified := decode(t, rec)
	assert.Equal(t, true, verified["verified"])
	payment := verified["payment"].(map[string]any)
	assert.Equal(t, float64(1000), payment["amount"])
	assert.Equal(t, "premium_monthly", payment["product_id"])

	// A second verify finds the recorded payment instead of inserting again.
	rec = env.do(t, http.MethodPost, "/api/payments/verify", testToken, gin.H{
		"session_id": sessionID, "product_key": "premium_monthly",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["already_recorded"])

	rec = env.do(t, http.MethodGet, "/api/payments", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestCheckout_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/checkout", testToken, gin.H{"product_key": "lifetime_deal"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownAPIRouteIs404(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/nonsense", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["code"])
}
