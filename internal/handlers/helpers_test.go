package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/database"
	"github.com/example/angagu/internal/handlers"
	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/routes"
	"github.com/example/angagu/internal/services"
	"github.com/example/angagu/internal/storage"
	"github.com/example/angagu/internal/utils"
)

const testSecret = "test-secret"

type fakeSMS struct {
	mu         sync.Mutex
	sendStatus string
	sendErr    error
	check      services.CheckStatus
	checkErr   error
	sent       []string
}

func (f *fakeSMS) SendCode(_ context.Context, phone string) (services.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, phone)
	if f.sendErr != nil {
		return services.SendResult{}, f.sendErr
	}
	return services.SendResult{StatusCode: f.sendStatus}, nil
}

func (f *fakeSMS) CheckCode(_ context.Context, _, _ string) (services.CheckStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check, f.checkErr
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	sms     *fakeSMS
	cfg     *config.Config
	uploads string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		JWTSecret:       testSecret,
		TokenExpires:    time.Hour,
		VerificationTTL: 10 * time.Minute,
	}

	uploads := t.TempDir()
	uploader, err := storage.NewLocalUploader(uploads, "/uploads")
	require.NoError(t, err)

	sms := &fakeSMS{sendStatus: services.StatusAccepted, check: services.CheckSuccess}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	routes.Register(app, routes.Handlers{
		Customer: handlers.NewCustomerHandler(repository.NewCustomerRepository(db), sms, services.NewMemoryLedger(), cfg, log),
		Company:  handlers.NewCompanyHandler(repository.NewCompanyRepository(db), sms, uploader, nil, cfg, log),
		Admin:    handlers.NewAdminHandler(repository.NewAdminRepository(db), cfg),
	}, cfg.JWTSecret)

	return &testEnv{app: app, db: db, sms: sms, cfg: cfg, uploads: uploads}
}

type response struct {
	Code    int
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Raw     string
}

func (r response) errCode(t *testing.T) int {
	t.Helper()
	var body struct {
		ErrCode int `json:"errCode"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &body))
	return body.ErrCode
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{Code: resp.StatusCode, Raw: string(raw)}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

func bearer(t *testing.T, id uint, typ utils.PrincipalType) map[string]string {
	t.Helper()
	token, err := utils.GenerateToken(testSecret, utils.Principal{ID: id, Type: typ}, "", time.Hour)
	require.NoError(t, err)
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func (e *testEnv) seedCustomer(t *testing.T, email, phone, password string) models.Customer {
	t.Helper()
	c := models.Customer{Email: email, Name: "kim", PhoneNumber: phone, Password: hashed(t, password)}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

func (e *testEnv) seedCompany(t *testing.T, email, phone, password string) models.Company {
	t.Helper()
	c := models.Company{Email: email, Name: "angagu furniture", PhoneNumber: phone, Password: hashed(t, password)}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

func (e *testEnv) seedProduct(t *testing.T, companyID uint, approved bool, stock int) models.Product {
	t.Helper()
	p := models.Product{CompanyID: companyID, Name: "sofa", Price: 120000, Stock: stock, Approved: approved, ModelURL: "/uploads/sofa.glb"}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}
