package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/models"
)

// StatusAccepted is the provider status code for a queued message.
const StatusAccepted = "202"

// StatusThrottled is reported when a phone number asked for codes too often.
const StatusThrottled = "429"

const maxCodeAttempts = 5

// SendResult carries the provider's own status code for a send request.
type SendResult struct {
	StatusCode string
}

// CheckStatus is the outcome of a code confirmation.
type CheckStatus int

const (
	CheckSuccess CheckStatus = iota
	CheckWrongCode
	CheckFailed
)

// SMSGateway sends and confirms phone verification codes.
type SMSGateway interface {
	SendCode(ctx context.Context, phone string) (SendResult, error)
	CheckCode(ctx context.Context, phone, code string) (CheckStatus, error)
}

// SensGateway stores codes in the database and delivers them through an
// NCP SENS compatible SMS API.
type SensGateway struct {
	db       *gorm.DB
	cfg      config.SMSConfig
	client   *http.Client
	throttle *PhoneThrottle
	log      *logrus.Logger
	now      func() time.Time
}

// NewSensGateway constructs a SensGateway.
func NewSensGateway(db *gorm.DB, cfg config.SMSConfig, log *logrus.Logger) *SensGateway {
	return &SensGateway{
		db:       db,
		cfg:      cfg,
		client:   &http.Client{Timeout: 15 * time.Second},
		throttle: NewPhoneThrottle(cfg.PerMinute),
		log:      log,
		now:      time.Now,
	}
}

// SendCode generates a fresh code for phone and asks the provider to deliver it.
func (g *SensGateway) SendCode(ctx context.Context, phone string) (SendResult, error) {
	if !g.throttle.Allow(phone) {
		g.log.WithField("phone", phone).Warn("verification code request throttled")
		return SendResult{StatusCode: StatusThrottled}, nil
	}

	code, err := generateVerificationCode()
	if err != nil {
		return SendResult{}, fmt.Errorf("generate verification code: %w", err)
	}

	record := models.SMSVerification{
		Phone:     phone,
		Code:      code,
		ExpiresAt: g.now().Add(g.cfg.CodeTTL),
	}
	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		return SendResult{}, fmt.Errorf("store verification code: %w", err)
	}

	if !g.cfg.Enabled {
		g.log.WithFields(logrus.Fields{"phone": phone, "code": code}).Info("sms disabled, verification code not delivered")
		return SendResult{StatusCode: StatusAccepted}, nil
	}

	status, err := g.deliver(ctx, phone, fmt.Sprintf("[ANGAGU] verification code: %s", code))
	if err != nil {
		return SendResult{}, err
	}
	return SendResult{StatusCode: status}, nil
}

// CheckCode confirms the most recent unused code sent to phone.
func (g *SensGateway) CheckCode(ctx context.Context, phone, code string) (CheckStatus, error) {
	var record models.SMSVerification
	err := g.db.WithContext(ctx).
		Where("phone = ? AND verified = ?", phone, false).
		Order("id desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckFailed, nil
		}
		return CheckFailed, fmt.Errorf("load verification code: %w", err)
	}

	if g.now().After(record.ExpiresAt) || record.Attempts >= maxCodeAttempts {
		return CheckFailed, nil
	}

	if record.Code != strings.TrimSpace(code) {
		if err := g.db.WithContext(ctx).Model(&record).
			Update("attempts", gorm.Expr("attempts + ?", 1)).Error; err != nil {
			return CheckFailed, fmt.Errorf("count verification attempt: %w", err)
		}
		return CheckWrongCode, nil
	}

	now := g.now()
	if err := g.db.WithContext(ctx).Model(&record).Updates(map[string]interface{}{
		"verified": true,
		"used_at":  &now,
	}).Error; err != nil {
		return CheckFailed, fmt.Errorf("mark verification code used: %w", err)
	}

	return CheckSuccess, nil
}

type sensMessage struct {
	To string `json:"to"`
}

type sensRequest struct {
	Type     string        `json:"type"`
	From     string        `json:"from"`
	Content  string        `json:"content"`
	Messages []sensMessage `json:"messages"`
}

type sensResponse struct {
	StatusCode string `json:"statusCode"`
	RequestID  string `json:"requestId"`
}

func (g *SensGateway) deliver(ctx context.Context, phone, content string) (string, error) {
	path := fmt.Sprintf("/sms/v2/services/%s/messages", url.PathEscape(g.cfg.ServiceID))

	payload, err := json.Marshal(sensRequest{
		Type:     "SMS",
		From:     g.cfg.Sender,
		Content:  content,
		Messages: []sensMessage{{To: phone}},
	})
	if err != nil {
		return "", fmt.Errorf("sms request marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(g.cfg.BaseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("sms request build: %w", err)
	}

	timestamp := strconv.FormatInt(g.now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("x-ncp-apigw-timestamp", timestamp)
	req.Header.Set("x-ncp-iam-access-key", g.cfg.AccessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", g.signature(http.MethodPost, path, timestamp))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var parsed sensResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.StatusCode == "" {
		g.log.WithFields(logrus.Fields{"status": resp.StatusCode, "body": string(body)}).Warn("unexpected sms provider response")
		return strconv.Itoa(resp.StatusCode), nil
	}

	g.log.WithFields(logrus.Fields{"phone": phone, "request_id": parsed.RequestID, "status": parsed.StatusCode}).Info("verification code sent")
	return parsed.StatusCode, nil
}

// signature implements the SENS v2 request signature:
// base64(HMAC-SHA256(secret, "METHOD PATH\nTIMESTAMP\nACCESS_KEY")).
func (g *SensGateway) signature(method, path, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(method + " " + path + "\n" + timestamp + "\n" + g.cfg.AccessKey))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
