package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	log         *logrus.Logger
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string, log *logrus.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		s.log.Debug("telegram bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		s.log.Debug("telegram admin chat id not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// ProductNotification describes a product waiting for admin approval.
type ProductNotification struct {
	ProductID   uint
	Name        string
	Price       int
	CompanyName string
	ImageCount  int
}

// FormatPrice formats a won amount with thousand separators.
func FormatPrice(amount int) string {
	str := fmt.Sprintf("%d", amount)
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	var result strings.Builder
	if negative {
		result.WriteString("-")
	}
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " KRW"
}

// NotifyPendingProduct tells the admin chat that a product awaits approval.
func (s *TelegramService) NotifyPendingProduct(p ProductNotification) error {
	message := fmt.Sprintf(`<b>New product awaiting approval</b>
<b>ID:</b> %d
<b>Company:</b> %s
<b>Name:</b> %s
<b>Price:</b> %s
<b>Images:</b> %d`,
		p.ProductID,
		html.EscapeString(p.CompanyName),
		html.EscapeString(p.Name),
		FormatPrice(p.Price),
		p.ImageCount,
	)

	return s.SendToAdmin(message)
}
