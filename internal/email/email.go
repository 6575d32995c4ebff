// Package email delivers account verification mail.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Sender interface {
	SendVerification(ctx context.Context, to, username, token string) error
}

// VerificationURL is the frontend page that posts the token back to the API.
func VerificationURL(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

var verificationTmpl = template.Must(template.New("verify").Parse(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1>✨ 欢迎加入 Stellar Journal</h1>
  <p>嗨 {{.Username}}，</p>
  <p>感谢您注册 Stellar Journal！请点击下方链接验证您的邮箱地址：</p>
  <p><a href="{{.URL}}">验证邮箱</a></p>
  <p>如果链接无法点击，请复制以下地址到浏览器：<br>{{.URL}}</p>
  <p>此链接将在 24 小时后失效。如果您没有注册此账号，请忽略此邮件。</p>
</body>
</html>`))

func renderVerification(username, link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, struct{ Username, URL string }{username, link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ResendSender posts mail through the Resend HTTP API.
type ResendSender struct {
	apiKey      string
	from        string
	frontendURL string
	endpoint    string
	httpClient  *http.Client
}

func NewResendSender(apiKey, fromAddr, fromName, frontendURL string) *ResendSender {
	from := fromAddr
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromAddr)
	}
	return &ResendSender{
		apiKey:      apiKey,
		from:        from,
		frontendURL: frontendURL,
		endpoint:    "https://api.resend.com/emails",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) SendVerification(ctx context.Context, to, username, token string) error {
	html, err := renderVerification(username, VerificationURL(s.frontendURL, token))
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	payload, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "验证您的 Stellar Journal 邮箱",
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// LogSender writes the verification link to the log instead of sending mail.
type LogSender struct {
	Logger      *zap.Logger
	FrontendURL string
}

func (s LogSender) SendVerification(_ context.Context, to, username, token string) error {
	s.Logger.Info("verification email (not sent)",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("link", VerificationURL(s.FrontendURL, token)))
	return nil
}
