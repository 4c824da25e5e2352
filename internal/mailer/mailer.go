package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const apiURL = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers verification emails through the Brevo transactional API.
type Mailer interface {
	IsConfigured() bool
	SendVerificationCode(ctx context.Context, toEmail, name, code string) error
}

type Client struct {
	apiKey      string
	senderEmail string
	senderName  string
	httpClient  *http.Client
	configured  bool
}

func NewClient(apiKey, senderEmail, senderName string) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && senderEmail != "" {
		c.apiKey = apiKey
		c.senderEmail = senderEmail
		c.senderName = senderName
		if c.senderName == "" {
			c.senderName = "Budget Tracker"
		}
		c.configured = true
	}
	return c
}

func (c *Client) IsConfigured() bool {
	return c.configured
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func (c *Client) SendVerificationCode(ctx context.Context, toEmail, name, code string) error {
	if !c.configured {
		return fmt.Errorf("mailer not configured, verification email to %s skipped", toEmail)
	}

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Welcome to Budget Tracker, %s!</h2>
			<p>Please verify your email address by entering the code below:</p>
			<div style="background-color: #F3F4F6; padding: 20px; border-radius: 8px; text-align: center;">
				<h1 style="font-size: 32px; letter-spacing: 8px; margin: 0;">%s</h1>
			</div>
			<p style="color: #6B7280; font-size: 14px;">This code will expire in 10 minutes.</p>
			<p style="color: #6B7280; font-size: 14px;">If you didn't create an account, please ignore this email.</p>
		</div>`, name, code)

	body := sendEmailReq{
		Sender:      map[string]string{"email": c.senderEmail, "name": c.senderName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     "Verify Your Budget Tracker Account",
		HTMLContent: html,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("email API error: status %d", resp.StatusCode)
	}
	return nil
}
