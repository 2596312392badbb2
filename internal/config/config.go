package config

import (
	"os"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

type GatewayConfig struct {
	BaseURL       string
	APIKey        string
	CallbackToken string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type Config struct {
	R2               R2Config
	Gateway          GatewayConfig
	Stripe           StripeConfig
	CloudflareImages struct {
		AccountID string
		Token     string
		Hash      string
	}
	ShareBaseURL string
}

func LoadConfig() *Config {
	cfg := &Config{}

	cfg.R2.AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.R2.AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	cfg.R2.SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	cfg.R2.Bucket = os.Getenv("R2_BUCKET")
	cfg.R2.PublicURL = os.Getenv("R2_PUBLIC_URL")

	cfg.Gateway.BaseURL = os.Getenv("GENERATION_API_URL")
	cfg.Gateway.APIKey = os.Getenv("GENERATION_API_KEY")
	cfg.Gateway.CallbackToken = os.Getenv("GENERATION_CALLBACK_TOKEN")

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.SuccessURL = os.Getenv("STRIPE_SUCCESS_URL")
	cfg.Stripe.CancelURL = os.Getenv("STRIPE_CANCEL_URL")

	cfg.CloudflareImages.AccountID = os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	cfg.CloudflareImages.Token = os.Getenv("CLOUDFLARE_IMAGES_TOKEN")
	cfg.CloudflareImages.Hash = os.Getenv("CLOUDFLARE_IMAGES_HASH")

	cfg.ShareBaseURL = os.Getenv("SHARE_BASE_URL")
	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = "https://melodia.app/t/"
	}

	return cfg
}
