package dtos

import "time"

type CreateLinkRequest struct {
	AppScheme   string `json:"app_scheme"`
	AppPackage  string `json:"app_package"`
	FallbackURL string `json:"fallback_url"`
	CustomPath  string `json:"custom_path"`
	Title       string `json:"title"`
}

type CreateLinkResponse struct {
	ID           string `json:"id"`
	ShortURL     string `json:"short_url"`
	QRCode       string `json:"qr_code"`
	AnalyticsURL string `json:"analytics_url"`
}

type LinkResponse struct {
	ID          string    `json:"id"`
	AppScheme   string    `json:"app_scheme"`
	AppPackage  string    `json:"app_package"`
	DeepLink    string    `json:"deep_link"`
	FallbackURL string    `json:"fallback_url"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
}

type LinkListItem struct {
	ID          string    `json:"id"`
	ShortURL    string    `json:"short_url"`
	Title       string    `json:"title"`
	DeepLink    string    `json:"deep_link"`
	FallbackURL string    `json:"fallback_url"`
	CreatedAt   time.Time `json:"created_at"`
	Scans       int64     `json:"scans"`
}
