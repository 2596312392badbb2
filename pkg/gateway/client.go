// Package gateway is the client for the third-party media generation API.
// The API is asynchronous: every dispatch returns an opaque task id which is
// resolved later by polling or by a callback to our backend.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	client      *http.Client
}

func NewClient(baseURL, apiKey, callbackURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type MusicRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style,omitempty"`
	Title        string `json:"title,omitempty"`
	Model        string `json:"model"`
	Instrumental bool   `json:"instrumental"`
	CallbackURL  string `json:"callback_url,omitempty"`
}

type ExtendRequest struct {
	AudioTaskID string `json:"audio_task_id"`
	Prompt      string `json:"prompt,omitempty"`
	Model       string `json:"model"`
	ContinueAt  int    `json:"continue_at"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type WAVRequest struct {
	AudioTaskID string `json:"audio_task_id"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type VideoRequest struct {
	AudioTaskID string `json:"audio_task_id"`
	Resolution  string `json:"resolution"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type ImageRequest struct {
	Prompt      string `json:"prompt"`
	Engine      string `json:"engine"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type LyricsRequest struct {
	Prompt      string `json:"prompt"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// TaskStatus is the gateway's view of a dispatched task.
type TaskStatus struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"` // pending, processing, complete, failed
	ResultURL string `json:"result_url,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

type dispatchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

type statusResponse struct {
	Code    int        `json:"code"`
	Message string     `json:"msg"`
	Data    TaskStatus `json:"data"`
}

func (c *Client) GenerateMusic(req MusicRequest) (string, error) {
	req.CallbackURL = c.callbackURL
	return c.dispatch("/api/v1/generate", req)
}

func (c *Client) ExtendMusic(req ExtendRequest) (string, error) {
	req.CallbackURL = c.callbackURL
	return c.dispatch("/api/v1/generate/extend", req)
}

func (c *Client) ConvertToWAV(req WAVRequest) (string, error) {
	req.CallbackURL = c.callbackURL
	return c.dispatch("/api/v1/wav/generate", req)
}

func (c *Client) GenerateVideo(req VideoRequest) (string, error) {
	req.CallbackURL = c.callbackURL
	return c.dispatch("/api/v1/mp4/generate", req)
}

func (c *Client) GenerateImage(req ImageRequest) (string, error) {
	req.CallbackURL = c.callbackURL
	return c.dispatch("/api/v1/image/generate", req)
}

func (c *Client) GenerateLyrics(req LyricsRequest) (string, error) {
	req.CallbackURL = c.callbackURL
	return c.dispatch("/api/v1/lyrics", req)
}

func (c *Client) GetTask(taskID string) (*TaskStatus, error) {
	httpReq, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/v1/generate/record-info?taskId=%s", c.baseURL, taskID), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var result statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if result.Code != 200 {
		return nil, fmt.Errorf("gateway error: %s", result.Message)
	}

	return &result.Data, nil
}

func (c *Client) dispatch(path string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	// Correlates our dispatch with the gateway's request logs.
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var result dispatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if result.Code != 200 {
		return "", fmt.Errorf("gateway error: %s", result.Message)
	}
	if result.Data.TaskID == "" {
		return "", fmt.Errorf("gateway returned no task id")
	}

	return result.Data.TaskID, nil
}
