package meetings

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/Hieupu/ATPS-BE-sub002/configs"
)

// ZoomService creates and deletes meeting occurrences through Zoom's
// server-to-server OAuth API. All callers treat it as best-effort: a failed
// Zoom call never blocks session scheduling.
type ZoomService struct {
	client *http.Client
}

func NewZoomService() *ZoomService {
	return &ZoomService{client: &http.Client{Timeout: 10 * time.Second}}
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *ZoomService) getAccessToken() (string, error) {
	accountID := config.Config("ZOOM_ACCOUNT_ID")
	clientID := config.Config("ZOOM_CLIENT_ID")
	clientSecret := config.Config("ZOOM_CLIENT_SECRET")

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", accountID)

	req, err := http.NewRequest("POST", "https://zoom.us/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get zoom access token, status: %s", resp.Status)
	}

	var tokenResp accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	return tokenResp.AccessToken, nil
}

type Meeting struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

func (s *ZoomService) CreateMeeting(topic string, startTime time.Time, durationMin int) (*Meeting, error) {
	accessToken, err := s.getAccessToken()
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"topic":      topic,
		"type":       2,
		"start_time": startTime.UTC().Format("2006-01-02T15:04:05Z"),
		"duration":   durationMin,
		"settings": map[string]interface{}{
			"join_before_host": true,
			"waiting_room":     false,
		},
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "https://api.zoom.us/v2/users/me/meetings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create zoom meeting, status %s: %s", resp.Status, string(respBody))
	}

	var meeting Meeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (s *ZoomService) DeleteMeeting(meetingID string) error {
	accessToken, err := s.getAccessToken()
	if err != nil {
		return err
	}

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("https://api.zoom.us/v2/meetings/%s", meetingID), nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete zoom meeting, status: %s", resp.Status)
	}
	return nil
}
