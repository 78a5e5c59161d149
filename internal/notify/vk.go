package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// VKClient talks to the VK Bots API. It implements Notifier for price-drop
// sends and the bot's Messenger contract for interactive replies.
type VKClient struct {
	apiURL     string
	token      string
	version    string
	httpClient *http.Client
}

// VKOption configures a VKClient.
type VKOption func(*VKClient)

// WithVKHTTPClient sets a custom HTTP client.
func WithVKHTTPClient(hc *http.Client) VKOption {
	return func(c *VKClient) {
		c.httpClient = hc
	}
}

// NewVKClient creates a VK API client.
func NewVKClient(apiURL, token, version string, opts ...VKOption) *VKClient {
	c := &VKClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		version:    version,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// vkResponse is the envelope every VK method call returns.
type vkResponse struct {
	Response json.RawMessage `json:"response"`
	Error    *vkError        `json:"error"`
}

type vkError struct {
	Code int    `json:"error_code"`
	Msg  string `json:"error_msg"`
}

// call invokes a VK API method and decodes the response payload into dst.
func (c *VKClient) call(ctx context.Context, method string, params url.Values, dst any) error {
	params.Set("access_token", c.token)
	params.Set("v", c.version)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.apiURL+"/"+method,
		strings.NewReader(params.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", method, resp.StatusCode)
	}

	var envelope vkResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}

	if envelope.Error != nil {
		return fmt.Errorf("%s: %s (code %d)", method, envelope.Error.Msg, envelope.Error.Code)
	}

	if dst != nil && envelope.Response != nil {
		if err := json.Unmarshal(envelope.Response, dst); err != nil {
			return fmt.Errorf("decoding %s payload: %w", method, err)
		}
	}

	return nil
}

// Send delivers a plain text message to a user.
func (c *VKClient) Send(ctx context.Context, userID int64, text string) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(userID, 10))
	params.Set("message", text)
	params.Set("random_id", "0")

	if err := c.call(ctx, "messages.send", params, nil); err != nil {
		return &DeliverError{UserID: userID, Err: err}
	}
	return nil
}

// SendMessage delivers a message with an optional inline keyboard.
func (c *VKClient) SendMessage(ctx context.Context, peerID int64, text string, keyboard []byte) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("message", text)
	params.Set("random_id", "0")
	if keyboard != nil {
		params.Set("keyboard", string(keyboard))
	}

	if err := c.call(ctx, "messages.send", params, nil); err != nil {
		return &DeliverError{UserID: peerID, Err: err}
	}
	return nil
}

// EditMessage rewrites an existing conversation message in place.
func (c *VKClient) EditMessage(
	ctx context.Context,
	peerID, messageID int64,
	text string,
	keyboard []byte,
	attachment string,
) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("conversation_message_id", strconv.FormatInt(messageID, 10))
	params.Set("message", text)
	params.Set("random_id", "0")
	params.Set("dont_parse_links", "1")
	if keyboard != nil {
		params.Set("keyboard", string(keyboard))
	}
	if attachment != "" {
		params.Set("attachment", attachment)
	}

	if err := c.call(ctx, "messages.edit", params, nil); err != nil {
		return &DeliverError{UserID: peerID, Err: err}
	}
	return nil
}

// AnswerCallback shows a snackbar acknowledgment for a callback button press.
func (c *VKClient) AnswerCallback(ctx context.Context, eventID string, userID, peerID int64, text string) error {
	eventData, err := json.Marshal(map[string]string{
		"type": "show_snackbar",
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("marshaling event data: %w", err)
	}

	params := url.Values{}
	params.Set("event_id", eventID)
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("event_data", string(eventData))

	if err := c.call(ctx, "messages.sendMessageEventAnswer", params, nil); err != nil {
		return &DeliverError{UserID: userID, Err: err}
	}
	return nil
}

type uploadServer struct {
	UploadURL string `json:"upload_url"`
}

type uploadResult struct {
	Server int    `json:"server"`
	Photo  string `json:"photo"`
	Hash   string `json:"hash"`
}

type savedPhoto struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"owner_id"`
}

// UploadPhoto pushes image bytes through the VK message-photo upload flow
// and returns an attachment reference ("photo<owner>_<id>").
func (c *VKClient) UploadPhoto(ctx context.Context, peerID int64, image []byte) (string, error) {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))

	var server uploadServer
	if err := c.call(ctx, "photos.getMessagesUploadServer", params, &server); err != nil {
		return "", err
	}

	result, err := c.uploadFile(ctx, server.UploadURL, image)
	if err != nil {
		return "", err
	}

	saveParams := url.Values{}
	saveParams.Set("server", strconv.Itoa(result.Server))
	saveParams.Set("photo", result.Photo)
	saveParams.Set("hash", result.Hash)

	var saved []savedPhoto
	if err := c.call(ctx, "photos.saveMessagesPhoto", saveParams, &saved); err != nil {
		return "", err
	}
	if len(saved) == 0 {
		return "", fmt.Errorf("photos.saveMessagesPhoto returned no photos")
	}

	return fmt.Sprintf("photo%d_%d", saved[0].OwnerID, saved[0].ID), nil
}

func (c *VKClient) uploadFile(ctx context.Context, uploadURL string, image []byte) (*uploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("photo", "photo.jpg")
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("writing image bytes: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upload server returned %d: %s", resp.StatusCode, respBody)
	}

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return &result, nil
}
