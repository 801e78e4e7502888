package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Slide is one unit of the carousel as the server knows it.
type Slide struct {
	Index       int     `json:"index"`
	Title       *string `json:"title,omitempty"`
	Body        string  `json:"body"`
	ImagePrompt string  `json:"image_prompt"`
	ImageURL    string  `json:"image_url"`
	RenderedURL string  `json:"rendered_url"`
	Style       Style   `json:"style"`
}

// Project is the authoritative carousel snapshot returned by the server.
type Project struct {
	ID         string  `json:"id"`
	Topic      string  `json:"topic"`
	TemplateID string  `json:"template_id"`
	Slides     []Slide `json:"slides"`
}

// Template is a visual style preset offered by the server.
type Template struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
	Style      Style  `json:"style"`
}

// Client talks to the studio server. Every mutation returns the updated
// snapshot so callers can reconcile local state.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL repoints the client, used when the config file changes.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *Client) do(method, path string, payload, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// 5MB is plenty for any snapshot; images go through FetchImage.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: server returned %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) CreateProject(topic string) (*Project, error) {
	var p Project
	err := c.do("POST", "/projects", map[string]string{"topic": topic}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetProject(projectID string) (*Project, error) {
	var p Project
	err := c.do("GET", "/projects/"+projectID, nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GenerateSlides asks the server to draft slide texts from the topic.
func (c *Client) GenerateSlides(projectID string) (*Project, error) {
	var p Project
	err := c.do("POST", "/projects/"+projectID+"/generate", nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListTemplates() ([]Template, error) {
	var out struct {
		Templates []Template `json:"templates"`
	}
	if err := c.do("GET", "/templates", nil, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

func (c *Client) SelectTemplate(projectID, templateID string) (*Project, error) {
	var p Project
	err := c.do("POST", "/projects/"+projectID+"/template",
		map[string]string{"template_id": templateID}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SavePrompt(projectID string, slide int, prompt string) (*Project, error) {
	var p Project
	err := c.do("POST", slidePath(projectID, slide, "prompt"),
		map[string]string{"prompt": prompt}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GenerateImage produces a background image for one slide.
func (c *Client) GenerateImage(projectID string, slide int) (*Project, error) {
	var p Project
	err := c.do("POST", slidePath(projectID, slide, "image"), nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveText persists a slide's title and body. A nil title means the slide
// has no title region.
func (c *Client) SaveText(projectID string, slide int, title *string, body string) (*Project, error) {
	payload := struct {
		Title *string `json:"title"`
		Body  string  `json:"body"`
	}{Title: title, Body: body}
	var p Project
	err := c.do("POST", slidePath(projectID, slide, "text"), payload, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveStyle persists a partial style update for one slide.
func (c *Client) SaveStyle(projectID string, slide int, patch StylePatch) (*Project, error) {
	var p Project
	err := c.do("POST", slidePath(projectID, slide, "style"), patch, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RenderSlide asks the server to recomposite one slide from its persisted
// state and returns the slide with a fresh rendered image reference.
func (c *Client) RenderSlide(projectID string, slide int) (*Slide, error) {
	var s Slide
	err := c.do("POST", slidePath(projectID, slide, "render"), nil, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyStyleAndRenderAll sets the style on every slide and re-renders the
// whole carousel in one server-side operation.
func (c *Client) ApplyStyleAndRenderAll(projectID string, style Style) (*Project, error) {
	var p Project
	err := c.do("POST", "/projects/"+projectID+"/style", style, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ExportArchive returns the URL of a server-generated archive of the
// rendered carousel.
func (c *Client) ExportArchive(projectID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do("POST", "/projects/"+projectID+"/export", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// FetchImage downloads and decodes a background or rendered image.
func (c *Client) FetchImage(url string) (image.Image, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: server returned %s", resp.Status)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func slidePath(projectID string, slide int, op string) string {
	return fmt.Sprintf("/projects/%s/slides/%d/%s", projectID, slide, op)
}
