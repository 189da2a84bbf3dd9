package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase   = "https://www.googleapis.com/drive/v3"
	defaultSheetBase = "https://docs.google.com/spreadsheets/d"

	itemFields = "id,name,mimeType,webViewLink,shortcutDetails"
	listPage   = 1000
)

// sheetExportParams pins the spreadsheet PDF layout: A4 portrait, fit to
// width, gridlines and notes visible, frozen rows/cols repeated on every page.
var sheetExportParams = url.Values{
	"format":     {"pdf"},
	"portrait":   {"true"},
	"size":       {"A4"},
	"scale":      {"2"},
	"gridlines":  {"true"},
	"printnotes": {"true"},
	"sheetnames": {"false"},
	"printtitle": {"false"},
	"fzr":        {"true"},
	"fzc":        {"true"},
}

// Client talks to the Drive v3 REST surface with a per-request OAuth token
type Client struct {
	http      *http.Client
	token     string
	apiBase   string
	sheetBase string
}

// Option adjusts a Client, mainly for tests pointing it at a local server
type Option func(*Client)

// WithBaseURLs overrides the remote endpoints
func WithBaseURLs(apiBase, sheetBase string) Option {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(apiBase, "/")
		c.sheetBase = strings.TrimRight(sheetBase, "/")
	}
}

// WithHTTPClient overrides the transport
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a gateway bound to one user's access token
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 2 * time.Minute},
		token:     token,
		apiBase:   defaultAPIBase,
		sheetBase: defaultSheetBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MimeType        string `json:"mimeType"`
	WebViewLink     string `json:"webViewLink"`
	ShortcutDetails *struct {
		TargetID       string `json:"targetId"`
		TargetMimeType string `json:"targetMimeType"`
	} `json:"shortcutDetails"`
}

func (a apiItem) toItem() Item {
	it := Item{ID: a.ID, Name: a.Name, MimeType: a.MimeType, Link: a.WebViewLink}
	if a.ShortcutDetails != nil {
		it.ShortcutTargetID = a.ShortcutDetails.TargetID
		it.ShortcutTargetMime = a.ShortcutDetails.TargetMimeType
	}
	return it
}

func (c *Client) GetMetadata(ctx context.Context, id string) (Item, error) {
	q := url.Values{
		"fields":            {itemFields},
		"supportsAllDrives": {"true"},
	}
	var out apiItem
	if err := c.getJSON(ctx, fmt.Sprintf("%s/files/%s?%s", c.apiBase, url.PathEscape(id), q.Encode()), &out); err != nil {
		return Item{}, fmt.Errorf("get metadata %s: %w", id, err)
	}
	return out.toItem(), nil
}

func (c *Client) ListChildren(ctx context.Context, parentID, pageToken string) (ChildPage, error) {
	q := url.Values{
		"q":                         {fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(parentID))},
		"fields":                    {"nextPageToken, files(" + itemFields + ")"},
		"pageSize":                  {fmt.Sprint(listPage)},
		"supportsAllDrives":         {"true"},
		"includeItemsFromAllDrives": {"true"},
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	var out struct {
		NextPageToken string    `json:"nextPageToken"`
		Files         []apiItem `json:"files"`
	}
	if err := c.getJSON(ctx, c.apiBase+"/files?"+q.Encode(), &out); err != nil {
		return ChildPage{}, fmt.Errorf("list children of %s: %w", parentID, err)
	}
	page := ChildPage{NextPageToken: out.NextPageToken}
	for _, f := range out.Files {
		page.Items = append(page.Items, f.toItem())
	}
	return page, nil
}

func (c *Client) FindChildrenByName(ctx context.Context, parentID, name string) ([]Item, error) {
	q := url.Values{
		"q": {fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
			escapeQuery(name), escapeQuery(parentID))},
		"fields":                    {"files(" + itemFields + ")"},
		"supportsAllDrives":         {"true"},
		"includeItemsFromAllDrives": {"true"},
	}
	var out struct {
		Files []apiItem `json:"files"`
	}
	if err := c.getJSON(ctx, c.apiBase+"/files?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("find %q under %s: %w", name, parentID, err)
	}
	var items []Item
	for _, f := range out.Files {
		items = append(items, f.toItem())
	}
	return items, nil
}

func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (Item, error) {
	body := map[string]interface{}{
		"name":     name,
		"mimeType": MimeFolder,
		"parents":  []string{parentID},
	}
	q := url.Values{
		"fields":            {itemFields},
		"supportsAllDrives": {"true"},
	}
	var out apiItem
	if err := c.postJSON(ctx, c.apiBase+"/files?"+q.Encode(), body, &out); err != nil {
		return Item{}, fmt.Errorf("create folder %q under %s: %w", name, parentID, err)
	}
	return out.toItem(), nil
}

func (c *Client) CopyAsSpreadsheet(ctx context.Context, sourceID, name, parentID string) (Item, error) {
	body := map[string]interface{}{
		"name":     name,
		"parents":  []string{parentID},
		"mimeType": MimeSheet,
	}
	q := url.Values{
		"fields":            {itemFields},
		"supportsAllDrives": {"true"},
	}
	var out apiItem
	if err := c.postJSON(ctx, fmt.Sprintf("%s/files/%s/copy?%s", c.apiBase, url.PathEscape(sourceID), q.Encode()), body, &out); err != nil {
		return Item{}, fmt.Errorf("copy %s as %q: %w", sourceID, name, err)
	}
	return out.toItem(), nil
}

func (c *Client) ExportSheetPDF(ctx context.Context, id string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/%s/export?%s", c.sheetBase, url.PathEscape(id), sheetExportParams.Encode())
	return c.getStream(ctx, u)
}

func (c *Client) ExportPDF(ctx context.Context, id string) (io.ReadCloser, error) {
	q := url.Values{"mimeType": {MimePDF}}
	u := fmt.Sprintf("%s/files/%s/export?%s", c.apiBase, url.PathEscape(id), q.Encode())
	return c.getStream(ctx, u)
}

func (c *Client) DownloadRaw(ctx context.Context, id string) (io.ReadCloser, error) {
	q := url.Values{"alt": {"media"}, "supportsAllDrives": {"true"}}
	u := fmt.Sprintf("%s/files/%s?%s", c.apiBase, url.PathEscape(id), q.Encode())
	return c.getStream(ctx, u)
}

// --- transport helpers ---

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("drive: %s %s: %s: %s",
			req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, u string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getStream(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// escapeQuery escapes backslashes and single quotes inside a Drive query
// literal. Backslashes go first so the quote escapes stay intact.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
