package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmagar/workshop-cli/internal/model"
)

// ErrItemNotFound is returned when the Web API has no details for an item.
var ErrItemNotFound = errors.New("workshop item not found")

// flexUint64 decodes a JSON number or a numeric string.
type flexUint64 uint64

func (f *flexUint64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("file_size %q: %w", s, err)
	}
	*f = flexUint64(n)
	return nil
}

type publishedFileDetails struct {
	PublishedFileID string     `json:"publishedfileid"`
	Result          int        `json:"result"`
	Title           string     `json:"title"`
	FileSize        flexUint64 `json:"file_size"`
}

type publishedFileDetailsResp struct {
	Response struct {
		Result               int                    `json:"result"`
		ResultCount          int                    `json:"resultcount"`
		PublishedFileDetails []publishedFileDetails `json:"publishedfiledetails"`
	} `json:"response"`
}

// GetItemDetails looks up the title and size of a workshop item. The whole
// lookup, retries included, is bounded by MetadataTimeout.
func GetItemDetails(ctx context.Context, endpoint, itemID string) (model.ItemInfo, error) {
	if endpoint == "" {
		endpoint = DefaultMetadataURL
	}
	ctx, cancel := context.WithTimeout(ctx, MetadataTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("itemcount", "1")
	form.Set("publishedfileids[0]", itemID)
	encoded := form.Encode()

	resp, err := retryDo(ctx, "metadata", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Add("User-Agent", UserAgent)
		req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return model.ItemInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.ItemInfo{}, fmt.Errorf("metadata for %s: HTTP %s", itemID, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ItemInfo{}, fmt.Errorf("read metadata response: %w", err)
	}
	var obj publishedFileDetailsResp
	if err := json.Unmarshal(body, &obj); err != nil {
		return model.ItemInfo{}, fmt.Errorf("decode metadata response: %w", err)
	}
	details := obj.Response.PublishedFileDetails
	if len(details) == 0 || details[0].Result != 1 {
		return model.ItemInfo{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return model.ItemInfo{
		Title:         details[0].Title,
		FileSizeBytes: uint64(details[0].FileSize),
	}, nil
}

// Metadata binds GetItemDetails to one endpoint.
type Metadata struct {
	Endpoint string
}

// ItemDetails implements the acquisition metadata lookup.
func (m Metadata) ItemDetails(ctx context.Context, itemID string) (model.ItemInfo, error) {
	return GetItemDetails(ctx, m.Endpoint, itemID)
}
