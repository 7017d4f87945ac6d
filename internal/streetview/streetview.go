// Package streetview fetches Google Street View images of lots.
package streetview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/evcraddock/everylot/internal/lot"
	"github.com/evcraddock/everylot/internal/post"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/streetview"

// ErrNoLocation is returned when a lot has neither an address nor
// coordinates.
var ErrNoLocation = errors.New("lot has no address or coordinates")

// ErrNoImagery is returned when neither the location nor its geocoded
// position has a panorama.
var ErrNoImagery = errors.New("no street view imagery for location")

// Config holds the Street View request settings.
type Config struct {
	APIKey string
	Pitch  float64
	FOV    int
	Size   string
}

// Geocoder resolves an address to coordinates. *maps.Client satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Client fetches Street View images.
type Client struct {
	httpClient *http.Client
	geocoder   Geocoder
	cfg        Config
	log        *slog.Logger

	// Overridable for testing.
	baseURL string
}

// NewClient creates a Street View client. The same API key is used for
// the geocoding fallback.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	gc, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating geocoding client: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		geocoder:   gc,
		cfg:        cfg,
		log:        log,
		baseURL:    defaultBaseURL,
	}, nil
}

// Location returns the Street View location for l: the search format
// rendered with the lot's raw fields, or "lat,lon" when the lot has no
// address.
func Location(l *lot.Lot, searchFormat string) (string, error) {
	if strings.TrimSpace(l.AddressText()) == "" {
		if !l.HasCoordinates() {
			return "", ErrNoLocation
		}
		return latLng(l.Lat, l.Lon), nil
	}

	tmpl, err := post.ParseTemplate(searchFormat)
	if err != nil {
		return "", fmt.Errorf("parsing search format: %w", err)
	}
	return tmpl.Execute(l.Fields())
}

// Fetch returns the JPEG image for location. When Street View has no
// panorama there, the location is geocoded and the image is taken at the
// resulting coordinates.
func (c *Client) Fetch(ctx context.Context, location string) ([]byte, error) {
	target, err := c.resolve(ctx, location)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"location": {target},
		"key":      {c.cfg.APIKey},
		"size":     {c.size()},
		"fov":      {strconv.Itoa(c.cfg.FOV)},
		"pitch":    {strconv.FormatFloat(c.cfg.Pitch, 'f', -1, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("fetching image: unexpected content type %q", ct)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	c.log.DebugContext(ctx, "Fetched street view image", "location", target, "bytes", len(img))
	return img, nil
}

// metadataResponse is the body of the Street View metadata endpoint.
type metadataResponse struct {
	Status string `json:"status"`
}

// resolve returns location when it has imagery, or the geocoded
// coordinates of location otherwise.
func (c *Client) resolve(ctx context.Context, location string) (string, error) {
	status, err := c.metadata(ctx, location)
	if err != nil {
		return "", err
	}
	if status == "OK" {
		return location, nil
	}
	if status != "ZERO_RESULTS" && status != "NOT_FOUND" {
		return "", fmt.Errorf("street view metadata: status %s", status)
	}

	c.log.InfoContext(ctx, "No panorama at location, geocoding", "location", location, "status", status)

	results, err := c.geocoder.Geocode(ctx, &maps.GeocodingRequest{Address: location})
	if err != nil {
		return "", fmt.Errorf("geocoding %q: %w", location, err)
	}
	if len(results) == 0 {
		return "", ErrNoImagery
	}

	loc := results[0].Geometry.Location
	target := latLng(loc.Lat, loc.Lng)

	status, err = c.metadata(ctx, target)
	if err != nil {
		return "", err
	}
	if status != "OK" {
		return "", ErrNoImagery
	}
	return target, nil
}

func (c *Client) metadata(ctx context.Context, location string) (string, error) {
	params := url.Values{
		"location": {location},
		"key":      {c.cfg.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/metadata?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("street view metadata: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("street view metadata: unexpected status %d", resp.StatusCode)
	}

	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("decoding metadata: %w", err)
	}
	return meta.Status, nil
}

func (c *Client) size() string {
	if c.cfg.Size == "" {
		return "640x640"
	}
	return c.cfg.Size
}

func latLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
