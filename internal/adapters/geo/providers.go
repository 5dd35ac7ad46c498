package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"church/internal/domain/visit"
)

// ErrLookupFailed is returned when a provider answers without a location.
var ErrLookupFailed = errors.New("geolocation lookup failed")

// IPAPIProvider queries ip-api.com.
type IPAPIProvider struct {
	Client  *http.Client
	BaseURL string // defaults to http://ip-api.com/json/
}

func (p *IPAPIProvider) Name() string { return "ip-api" }

// Lookup returns the country and city for ip.
func (p *IPAPIProvider) Lookup(ctx context.Context, ip string) (visit.Location, error) {
	base := p.BaseURL
	if base == "" {
		base = "http://ip-api.com/json/"
	}
	var body struct {
		Status  string `json:"status"`
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := getJSON(ctx, p.Client, base+url.PathEscape(ip)+"?fields=status,country,city", &body); err != nil {
		return visit.Location{}, err
	}
	if body.Status != "success" {
		return visit.Location{}, ErrLookupFailed
	}
	return visit.Location{Country: body.Country, City: body.City}, nil
}

// IPWhoProvider queries ipwho.is.
type IPWhoProvider struct {
	Client  *http.Client
	BaseURL string // defaults to https://ipwho.is/
}

func (p *IPWhoProvider) Name() string { return "ipwho" }

// Lookup returns the country and city for ip.
func (p *IPWhoProvider) Lookup(ctx context.Context, ip string) (visit.Location, error) {
	base := p.BaseURL
	if base == "" {
		base = "https://ipwho.is/"
	}
	var body struct {
		Success bool   `json:"success"`
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := getJSON(ctx, p.Client, base+url.PathEscape(ip), &body); err != nil {
		return visit.Location{}, err
	}
	if !body.Success {
		return visit.Location{}, ErrLookupFailed
	}
	return visit.Location{Country: body.Country, City: body.City}, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geolocation lookup: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
