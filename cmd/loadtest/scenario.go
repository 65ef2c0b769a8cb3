package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var errSoldOut = errors.New("no lesson with free spaces")

// storefrontView содержит часть ответа API, нужную сценариям.
type storefrontView struct {
	Lessons []struct {
		ID     json.RawMessage `json:"id"`
		CanAdd bool            `json:"canAdd"`
	} `json:"lessons"`
	Cart []struct {
		LineID string `json:"lineId"`
	} `json:"cart"`
	ShowConfirmation bool   `json:"showConfirmation"`
	Notice           string `json:"notice"`
}

func (v storefrontView) firstAvailable() (json.RawMessage, bool) {
	for _, lesson := range v.Lessons {
		if lesson.CanAdd {
			return lesson.ID, true
		}
	}
	return nil, false
}

// shopper — один покупатель со своей cookie-сессией.
type shopper struct {
	base    string
	http    *http.Client
	timeout time.Duration
	col     *collector
}

func newShopper(base string, transport http.RoundTripper, timeout time.Duration, col *collector) (*shopper, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &shopper{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Jar: jar, Transport: transport},
		timeout: timeout,
		col:     col,
	}, nil
}

// do выполняет один шаг и записывает его статус; 2xx считается успехом.
func (s *shopper) do(step, method, path string, body any) (storefrontView, error) {
	var view storefrontView

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return view, err
		}
		reader = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, s.base+path, reader)
	if err != nil {
		return view, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		s.col.record(step, time.Since(start), "transport_error", false)
		return view, err
	}
	defer resp.Body.Close()

	decodeErr := json.NewDecoder(resp.Body).Decode(&view)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	s.col.record(step, time.Since(start), strconv.Itoa(resp.StatusCode), ok)

	if !ok {
		return view, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if decodeErr != nil {
		return view, fmt.Errorf("%s %s: decode view: %w", method, path, decodeErr)
	}
	return view, nil
}

func runScenario(s *shopper, cfg config, index int) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		s.col.record(scenarioStep, time.Since(start), status, err == nil)
	}()

	view, err := s.do("state", http.MethodGet, "/api/state", nil)
	if err != nil {
		return err
	}

	switch cfg.mode {
	case modeBrowse:
		return browse(s, cfg, index)
	case modeCart:
		return cartRoundTrip(s, view)
	case modeCheckout:
		return checkout(s, cfg, view)
	default:
		return fmt.Errorf("unsupported mode: %s", cfg.mode)
	}
}

func browse(s *shopper, cfg config, index int) error {
	query := ""
	if len(cfg.queries) > 0 {
		query = cfg.queries[index%len(cfg.queries)]
	}
	if _, err := s.do("search", http.MethodGet, "/api/search?query="+url.QueryEscape(query), nil); err != nil {
		return err
	}
	direction := "asc"
	if index%2 == 1 {
		direction = "desc"
	}
	_, err := s.do("sort", http.MethodPost, "/api/sort", map[string]string{"key": "price", "direction": direction})
	return err
}

func addFirstAvailable(s *shopper, view storefrontView) (storefrontView, error) {
	id, ok := view.firstAvailable()
	if !ok {
		return view, errSoldOut
	}
	view, err := s.do("add_to_cart", http.MethodPost, "/api/cart", map[string]json.RawMessage{"lessonId": id})
	if err != nil {
		return view, err
	}
	if len(view.Cart) == 0 {
		return view, errors.New("cart is empty after add")
	}
	return view, nil
}

func cartRoundTrip(s *shopper, view storefrontView) error {
	view, err := addFirstAvailable(s, view)
	if err != nil {
		return err
	}
	lineID := view.Cart[len(view.Cart)-1].LineID
	_, err = s.do("remove_from_cart", http.MethodDelete, "/api/cart/"+url.PathEscape(lineID), nil)
	return err
}

func checkout(s *shopper, cfg config, view storefrontView) error {
	if _, err := addFirstAvailable(s, view); err != nil {
		return err
	}
	contact := map[string]string{
		"name":  cfg.customerName,
		"phone": cfg.phone,
	}
	if _, err := s.do("set_contact", http.MethodPut, "/api/contact", contact); err != nil {
		return err
	}
	if _, err := s.do("toggle_cart", http.MethodPost, "/api/cart/toggle", nil); err != nil {
		return err
	}
	view, err := s.do("checkout", http.MethodPost, "/api/checkout", nil)
	if err != nil {
		return err
	}
	if !view.ShowConfirmation {
		return errors.New("checkout did not show confirmation")
	}
	return nil
}
