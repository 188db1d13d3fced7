package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
)

const (
	menuCallbackPrefix = "jsonp_callback_menu"
	maxMenuBytes       = 4 << 20
)

type menuPayload struct {
	Status  *string                `json:"status"`
	Data    *[]domain.MenuCategory `json:"data"`
	Message string                 `json:"message"`
}

type menuDelivery struct {
	payload menuPayload
	err     error
}

// MenuClient fetches the menu from a script endpoint that wraps its JSON in
// a call to the callback named in the query string.
type MenuClient struct {
	endpoint  string
	client    *http.Client
	callbacks *callbackRegistry
	logger    logger.Logger
	now       func() time.Time
}

func NewMenuClient(endpoint string, client *http.Client, logger logger.Logger) *MenuClient {
	return &MenuClient{
		endpoint:  endpoint,
		client:    client,
		callbacks: newCallbackRegistry(),
		logger:    logger,
		now:       time.Now,
	}
}

// Pending is the number of callbacks still registered.
func (c *MenuClient) Pending() int {
	return c.callbacks.len()
}

func (c *MenuClient) FetchMenu(ctx context.Context) ([]domain.MenuCategory, error) {
	delivered := make(chan menuDelivery, 1)
	name := c.callbacks.register(menuCallbackPrefix, func(raw []byte) {
		var p menuPayload
		err := json.Unmarshal(raw, &p)
		select {
		case delivered <- menuDelivery{payload: p, err: err}:
		default:
		}
	})
	defer c.callbacks.deregister(name)

	reqURL, err := c.requestURL(name)
	if err != nil {
		return nil, fetchFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fetchFailed(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fetchFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetchFailed(fmt.Errorf("menu endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMenuBytes))
	if err != nil {
		return nil, fetchFailed(err)
	}

	if err := c.callbacks.dispatch(body, name); err != nil {
		return nil, fetchFailed(err)
	}

	var d menuDelivery
	select {
	case d = <-delivered:
	default:
		return nil, fetchFailed(fmt.Errorf("%w: callback %s was not invoked", errMalformedScript, name))
	}
	if d.err != nil {
		return nil, fetchFailed(fmt.Errorf("failed to decode menu payload: %w", d.err))
	}

	categories, err := interpret(d.payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("menu_fetched", "Menu payload received", name, map[string]interface{}{
		"categories": len(categories),
	})
	return categories, nil
}

func (c *MenuClient) requestURL(callback string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid menu endpoint: %w", err)
	}

	q := u.Query()
	q.Set("action", "getMenu")
	q.Set("callback", callback)
	// Cache buster: a repeated load is never served stale.
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func interpret(p menuPayload) ([]domain.MenuCategory, error) {
	if p.Status == nil {
		return nil, &domain.MenuLoadError{
			Message: domain.MenuLoadFailedMessage,
			Err:     fmt.Errorf("%w: missing status field", errMalformedScript),
		}
	}

	if *p.Status == "success" && p.Data != nil {
		return *p.Data, nil
	}

	msg := p.Message
	if msg == "" {
		msg = domain.MenuLoadFailedMessage
	}
	return nil, &domain.MenuLoadError{Message: msg}
}

func fetchFailed(err error) error {
	return &domain.MenuLoadError{Message: domain.MenuFetchFailedMessage, Err: err}
}
