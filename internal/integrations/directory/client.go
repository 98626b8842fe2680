package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с DirectoryService — платформенным каталогом
// бизнесов, услуг, сотрудников и точек обслуживания
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента DirectoryService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetBusiness получает бизнес по ID
func (c *Client) GetBusiness(ctx context.Context, businessID int64) (*Business, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d", c.baseURL, businessID)

	var business Business
	if err := c.getJSON(ctx, url, ErrBusinessNotFound, &business); err != nil {
		return nil, err
	}

	return &business, nil
}

// GetService получает услугу бизнеса по ID
func (c *Client) GetService(ctx context.Context, businessID, serviceID int64) (*Service, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/services/%d", c.baseURL, businessID, serviceID)

	var service Service
	if err := c.getJSON(ctx, url, ErrServiceNotFound, &service); err != nil {
		return nil, err
	}

	return &service, nil
}

// GetStaffMember получает сотрудника бизнеса по ID
func (c *Client) GetStaffMember(ctx context.Context, businessID, staffID int64) (*StaffMember, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/staff/%d", c.baseURL, businessID, staffID)

	var staff StaffMember
	if err := c.getJSON(ctx, url, ErrResourceNotFound, &staff); err != nil {
		return nil, err
	}

	return &staff, nil
}

// GetServicePoint получает точку обслуживания бизнеса по ID
func (c *Client) GetServicePoint(ctx context.Context, businessID, servicePointID int64) (*ServicePoint, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/service-points/%d", c.baseURL, businessID, servicePointID)

	var point ServicePoint
	if err := c.getJSON(ctx, url, ErrResourceNotFound, &point); err != nil {
		return nil, err
	}

	return &point, nil
}

// ListStaff получает список сотрудников бизнеса
func (c *Client) ListStaff(ctx context.Context, businessID int64) ([]StaffMember, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/staff", c.baseURL, businessID)

	var staff []StaffMember
	if err := c.getJSON(ctx, url, ErrBusinessNotFound, &staff); err != nil {
		return nil, err
	}

	return staff, nil
}

// ListServicePoints получает список точек обслуживания бизнеса
func (c *Client) ListServicePoints(ctx context.Context, businessID int64) ([]ServicePoint, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/service-points", c.baseURL, businessID)

	var points []ServicePoint
	if err := c.getJSON(ctx, url, ErrBusinessNotFound, &points); err != nil {
		return nil, err
	}

	return points, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ.
// notFoundErr возвращается на 404 — у каждого метода свой sentinel.
func (c *Client) getJSON(ctx context.Context, url string, notFoundErr error, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return notFoundErr
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
