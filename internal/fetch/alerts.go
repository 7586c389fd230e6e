package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// productAlert mirrors one entry of NOAA's products/alerts.json feed — the
// official watch/warning/alert text products, distinct from the
// notifications stream used by FetchNotifications.
type productAlert struct {
	ProductID string `json:"product_id"`
	IssueTime string `json:"issue_datetime"`
	Message   string `json:"message"`
}

// ProductAlertsResult is the set of currently active NOAA alert products.
type ProductAlertsResult struct {
	Products []model.NOAAProduct
}

// FetchProductAlerts retrieves the active watch/warning/alert product list.
func (r *Registry) FetchProductAlerts(ctx context.Context) Outcome[ProductAlertsResult] {
	return run(ctx, "product-alerts", r.Timeout, func(ctx context.Context) (ProductAlertsResult, error) {
		var records []productAlert
		if err := getJSON(ctx, r.Client, r.Endpoints.ProductAlerts, &records); err != nil {
			return ProductAlertsResult{}, err
		}

		products := make([]model.NOAAProduct, 0, len(records))
		for _, rec := range records {
			issued, _ := time.Parse("2006-01-02 15:04:05.000", rec.IssueTime)
			products = append(products, model.NOAAProduct{
				ID:        rec.ProductID,
				Message:   rec.Message,
				IssueTime: issued,
			})
		}
		return ProductAlertsResult{Products: products}, nil
	})
}

// Forecast3DayResult wraps the raw text of the human-readable 3-day forecast
// discussion, carried through to the snapshot verbatim (spec.md §3).
type Forecast3DayResult struct {
	Text string
}

// FetchForecast3Day retrieves the 3-day forecast discussion as plain text.
func (r *Registry) FetchForecast3Day(ctx context.Context) Outcome[Forecast3DayResult] {
	return run(ctx, "forecast-3day", r.Timeout, func(ctx context.Context) (Forecast3DayResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoints.Forecast3Day, nil)
		if err != nil {
			return Forecast3DayResult{}, err
		}

		resp, err := r.Client.Do(req)
		if err != nil {
			return Forecast3DayResult{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return Forecast3DayResult{}, &unexpectedStatusError{status: resp.StatusCode}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Forecast3DayResult{}, err
		}
		return Forecast3DayResult{Text: string(body)}, nil
	})
}

type unexpectedStatusError struct{ status int }

func (e *unexpectedStatusError) Error() string {
	return http.StatusText(e.status)
}
